package chess

import (
	"encoding/binary"

	"lukechampine.com/frand"

	"github.com/veles-dev/cego/bitboard"
)

// Zobrist hashing follows the teacher's own zobrist package pattern
// (zobrist/hash.go): a table of random 64-bit words built once with a fast
// RNG, XORed in incrementally on every make/unmake. Here the table is keyed
// by (colored piece, square) instead of (tile, board square), and we add
// the side-to-move, castling-rights, and en-passant-file components spec.md
// §3 requires in the hash.
var (
	pieceSquareKeys [12][64]uint64
	castleKeys      [4]uint64 // WK, WQ, BK, BQ
	epFileKeys      [8]uint64
	sideToMoveKey   uint64
)

func randKey() uint64 {
	var buf [8]byte
	copy(buf[:], frand.Bytes(8))
	return binary.LittleEndian.Uint64(buf[:])
}

func init() {
	for p := 0; p < 12; p++ {
		for sq := 0; sq < 64; sq++ {
			pieceSquareKeys[p][sq] = randKey()
		}
	}
	for i := range castleKeys {
		castleKeys[i] = randKey()
	}
	for i := range epFileKeys {
		epFileKeys[i] = randKey()
	}
	sideToMoveKey = randKey()
}

// computeHash recomputes the Zobrist hash of b from scratch. Used to seed a
// freshly parsed board and to cross-check the incrementally maintained hash
// in tests (spec.md §8's "Zobrist equals the hash recomputed from scratch").
func computeHash(b *Board) uint64 {
	var h uint64
	for i := 0; i < 12; i++ {
		bb := b.pieces[i]
		for bb != 0 {
			sq := bb.PopLSB()
			h ^= pieceSquareKeys[i][sq]
		}
	}
	if b.Castle.WhiteKingside {
		h ^= castleKeys[0]
	}
	if b.Castle.WhiteQueenside {
		h ^= castleKeys[1]
	}
	if b.Castle.BlackKingside {
		h ^= castleKeys[2]
	}
	if b.Castle.BlackQueenside {
		h ^= castleKeys[3]
	}
	if b.EnPassant != NoSquare && hasLegalEnPassantCapture(b) {
		h ^= epFileKeys[b.EnPassant.File()]
	}
	if b.SideToMove == Black {
		h ^= sideToMoveKey
	}
	return h
}

// hasLegalEnPassantCapture reports whether an enemy pawn actually sits
// beside b.EnPassant such that an en-passant capture is possible — spec.md
// §3 only folds the en-passant file into the hash "if a legal en-passant
// exists", matching standard FEN/Zobrist convention of not distinguishing
// positions that differ only in an en-passant square nobody can use.
func hasLegalEnPassantCapture(b *Board) bool {
	if b.EnPassant == NoSquare {
		return false
	}
	capturer := b.SideToMove
	capturerPawns := b.Bitboard(Pawn, capturer)
	targets := pawnCaptureOrigins(b.EnPassant, capturer)
	return capturerPawns&targets != 0
}

// pawnCaptureOrigins returns the squares from which capturer could play an
// en-passant capture landing on epSquare.
func pawnCaptureOrigins(epSquare Square, capturer Color) Bitboard {
	return bitboard.PawnAttacks(bitboard.Color(capturer.Other()), epSquare)
}
