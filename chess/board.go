package chess

import "github.com/veles-dev/cego/bitboard"

type Bitboard = bitboard.Bitboard

// Board is the immutable-per-ply position snapshot of spec.md §3: twelve
// piece bitboards, side to move, castling rights, en-passant target,
// halfmove clock, fullmove number, and a Zobrist hash kept in sync
// incrementally by Make. Board is a plain value type; Make returns a new
// Board rather than mutating the receiver, which keeps the search tree's
// per-node board snapshots trivially copyable.
type Board struct {
	pieces [12]Bitboard // index via ColoredPiece.Index()

	SideToMove    Color
	Castle        CastleRights
	EnPassant     Square // NoSquare if none
	HalfmoveClock int
	FullmoveNum   int

	Hash uint64
}

func pieceIndex(p Piece, c Color) int { return ColoredPiece{Piece: p, Color: c}.Index() }

// Bitboard returns the location set for a colored piece kind.
func (b *Board) Bitboard(p Piece, c Color) Bitboard { return b.pieces[pieceIndex(p, c)] }

func (b *Board) setBitboard(p Piece, c Color, bb Bitboard) { b.pieces[pieceIndex(p, c)] = bb }

// Occupied returns the set of all occupied squares.
func (b *Board) Occupied() Bitboard {
	var occ Bitboard
	for i := range b.pieces {
		occ |= b.pieces[i]
	}
	return occ
}

// ColorOccupied returns the set of squares occupied by c's pieces.
func (b *Board) ColorOccupied(c Color) Bitboard {
	var occ Bitboard
	base := int(c) * 6
	for i := base; i < base+6; i++ {
		occ |= b.pieces[i]
	}
	return occ
}

// PieceAt returns the colored piece on sq, and whether one is present.
func (b *Board) PieceAt(sq Square) (ColoredPiece, bool) {
	bit := sq.Bit()
	for i := range b.pieces {
		if b.pieces[i]&bit != 0 {
			return ColoredPiece{Piece: Piece(i % 6), Color: Color(i / 6)}, true
		}
	}
	return ColoredPiece{}, false
}

// KingSquare returns c's king square. Panics if c has no king, which would
// violate the invariant of spec.md §3 (exactly one king per color); callers
// only ever call this on boards built through ParseFEN/Make, which enforce
// the invariant.
func (b *Board) KingSquare(c Color) Square {
	kb := b.Bitboard(King, c)
	sq := kb.LSB()
	if sq == bitboard.NoSquare {
		panic("chess: board has no king for " + c.String())
	}
	return sq
}

// Clone returns an independent copy. Board holds no pointers, so this is
// just a value copy; the method exists to make call sites that need an
// explicit "don't alias" copy self-documenting (e.g. the search tree when
// it snapshots a board into a node).
func (b *Board) Clone() Board { return *b }

// attackedBy returns the set of squares attacked by any of c's pieces,
// given an arbitrary occupancy (used by the king-move generator with the
// king itself removed from occupancy, so sliders see through it).
func (b *Board) attackedBy(c Color, occ Bitboard) Bitboard {
	var attacks Bitboard
	for bb := b.Bitboard(Pawn, c); bb != 0; {
		attacks |= bitboard.PawnAttacks(bitboard.Color(c), bb.PopLSB())
	}
	for bb := b.Bitboard(Knight, c); bb != 0; {
		attacks |= bitboard.KnightAttacks(bb.PopLSB())
	}
	for bb := b.Bitboard(Bishop, c); bb != 0; {
		attacks |= bitboard.BishopAttacks(bb.PopLSB(), occ)
	}
	for bb := b.Bitboard(Rook, c); bb != 0; {
		attacks |= bitboard.RookAttacks(bb.PopLSB(), occ)
	}
	for bb := b.Bitboard(Queen, c); bb != 0; {
		attacks |= bitboard.QueenAttacks(bb.PopLSB(), occ)
	}
	attacks |= bitboard.KingAttacks(b.Bitboard(King, c).LSB())
	return attacks
}

// IsAttacked reports whether sq is attacked by any of c's pieces on the
// board's actual occupancy.
func (b *Board) IsAttacked(sq Square, c Color) bool {
	return b.attackedBy(c, b.Occupied())&sq.Bit() != 0
}

// InCheck reports whether c's king is currently attacked.
func (b *Board) InCheck(c Color) bool {
	return b.IsAttacked(b.KingSquare(c), c.Other())
}
