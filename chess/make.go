package chess

import "github.com/veles-dev/cego/bitboard"

// Make returns the board resulting from playing m, a legal move
// returned by LegalMoves, on b. b itself is left untouched: the search tree
// stores one Board value per node, so Make must not mutate the parent's.
func (b *Board) Make(m Move) Board {
	next := b.Clone()
	us := b.SideToMove
	them := us.Other()
	h := b.Hash

	mover, ok := next.PieceAt(m.From)
	if !ok {
		panic("chess: Make called with no piece on from-square")
	}

	isDoublePush := mover.Piece == Pawn && abs(m.To.Rank()-m.From.Rank()) == 2
	isEnPassant := mover.Piece == Pawn && m.To == b.EnPassant && m.From.File() != m.To.File()
	isCastle := mover.Piece == King && abs(m.To.File()-m.From.File()) == 2

	capturedPiece, isCapture := next.PieceAt(m.To)
	if isCapture {
		next.setBitboard(capturedPiece.Piece, capturedPiece.Color, next.Bitboard(capturedPiece.Piece, capturedPiece.Color)&^m.To.Bit())
		h ^= pieceSquareKeys[pieceIndex(capturedPiece.Piece, capturedPiece.Color)][m.To]
	}
	if isEnPassant {
		capSq := epCapturedSquare(m.To, us)
		next.setBitboard(Pawn, them, next.Bitboard(Pawn, them)&^capSq.Bit())
		h ^= pieceSquareKeys[pieceIndex(Pawn, them)][capSq]
		isCapture = true
	}

	placed := mover.Piece
	if m.Promotion != NoPiece {
		placed = m.Promotion
	}
	next.setBitboard(mover.Piece, us, next.Bitboard(mover.Piece, us)&^m.From.Bit())
	next.setBitboard(placed, us, next.Bitboard(placed, us)|m.To.Bit())
	h ^= pieceSquareKeys[pieceIndex(mover.Piece, us)][m.From]
	h ^= pieceSquareKeys[pieceIndex(placed, us)][m.To]

	if isCastle {
		var rookFrom, rookTo Square
		switch m.To {
		case bitboard.G1:
			rookFrom, rookTo = bitboard.H1, bitboard.F1
		case bitboard.C1:
			rookFrom, rookTo = bitboard.A1, bitboard.D1
		case bitboard.G8:
			rookFrom, rookTo = bitboard.H8, bitboard.F8
		case bitboard.C8:
			rookFrom, rookTo = bitboard.A8, bitboard.D8
		}
		next.setBitboard(Rook, us, next.Bitboard(Rook, us)&^rookFrom.Bit()|rookTo.Bit())
		h ^= pieceSquareKeys[pieceIndex(Rook, us)][rookFrom]
		h ^= pieceSquareKeys[pieceIndex(Rook, us)][rookTo]
	}

	prevCastle := next.Castle
	next.Castle = updateCastleRights(next.Castle, m.From, m.To)
	h ^= castleRightsDelta(prevCastle, next.Castle)

	if b.EnPassant != NoSquare && hasLegalEnPassantCapture(b) {
		h ^= epFileKeys[b.EnPassant.File()]
	}
	if isDoublePush {
		next.EnPassant = bitboard.FromFileRank(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
	} else {
		next.EnPassant = NoSquare
	}
	next.SideToMove = them
	if next.EnPassant != NoSquare && hasLegalEnPassantCapture(&next) {
		h ^= epFileKeys[next.EnPassant.File()]
	}

	if mover.Piece == Pawn || isCapture {
		next.HalfmoveClock = 0
	} else {
		next.HalfmoveClock++
	}
	if us == Black {
		next.FullmoveNum++
	}
	h ^= sideToMoveKey
	next.Hash = h
	return next
}

// castleRightsDelta XORs in the keys for every right present in exactly one
// of before/after, toggling the hash for each right that changed.
func castleRightsDelta(before, after CastleRights) uint64 {
	var h uint64
	if before.WhiteKingside != after.WhiteKingside {
		h ^= castleKeys[0]
	}
	if before.WhiteQueenside != after.WhiteQueenside {
		h ^= castleKeys[1]
	}
	if before.BlackKingside != after.BlackKingside {
		h ^= castleKeys[2]
	}
	if before.BlackQueenside != after.BlackQueenside {
		h ^= castleKeys[3]
	}
	return h
}

// updateCastleRights revokes rights when a king or rook moves away from or
// is captured on its home square.
func updateCastleRights(c CastleRights, from, to Square) CastleRights {
	touch := func(sq Square) {
		switch sq {
		case bitboard.E1:
			c.WhiteKingside, c.WhiteQueenside = false, false
		case bitboard.H1:
			c.WhiteKingside = false
		case bitboard.A1:
			c.WhiteQueenside = false
		case bitboard.E8:
			c.BlackKingside, c.BlackQueenside = false, false
		case bitboard.H8:
			c.BlackKingside = false
		case bitboard.A8:
			c.BlackQueenside = false
		}
	}
	touch(from)
	touch(to)
	return c
}

// Terminal classifies the game-over state of b given the history of
// positions played so far (for repetition detection), per spec.md §4.6 plus
// the supplemented insufficient-material case.
type Terminal int

const (
	NotTerminal Terminal = iota
	Checkmate
	Stalemate
	FiftyMoveRule
	ThreefoldRepetition
	InsufficientMaterial
)

func (t Terminal) String() string {
	switch t {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case FiftyMoveRule:
		return "fifty_move_rule"
	case ThreefoldRepetition:
		return "threefold_repetition"
	case InsufficientMaterial:
		return "insufficient_material"
	default:
		return "not_terminal"
	}
}

// ClassifyTerminal determines b's terminal status. repetitionCount is the
// number of prior positions (including b itself) with b's Zobrist hash, as
// tracked by the history package.
func (b *Board) ClassifyTerminal(repetitionCount int) Terminal {
	legal := b.LegalMoves()
	if len(legal) == 0 {
		if b.InCheck(b.SideToMove) {
			return Checkmate
		}
		return Stalemate
	}
	if b.HalfmoveClock >= 100 {
		return FiftyMoveRule
	}
	if repetitionCount >= 3 {
		return ThreefoldRepetition
	}
	if b.hasInsufficientMaterial() {
		return InsufficientMaterial
	}
	return NotTerminal
}

// hasInsufficientMaterial reports the standard lone-king / king-and-minor
// draw cases: K v K, K+N v K, K+B v K, and K+B v K+B with same-colored
// bishops. This is a supplemented feature absent from the line protocol's
// strict module set but present in any complete rules engine.
func (b *Board) hasInsufficientMaterial() bool {
	if b.Bitboard(Pawn, White) != 0 || b.Bitboard(Pawn, Black) != 0 {
		return false
	}
	if b.Bitboard(Rook, White) != 0 || b.Bitboard(Rook, Black) != 0 ||
		b.Bitboard(Queen, White) != 0 || b.Bitboard(Queen, Black) != 0 {
		return false
	}
	wn, wb := b.Bitboard(Knight, White).Popcount(), b.Bitboard(Bishop, White).Popcount()
	bn, bb := b.Bitboard(Knight, Black).Popcount(), b.Bitboard(Bishop, Black).Popcount()
	wMinor, bMinor := wn+wb, bn+bb
	if wMinor == 0 && bMinor == 0 {
		return true
	}
	if wMinor == 1 && bMinor == 0 && wn+wb == 1 {
		return true
	}
	if bMinor == 1 && wMinor == 0 && bn+bb == 1 {
		return true
	}
	if wn == 0 && bn == 0 && wb == 1 && bb == 1 {
		wSq := b.Bitboard(Bishop, White).LSB()
		bSq := b.Bitboard(Bishop, Black).LSB()
		return squareColor(wSq) == squareColor(bSq)
	}
	return false
}

func squareColor(sq Square) int { return (sq.File() + sq.Rank()) % 2 }
