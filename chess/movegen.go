package chess

import "github.com/veles-dev/cego/bitboard"

// Legal move generation follows the check-mask/pin-ray approach of
// other_examples/Oliverans-GooseEngine__movegen.go's computeCheckAndPins and
// other_examples/easychessanimations-zurichessboard__position.go's
// genBishopMoves/genRookMoves/genKingCastles pattern: compute which squares
// would block or capture a single checking piece (checkMask), and which
// pieces are pinned to the king along with the ray they may still move on
// (pinned, pinRay), then restrict every piece's pseudo-legal destinations by
// those two masks. Double check restricts generation to king moves only.

// LegalMoves returns every legal move for the side to move.
func (b *Board) LegalMoves() []Move {
	moves := make([]Move, 0, 48)
	us := b.SideToMove
	them := us.Other()
	occ := b.Occupied()
	kingSq := b.KingSquare(us)

	checkers, checkMask := b.checkersAndMask(kingSq, us, them, occ)
	numCheckers := checkers.Popcount()

	pinned, pinRay := b.pinnedAndRays(kingSq, us, them, occ)

	moves = b.genKingMoves(moves, kingSq, us, occ)
	if numCheckers >= 2 {
		// Double check: only the king can move.
		return moves
	}

	moves = b.genPawnMoves(moves, us, occ, checkMask, pinned, pinRay)
	moves = b.genKnightMoves(moves, us, occ, checkMask, pinned)
	moves = b.genSliderMoves(moves, Bishop, us, occ, checkMask, pinned, pinRay)
	moves = b.genSliderMoves(moves, Rook, us, occ, checkMask, pinned, pinRay)
	moves = b.genSliderMoves(moves, Queen, us, occ, checkMask, pinned, pinRay)
	if numCheckers == 0 {
		moves = b.genCastles(moves, us, occ)
	}
	moves = b.genEnPassant(moves, us, them, pinned, kingSq)
	return moves
}

// checkersAndMask returns the set of pieces currently giving check, and the
// mask of squares a non-king piece must move to in order to resolve check
// (the checker's square itself, plus any squares between a sliding checker
// and the king). With no checkers the mask is Full (no restriction).
func (b *Board) checkersAndMask(kingSq Square, us, them Color, occ Bitboard) (Bitboard, Bitboard) {
	var checkers Bitboard
	mask := bitboard.Full

	if p := bitboard.PawnAttacks(bitboard.Color(us), kingSq) & b.Bitboard(Pawn, them); p != 0 {
		checkers |= p
	}
	if n := bitboard.KnightAttacks(kingSq) & b.Bitboard(Knight, them); n != 0 {
		checkers |= n
	}
	diag := (b.Bitboard(Bishop, them) | b.Bitboard(Queen, them))
	if d := bitboard.BishopAttacks(kingSq, occ) & diag; d != 0 {
		checkers |= d
	}
	orth := (b.Bitboard(Rook, them) | b.Bitboard(Queen, them))
	if o := bitboard.RookAttacks(kingSq, occ) & orth; o != 0 {
		checkers |= o
	}

	if checkers == 0 {
		return 0, mask
	}
	if checkers.Popcount() >= 2 {
		return checkers, 0 // unused when double-checked
	}
	checkerSq := checkers.LSB()
	mask = checkers
	if isSlider(b, checkerSq, them) {
		mask |= betweenExclusive(kingSq, checkerSq)
	}
	return checkers, mask
}

func isSlider(b *Board, sq Square, c Color) bool {
	bit := sq.Bit()
	return (b.Bitboard(Bishop, c)|b.Bitboard(Rook, c)|b.Bitboard(Queen, c))&bit != 0
}

// pinnedAndRays returns the set of our pieces pinned to the king, and for
// each pinned square the ray (through the king and the pinning piece,
// inclusive of both) it's still allowed to move along.
func (b *Board) pinnedAndRays(kingSq Square, us, them Color, occ Bitboard) (Bitboard, map[Square]Bitboard) {
	var pinned Bitboard
	rays := make(map[Square]Bitboard)

	diagPinners := b.Bitboard(Bishop, them) | b.Bitboard(Queen, them)
	orthPinners := b.Bitboard(Rook, them) | b.Bitboard(Queen, them)

	consider := func(pinners Bitboard, slider bitboard.Slider) {
		for candidates := bitboard.SlidingAttacks(slider, kingSq, b.ColorOccupied(them)) & pinners; candidates != 0; {
			pinnerSq := candidates.PopLSB()
			between := betweenExclusive(kingSq, pinnerSq)
			blockers := between & occ
			if blockers.Popcount() != 1 {
				continue
			}
			if blockers&b.ColorOccupied(us) == 0 {
				continue // the single blocker is enemy, not a pin on us
			}
			pinnedSq := blockers.LSB()
			pinned |= pinnedSq.Bit()
			rays[pinnedSq] = between | pinnerSq.Bit() | kingSq.Bit()
		}
	}
	consider(diagPinners, bitboard.SliderBishop)
	consider(orthPinners, bitboard.SliderRook)
	return pinned, rays
}

func restrict(dest Bitboard, sq Square, pinned Bitboard, pinRay map[Square]Bitboard) Bitboard {
	if pinned.Has(sq) {
		return dest & pinRay[sq]
	}
	return dest
}

func (b *Board) genKnightMoves(moves []Move, us Color, occ Bitboard, checkMask, pinned Bitboard) []Move {
	ownOcc := b.ColorOccupied(us)
	for bb := b.Bitboard(Knight, us) &^ pinned; bb != 0; {
		from := bb.PopLSB()
		dest := bitboard.KnightAttacks(from) &^ ownOcc & checkMask
		for d := dest; d != 0; {
			moves = append(moves, Move{From: from, To: d.PopLSB(), Promotion: NoPiece})
		}
	}
	return moves
}

func (b *Board) genSliderMoves(moves []Move, piece Piece, us Color, occ Bitboard, checkMask Bitboard, pinned Bitboard, pinRay map[Square]Bitboard) []Move {
	ownOcc := b.ColorOccupied(us)
	var slider bitboard.Slider
	switch piece {
	case Bishop:
		slider = bitboard.SliderBishop
	case Rook:
		slider = bitboard.SliderRook
	case Queen:
		slider = bitboard.SliderQueen
	}
	for bb := b.Bitboard(piece, us); bb != 0; {
		from := bb.PopLSB()
		dest := bitboard.SlidingAttacks(slider, from, occ) &^ ownOcc & checkMask
		dest = restrict(dest, from, pinned, pinRay)
		for d := dest; d != 0; {
			moves = append(moves, Move{From: from, To: d.PopLSB(), Promotion: NoPiece})
		}
	}
	return moves
}

func (b *Board) genKingMoves(moves []Move, kingSq Square, us Color, occ Bitboard) []Move {
	them := us.Other()
	ownOcc := b.ColorOccupied(us)
	// Remove the king from occupancy so sliding attackers see through its
	// own square — otherwise the king could "hide" behind itself.
	occWithoutKing := occ &^ kingSq.Bit()
	dest := bitboard.KingAttacks(kingSq) &^ ownOcc
	for d := dest; d != 0; {
		to := d.PopLSB()
		if b.attackedBy(them, occWithoutKing).Has(to) {
			continue
		}
		moves = append(moves, Move{From: kingSq, To: to, Promotion: NoPiece})
	}
	return moves
}

func (b *Board) genCastles(moves []Move, us Color, occ Bitboard) []Move {
	them := us.Other()
	if us == White {
		if b.Castle.WhiteKingside && occ&(bitboard.F1.Bit()|bitboard.G1.Bit()) == 0 &&
			!b.squareAttackedBy(bitboard.E1, them, occ) && !b.squareAttackedBy(bitboard.F1, them, occ) && !b.squareAttackedBy(bitboard.G1, them, occ) {
			moves = append(moves, Move{From: bitboard.E1, To: bitboard.G1, Promotion: NoPiece})
		}
		if b.Castle.WhiteQueenside && occ&(bitboard.B1.Bit()|bitboard.C1.Bit()|bitboard.D1.Bit()) == 0 &&
			!b.squareAttackedBy(bitboard.E1, them, occ) && !b.squareAttackedBy(bitboard.D1, them, occ) && !b.squareAttackedBy(bitboard.C1, them, occ) {
			moves = append(moves, Move{From: bitboard.E1, To: bitboard.C1, Promotion: NoPiece})
		}
	} else {
		if b.Castle.BlackKingside && occ&(bitboard.F8.Bit()|bitboard.G8.Bit()) == 0 &&
			!b.squareAttackedBy(bitboard.E8, them, occ) && !b.squareAttackedBy(bitboard.F8, them, occ) && !b.squareAttackedBy(bitboard.G8, them, occ) {
			moves = append(moves, Move{From: bitboard.E8, To: bitboard.G8, Promotion: NoPiece})
		}
		if b.Castle.BlackQueenside && occ&(bitboard.B8.Bit()|bitboard.C8.Bit()|bitboard.D8.Bit()) == 0 &&
			!b.squareAttackedBy(bitboard.E8, them, occ) && !b.squareAttackedBy(bitboard.D8, them, occ) && !b.squareAttackedBy(bitboard.C8, them, occ) {
			moves = append(moves, Move{From: bitboard.E8, To: bitboard.C8, Promotion: NoPiece})
		}
	}
	return moves
}

func (b *Board) squareAttackedBy(sq Square, c Color, occ Bitboard) bool {
	return b.attackedBy(c, occ).Has(sq)
}

func (b *Board) genPawnMoves(moves []Move, us Color, occ Bitboard, checkMask, pinned Bitboard, pinRay map[Square]Bitboard) []Move {
	them := us.Other()
	enemyOcc := b.ColorOccupied(them)
	pawns := b.Bitboard(Pawn, us)

	var forward func(Bitboard) Bitboard
	var startRank, promoRank int
	if us == White {
		forward = Bitboard.ShiftNorth
		startRank, promoRank = 1, 7
	} else {
		forward = Bitboard.ShiftSouth
		startRank, promoRank = 6, 0
	}

	for bb := pawns; bb != 0; {
		from := bb.PopLSB()
		single := forward(from.Bit()) &^ occ
		var dest Bitboard
		if single != 0 {
			dest |= single
			if from.Rank() == startRank {
				double := forward(single) &^ occ
				dest |= double
			}
		}
		captures := bitboard.PawnAttacks(bitboard.Color(us), from) & enemyOcc
		dest |= captures
		dest &= checkMask
		dest = restrict(dest, from, pinned, pinRay)

		for d := dest; d != 0; {
			to := d.PopLSB()
			if to.Rank() == promoRank {
				moves = append(moves,
					Move{From: from, To: to, Promotion: Queen},
					Move{From: from, To: to, Promotion: Rook},
					Move{From: from, To: to, Promotion: Bishop},
					Move{From: from, To: to, Promotion: Knight},
				)
			} else {
				moves = append(moves, Move{From: from, To: to, Promotion: NoPiece})
			}
		}
	}
	return moves
}

// genEnPassant handles the en-passant capture separately from genPawnMoves
// because its legality (does it expose the king on the now-emptied rank?)
// cannot be decided by the ordinary pin/check masks: the captured pawn, not
// the capturing one, is the piece that vacates a square relevant to the
// king's safety.
func (b *Board) genEnPassant(moves []Move, us, them Color, pinned Bitboard, kingSq Square) []Move {
	if b.EnPassant == NoSquare {
		return moves
	}
	origins := pawnCaptureOrigins(b.EnPassant, us) & b.Bitboard(Pawn, us)
	for o := origins; o != 0; {
		from := o.PopLSB()
		capturedSq := epCapturedSquare(b.EnPassant, us)
		occAfter := b.Occupied() &^ from.Bit() &^ capturedSq.Bit() | b.EnPassant.Bit()
		after := *b
		after.setBitboard(Pawn, them, b.Bitboard(Pawn, them)&^capturedSq.Bit())
		if after.attackedBy(them, occAfter).Has(kingSq) {
			continue
		}
		moves = append(moves, Move{From: from, To: b.EnPassant, Promotion: NoPiece})
	}
	return moves
}

func epCapturedSquare(epSquare Square, capturer Color) Square {
	if capturer == White {
		return bitboard.FromFileRank(epSquare.File(), epSquare.Rank()-1)
	}
	return bitboard.FromFileRank(epSquare.File(), epSquare.Rank()+1)
}

// betweenExclusive returns the squares strictly between a and b along a
// shared rank, file, or diagonal (empty if they're not aligned or adjacent).
func betweenExclusive(a, b Square) Bitboard {
	af, ar := a.File(), a.Rank()
	bf, br := b.File(), b.Rank()
	df, dr := sign(bf-af), sign(br-ar)
	if df == 0 && dr == 0 {
		return 0
	}
	if df != 0 && dr != 0 && abs(bf-af) != abs(br-ar) {
		return 0
	}
	if df == 0 && bf != af {
		return 0
	}
	if dr == 0 && br != ar {
		return 0
	}
	var bb Bitboard
	f, r := af+df, ar+dr
	for f != bf || r != br {
		bb |= bitboard.FromFileRank(f, r).Bit()
		f += df
		r += dr
	}
	return bb
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
