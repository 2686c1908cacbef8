package evaluator

import "github.com/veles-dev/cego/chess"

// PolicySize is the length of the raw policy vector a Backend must return:
// a fixed enumeration over every (origin, target, promotion) combination,
// a strict superset of the legal moves in any one position, per spec.md
// §4.4's "fixed enumeration of all conceivable chess moves, the same
// ordering the evaluator was trained with". Origin and target each range
// over the 64 squares; promotion ranges over {none, knight, bishop, rook,
// queen}.
const PolicySize = 64 * 64 * 5

// MoveIndex maps a move to its slot in the PolicySize-length policy vector.
func MoveIndex(m chess.Move) int {
	return int(m.From)*64*5 + int(m.To)*5 + promoSlot(m.Promotion)
}

func promoSlot(p chess.Piece) int {
	switch p {
	case chess.NoPiece:
		return 0
	case chess.Knight:
		return 1
	case chess.Bishop:
		return 2
	case chess.Rook:
		return 3
	case chess.Queen:
		return 4
	default:
		return 0
	}
}
