package chess

import "github.com/veles-dev/cego/bitboard"

// InvalidMove is returned by ParseLAN for malformed long-algebraic text or
// for text that parses but names a move that is not legal in the position.
type InvalidMove struct {
	Reason string
}

func (e *InvalidMove) Error() string { return "invalid move: " + e.Reason }

func invalidMove(reason string) error { return &InvalidMove{Reason: reason} }

// ParseLAN parses a long-algebraic move (origin square, target square, and
// an optional promotion letter, per spec.md §6) against b, verifying that
// the result is one of b's legal moves. parse_lan(board, emit_lan(m)) = m
// for every m in LegalMoves(board), per spec.md §8.
func ParseLAN(b *Board, text string) (Move, error) {
	if len(text) != 4 && len(text) != 5 {
		return Move{}, invalidMove("expected 4 or 5 characters")
	}
	from, ok := parseSquareText(text[0:2])
	if !ok {
		return Move{}, invalidMove("bad origin square")
	}
	to, ok := parseSquareText(text[2:4])
	if !ok {
		return Move{}, invalidMove("bad target square")
	}
	promo := NoPiece
	if len(text) == 5 {
		switch text[4] {
		case 'q':
			promo = Queen
		case 'r':
			promo = Rook
		case 'b':
			promo = Bishop
		case 'n':
			promo = Knight
		default:
			return Move{}, invalidMove("bad promotion letter")
		}
	}
	candidate := Move{From: from, To: to, Promotion: promo}
	for _, m := range b.LegalMoves() {
		if m == candidate {
			return m, nil
		}
	}
	return Move{}, invalidMove("not a legal move in this position")
}

func parseSquareText(s string) (Square, bool) {
	if len(s) != 2 {
		return NoSquare, false
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, false
	}
	return bitboard.FromFileRank(int(file-'a'), int(rank-'1')), true
}

// EmitLAN renders m in long-algebraic notation.
func EmitLAN(m Move) string { return m.String() }
