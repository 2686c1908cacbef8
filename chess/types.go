// Package chess implements bitboard-based board representation and fully
// legal move generation, grounded on the LERF layout and make/unmake
// semantics of spec.md §3-§4.2.
package chess

import (
	"fmt"

	"github.com/veles-dev/cego/bitboard"
)

type Square = bitboard.Square

const NoSquare = bitboard.NoSquare

// Color is one of the two sides.
type Color int8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Piece is one of the six piece kinds, colorless.
type Piece int8

const (
	Pawn Piece = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPiece Piece = -1
)

func (p Piece) String() string {
	switch p {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// letter returns the piece's FEN/LAN letter, uppercase (caller lowercases
// for black).
func (p Piece) letter() byte {
	return "PNBRQK"[p]
}

func pieceFromLetter(l byte) (Piece, Color, bool) {
	upper := l
	color := White
	if l >= 'a' && l <= 'z' {
		upper = l - 'a' + 'A'
		color = Black
	}
	switch upper {
	case 'P':
		return Pawn, color, true
	case 'N':
		return Knight, color, true
	case 'B':
		return Bishop, color, true
	case 'R':
		return Rook, color, true
	case 'Q':
		return Queen, color, true
	case 'K':
		return King, color, true
	}
	return NoPiece, White, false
}

// ColoredPiece packs a piece kind with a color; it's the unit the board's
// twelve bitboards are indexed by.
type ColoredPiece struct {
	Piece Piece
	Color Color
}

// Index returns a dense 0..11 index, (color*6 + piece), white pieces first.
func (cp ColoredPiece) Index() int { return int(cp.Color)*6 + int(cp.Piece) }

// Move is an origin/target square pair with an optional promotion piece.
// Castling is represented by the king's own origin/target; en-passant by
// the capturing pawn's origin/target. No flags are stored; semantics are
// recovered from the board at make-time, per spec.md §3.
type Move struct {
	From      Square
	To        Square
	Promotion Piece // NoPiece if not a promotion
}

func (m Move) String() string {
	return fmt.Sprintf("%s%s%s", m.From, m.To, promoLetter(m.Promotion))
}

func promoLetter(p Piece) string {
	switch p {
	case Queen:
		return "q"
	case Rook:
		return "r"
	case Bishop:
		return "b"
	case Knight:
		return "n"
	default:
		return ""
	}
}

// CastleRights tracks the four independent castling booleans of spec.md §3.
type CastleRights struct {
	WhiteKingside  bool
	WhiteQueenside bool
	BlackKingside  bool
	BlackQueenside bool
}
