package chess

import (
	"testing"

	"github.com/matryer/is"
)

func TestParseFENStartingPosition(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	is.NoErr(err)
	is.Equal(b.SideToMove, White)
	is.Equal(b.Bitboard(Pawn, White).Popcount(), 8)
	is.Equal(b.Bitboard(King, Black).Popcount(), 1)
	is.True(b.Castle.WhiteKingside)
	is.True(b.Castle.BlackQueenside)
	is.Equal(b.EnPassant, NoSquare)
}

func TestEmitFENRoundTrip(t *testing.T) {
	is := is.New(t)
	cases := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
		"8/8/8/3pP3/8/8/8/4K2k b - e3 0 12",
		"4k3/8/8/8/8/8/8/4K3 w - - 5 50",
	}
	for _, fen := range cases {
		b, err := ParseFEN(fen)
		is.NoErr(err)
		is.Equal(b.EmitFEN(), fen)
	}
}

func TestParseFENRejectsMalformed(t *testing.T) {
	is := is.New(t)
	badCases := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0",          // too few fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",                 // wrong rank count
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKXNR w KQkq - 0 1",        // bad piece letter
		"8/8/8/8/8/8/8/8 w KQkq - 0 1",                                    // no kings
		"kkbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",        // three black kings
		"rnbqkbnr/PPPPPPPP/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",        // pawns on rank 8
	}
	for _, fen := range badCases {
		_, err := ParseFEN(fen)
		is.True(err != nil)
	}
}

func TestParseFENRejectsCheckOnSideNotToMove(t *testing.T) {
	is := is.New(t)
	// White king on e1, black rook on e8 giving check to white, but it's
	// black to move — meaning white's own last move left its king in
	// check, which cannot happen in a reachable position.
	_, err := ParseFEN("k3r3/8/8/8/8/8/8/4K3 b - - 0 1")
	is.True(err != nil)
}
