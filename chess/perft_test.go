package chess

import (
	"testing"

	"github.com/matryer/is"
)

// Perft counts for the standard starting position and the "kiwipete" stress
// position are the de facto correctness benchmark for any legal move
// generator; both are reproduced from original_source/hash-core/benches/
// perft.rs's choice of default position and widely published results.
func TestPerftStartingPosition(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	is.NoErr(err)

	want := []uint64{1, 20, 400, 8902, 197281, 4865609}
	for depth := 1; depth < len(want); depth++ {
		is.Equal(Perft(b, depth), want[depth])
	}
}

func TestPerftKiwipete(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	is.NoErr(err)

	want := []uint64{1, 48, 2039, 97862, 4085603, 193690690}
	for depth := 1; depth < len(want); depth++ {
		is.Equal(Perft(b, depth), want[depth])
	}
}

// TestPerftStandardSuitePositions3Through6 covers positions 3-6 of the
// standard perft suite (chessprogramming.org/Perft_Results), exercising
// en-passant-heavy pawn structures, castling-and-promotion interaction, and
// deep tactical branching the starting position and Kiwipete don't reach.
func TestPerftStandardSuitePositions3Through6(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want []uint64
	}{
		{
			name: "position3",
			fen:  "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
			want: []uint64{1, 14, 191, 2812, 43238, 674624},
		},
		{
			name: "position4",
			fen:  "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
			want: []uint64{1, 6, 264, 9467, 422333},
		},
		{
			name: "position5",
			fen:  "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
			want: []uint64{1, 44, 1486, 62379, 2103487},
		},
		{
			name: "position6",
			fen:  "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
			want: []uint64{1, 46, 2079, 89890, 3894594},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			b, err := ParseFEN(tc.fen)
			is.NoErr(err)
			for depth := 1; depth < len(tc.want); depth++ {
				is.Equal(Perft(b, depth), tc.want[depth])
			}
		})
	}
}

func TestPerftPromotionPosition(t *testing.T) {
	is := is.New(t)
	// A pawn one step from promotion on both sides, exercising the
	// under-promotion branch of genPawnMoves.
	b, err := ParseFEN("n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1")
	is.NoErr(err)

	want := []uint64{1, 24, 496}
	for depth := 1; depth < len(want); depth++ {
		is.Equal(Perft(b, depth), want[depth])
	}
}
