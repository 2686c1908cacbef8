package chess

import (
	"testing"

	"github.com/matryer/is"
)

func TestParseLANRoundTrip(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	is.NoErr(err)

	for _, m := range b.LegalMoves() {
		text := EmitLAN(m)
		parsed, err := ParseLAN(b, text)
		is.NoErr(err)
		is.Equal(parsed, m)
	}
}

func TestParseLANRejectsIllegalMove(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	is.NoErr(err)

	_, err = ParseLAN(b, "e2e5") // pawn can't jump three ranks
	is.True(err != nil)

	_, err = ParseLAN(b, "e2e") // malformed
	is.True(err != nil)
}

func TestParseLANCastleAndEnPassant(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	is.NoErr(err)
	m, err := ParseLAN(b, "e1g1")
	is.NoErr(err)
	is.Equal(m.From, b.KingSquare(White))

	b2, err := ParseFEN("8/8/8/3pP3/8/8/8/4K2k w - d6 0 1")
	is.NoErr(err)
	m2, err := ParseLAN(b2, "e5d6")
	is.NoErr(err)
	is.Equal(EmitLAN(m2), "e5d6")
}
