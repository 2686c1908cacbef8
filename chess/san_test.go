package chess

import (
	"testing"

	"github.com/matryer/is"
)

func TestEmitSANBasicPawnAndPieceMoves(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	is.NoErr(err)

	m, err := ParseLAN(b, "e2e4")
	is.NoErr(err)
	is.Equal(b.EmitSAN(m), "e4")

	m, err = ParseLAN(b, "g1f3")
	is.NoErr(err)
	is.Equal(b.EmitSAN(m), "Nf3")
}

func TestEmitSANCapture(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	is.NoErr(err)

	m, err := ParseLAN(b, "e4d5")
	is.NoErr(err)
	is.Equal(b.EmitSAN(m), "exd5")
}

func TestEmitSANEnPassantCapture(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("8/8/8/3pP3/8/8/8/4K2k w - d6 0 1")
	is.NoErr(err)

	m, err := ParseLAN(b, "e5d6")
	is.NoErr(err)
	is.Equal(b.EmitSAN(m), "exd6")
}

func TestEmitSANCastling(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	is.NoErr(err)

	m, err := ParseLAN(b, "e1g1")
	is.NoErr(err)
	is.Equal(b.EmitSAN(m), "O-O")

	m, err = ParseLAN(b, "e1c1")
	is.NoErr(err)
	is.Equal(b.EmitSAN(m), "O-O-O")
}

func TestEmitSANDisambiguatesSameDestination(t *testing.T) {
	is := is.New(t)
	// Both white knights (b1, d1) can reach c3.
	b, err := ParseFEN("4k3/8/8/8/8/8/8/1N1NK3 w - - 0 1")
	is.NoErr(err)

	m, err := ParseLAN(b, "b1c3")
	is.NoErr(err)
	is.Equal(b.EmitSAN(m), "Nbc3")

	m, err = ParseLAN(b, "d1c3")
	is.NoErr(err)
	is.Equal(b.EmitSAN(m), "Ndc3")
}

func TestEmitSANCheckAndMateSuffixes(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("7k/5K2/8/8/8/8/8/1Q6 w - - 0 1")
	is.NoErr(err)

	m, err := ParseLAN(b, "b1h1")
	is.NoErr(err)
	is.Equal(b.EmitSAN(m), "Qh1#")
}
