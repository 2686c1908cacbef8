package evaluator

import (
	"context"
	"testing"

	"github.com/matryer/is"

	"github.com/veles-dev/cego/chess"
)

func TestRestrictAndRenormalizeSumsToOne(t *testing.T) {
	is := is.New(t)
	raw := make([]float32, PolicySize)
	b, err := chess.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	is.NoErr(err)
	legal := b.LegalMoves()
	for _, m := range legal {
		raw[MoveIndex(m)] = 1.0
	}
	out := restrictAndRenormalize(raw, legal)
	var sum float64
	for _, v := range out {
		sum += v
	}
	is.True(sum > 0.999 && sum < 1.001)
}

func TestRestrictAndRenormalizeFloorsZeroPriors(t *testing.T) {
	is := is.New(t)
	raw := make([]float32, PolicySize)
	b, err := chess.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	is.NoErr(err)
	legal := b.LegalMoves()
	// Only the first legal move gets a nonzero raw prior; every other
	// legal move must still receive a nonzero floor after renormalization.
	raw[MoveIndex(legal[0])] = 5.0
	out := restrictAndRenormalize(raw, legal)
	for i, v := range out {
		is.True(v > 0)
		_ = i
	}
}

func TestStubReturnsUniformPolicy(t *testing.T) {
	is := is.New(t)
	b, err := chess.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	is.NoErr(err)
	legal := b.LegalMoves()
	stub := Stub{Value: 0.25}
	results, err := stub.EvaluateBatch(context.Background(), []Request{{Legal: legal}})
	is.NoErr(err)
	is.Equal(len(results), 1)
	is.Equal(results[0].Value, 0.25)
	is.Equal(len(results[0].Policy), len(legal))
	for _, p := range results[0].Policy {
		is.Equal(p, 1.0/float64(len(legal)))
	}
}
