package mcts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/veles-dev/cego/chess"
	"github.com/veles-dev/cego/evaluator"
	"github.com/veles-dev/cego/history"
)

func mustParse(is *is.I, fen string) *chess.Board {
	b, err := chess.ParseFEN(fen)
	is.NoErr(err)
	return b
}

func TestSearchFindsMateInOne(t *testing.T) {
	is := is.New(t)
	// Black king boxed into the corner by its own flight squares: g8 and g7
	// are covered by the white king on f7, h7 by the queen's own file once
	// it lands on h1. Qb1-h1 is the only mate; everything else leaves the
	// black king a legal reply.
	b := mustParse(is, "7k/5K2/8/8/8/8/8/1Q6 w - - 0 1")
	h := history.New(b)

	cfg := DefaultConfig()
	cfg.Workers = 1
	eng := New(evaluator.Stub{Value: 0}, cfg)

	deadline := time.Now().Add(200 * time.Millisecond)
	move, stats, err := eng.Search(context.Background(), h, deadline)
	is.NoErr(err)
	is.True(stats.Simulations > 0)
	is.True(stats.OutstandingVL == 0)

	legal := b.LegalMoves()
	found := false
	for _, m := range legal {
		if m == move {
			found = true
			break
		}
	}
	is.True(found)

	next := b.Make(move)
	is.Equal(next.ClassifyTerminal(1), chess.Checkmate)
}

func TestSearchRootTerminalReturnsError(t *testing.T) {
	is := is.New(t)
	// Black has been checkmated: white queen and king corner the black king,
	// no legal black response exists.
	b := mustParse(is, "k1K5/1Q6/8/8/8/8/8/8 b - - 0 1")
	h := history.New(b)

	eng := New(evaluator.Stub{Value: 0}, DefaultConfig())
	_, _, err := eng.Search(context.Background(), h, time.Now().Add(50*time.Millisecond))
	is.Equal(err, ErrRootTerminal)
}

func TestSearchVirtualLossFullyReversed(t *testing.T) {
	is := is.New(t)
	b := mustParse(is, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	h := history.New(b)

	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.BatchSize = 4
	cfg.BatchTimeout = time.Millisecond
	eng := New(evaluator.Stub{Value: 0}, cfg)

	_, stats, err := eng.Search(context.Background(), h, time.Now().Add(150*time.Millisecond))
	is.NoErr(err)
	is.Equal(stats.OutstandingVL, int64(0))
	is.True(stats.Simulations == stats.RootVisits)
}

type failingEvaluator struct{}

var errFailingEvaluator = errors.New("evaluator unavailable")

func (failingEvaluator) EvaluateBatch(ctx context.Context, reqs []evaluator.Request) ([]evaluator.Result, error) {
	return nil, errFailingEvaluator
}

func TestSearchFatalEvaluatorFailureAtRootForfeits(t *testing.T) {
	is := is.New(t)
	b := mustParse(is, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	h := history.New(b)

	eng := New(failingEvaluator{}, DefaultConfig())
	_, _, err := eng.Search(context.Background(), h, time.Now().Add(50*time.Millisecond))
	is.True(err != nil)
	var evalErr *EvaluatorFailure
	is.True(errors.As(err, &evalErr))
}

func TestSearchReturnsLegalMove(t *testing.T) {
	is := is.New(t)
	b := mustParse(is, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	h := history.New(b)
	legal := b.LegalMoves()

	eng := New(evaluator.Stub{Value: 0}, DefaultConfig())
	move, _, err := eng.Search(context.Background(), h, time.Now().Add(100*time.Millisecond))
	is.NoErr(err)

	found := false
	for _, m := range legal {
		if m == move {
			found = true
			break
		}
	}
	is.True(found)
}
