// Package evaluator adapts an external neural-network position evaluator to
// the MCTS search, per spec.md §4.4. It owns feature encoding (reaching back
// into position history as needed), batching multiple pending leaves into a
// single backend call, and restricting/renormalizing the backend's policy
// output to the position's legal moves.
package evaluator

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/veles-dev/cego/chess"
	"github.com/veles-dev/cego/feature"
)

// Request is one pending leaf: the position history to encode (current
// position last) and the legal moves to restrict the policy to.
type Request struct {
	Positions []chess.Board
	Legal     []chess.Move
}

// Result is the adapter's output for one Request: a policy distribution
// aligned index-for-index with Request.Legal, summing to 1, and a scalar
// value in [-1, 1] from the side to move's perspective.
type Result struct {
	Policy []float64
	Value  float64
}

// Evaluator is the capability the MCTS engine is polymorphic over, per
// spec.md §4.5's "polymorphism over evaluators" note. A deterministic stub
// returning uniform priors and a fixed value is sufficient to exercise
// search logic independently of any real network.
type Evaluator interface {
	EvaluateBatch(ctx context.Context, reqs []Request) ([]Result, error)
}

// Backend is the raw neural-network call a concrete evaluator transport
// implements: given a batch of encoded feature tensors, return one raw
// policy-logit vector (length PolicySize, in the fixed move enumeration of
// policyindex.go) and one value per tensor.
type Backend interface {
	Infer(ctx context.Context, tensors []*feature.Buffer) (policies [][]float32, values []float32, err error)
}

// Adapter turns a Backend into an Evaluator: it encodes each request's
// position history via the feature package, calls the backend once for the
// whole batch, then restricts and renormalizes each returned policy to that
// request's legal moves.
type Adapter struct {
	Backend Backend
}

// New wraps backend in the restrict/renormalize adapter spec.md §4.4
// requires of every evaluator transport.
func New(backend Backend) *Adapter { return &Adapter{Backend: backend} }

func (a *Adapter) EvaluateBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	buffers := make([]*feature.Buffer, len(reqs))
	for i, req := range reqs {
		buf := feature.Acquire()
		feature.Encode(buf, req.Positions)
		buffers[i] = buf
	}
	defer func() {
		for _, buf := range buffers {
			buf.Release()
		}
	}()

	policies, values, err := a.Backend.Infer(ctx, buffers)
	if err != nil {
		log.Error().Err(err).Int("batch_size", len(reqs)).Msg("evaluator backend call failed")
		return nil, err
	}

	results := make([]Result, len(reqs))
	for i, req := range reqs {
		results[i] = Result{
			Policy: restrictAndRenormalize(policies[i], req.Legal),
			Value:  float64(values[i]),
		}
	}
	return results, nil
}

// priorFloor is the small uniform floor spec.md §4.4 assigns to any legal
// move with zero prior after restriction, so a single bad or stale weight
// never completely starves a legal move of exploration.
const priorFloor = 1e-3

func restrictAndRenormalize(rawPolicy []float32, legal []chess.Move) []float64 {
	out := make([]float64, len(legal))
	var sum float64
	for i, m := range legal {
		idx := MoveIndex(m)
		v := float64(rawPolicy[idx])
		if v < 0 {
			v = 0
		}
		out[i] = v
		sum += v
	}
	if sum == 0 {
		for i := range out {
			out[i] = 1.0
		}
		sum = float64(len(out))
	} else {
		for i, v := range out {
			if v == 0 {
				out[i] = priorFloor
				sum += priorFloor
			}
		}
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
