package evaluator

import "context"

// Stub is the deterministic test evaluator spec.md §4.5 calls for:
// "a test implementation that returns uniform priors and a fixed value is
// the minimum required for testing search logic independently of any
// neural network." It implements Evaluator directly, bypassing the
// encode/restrict/renormalize machinery entirely.
type Stub struct {
	Value float64
}

func (s Stub) EvaluateBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	out := make([]Result, len(reqs))
	for i, req := range reqs {
		n := len(req.Legal)
		policy := make([]float64, n)
		if n > 0 {
			uniform := 1.0 / float64(n)
			for j := range policy {
				policy[j] = uniform
			}
		}
		out[i] = Result{Policy: policy, Value: s.Value}
	}
	return out, nil
}
