package mcts

import "fmt"

// EvaluatorFailure wraps a fatal evaluator error encountered expanding the
// root, per spec.md §7: transient failures deeper in the tree degrade
// gracefully instead of surfacing here, but a root that cannot produce any
// value at all leaves the search nothing to fall back on.
type EvaluatorFailure struct {
	Err error
}

func (e *EvaluatorFailure) Error() string { return fmt.Sprintf("mcts: evaluator failure: %v", e.Err) }
func (e *EvaluatorFailure) Unwrap() error { return e.Err }

// InternalInvariantViolation marks a condition spec.md §7 lists as a bug in
// the caller or the engine itself rather than an external input error.
type InternalInvariantViolation struct {
	Msg string
}

func (e *InternalInvariantViolation) Error() string {
	return "mcts: internal invariant violated: " + e.Msg
}
