package mcts

import (
	"context"
	"time"

	"github.com/veles-dev/cego/evaluator"
)

// batcher coalesces concurrently pending leaf evaluations into shared
// Evaluator.EvaluateBatch calls, per spec.md §4.5/§9's batching barrier:
// leaves enter a bounded queue, and a flush happens either once the queue
// reaches Config.BatchSize or after Config.BatchTimeout elapses with
// fewer. Every waiting worker resumes when the batch it joined completes.
type batcher struct {
	eval evaluator.Evaluator
	cfg  Config
	reqs chan batchRequest
}

type batchRequest struct {
	req    evaluator.Request
	result chan batchResult
}

type batchResult struct {
	result evaluator.Result
	err    error
}

func newBatcher(eval evaluator.Evaluator, cfg Config) *batcher {
	return &batcher{
		eval: eval,
		cfg:  cfg,
		reqs: make(chan batchRequest, cfg.Workers*2+1),
	}
}

// run drives the batching loop until ctx is cancelled, flushing any still
// pending requests before returning so no caller of evaluate blocks
// forever on a cancelled search.
func (b *batcher) run(ctx context.Context) {
	pending := make([]batchRequest, 0, b.cfg.BatchSize)
	timer := time.NewTimer(b.cfg.BatchTimeout)
	defer timer.Stop()
	flush := func() {
		if len(pending) == 0 {
			return
		}
		reqs := make([]evaluator.Request, len(pending))
		for i, p := range pending {
			reqs[i] = p.req
		}
		results, err := b.eval.EvaluateBatch(ctx, reqs)
		for i, p := range pending {
			if err != nil {
				p.result <- batchResult{err: err}
				continue
			}
			p.result <- batchResult{result: results[i]}
		}
		pending = pending[:0]
	}
	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case req := <-b.reqs:
			pending = append(pending, req)
			if len(pending) >= b.cfg.BatchSize {
				flush()
				timer.Reset(b.cfg.BatchTimeout)
			}
		case <-timer.C:
			flush()
			timer.Reset(b.cfg.BatchTimeout)
		}
	}
}

// evaluate enqueues req and blocks until its batch completes or ctx is
// cancelled.
func (b *batcher) evaluate(ctx context.Context, req evaluator.Request) (evaluator.Result, error) {
	resultCh := make(chan batchResult, 1)
	select {
	case b.reqs <- batchRequest{req: req, result: resultCh}:
	case <-ctx.Done():
		return evaluator.Result{}, ctx.Err()
	}
	select {
	case res := <-resultCh:
		return res.result, res.err
	case <-ctx.Done():
		return evaluator.Result{}, ctx.Err()
	}
}
