package mcts

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veles-dev/cego/chess"
	"github.com/veles-dev/cego/evaluator"
	"github.com/veles-dev/cego/history"
)

// ErrRootTerminal is returned when Search is asked to search a position
// that is already game-over: checkmate, stalemate, fifty-move, threefold
// repetition, or insufficient material. No simulations are run.
var ErrRootTerminal = errors.New("mcts: root position is already terminal")

// ErrNoLegalMoves guards the case ClassifyTerminal should already have
// caught; surfacing it distinctly lets the line-protocol driver turn it
// into a forfeit signal instead of a panic.
var ErrNoLegalMoves = errors.New("mcts: root position has no legal moves")

// Stats is a snapshot of one completed search, for logging and for the
// testable invariant that the sum of root child visit counts equals the
// number of completed simulations, with zero virtual-loss credits
// outstanding.
type Stats struct {
	Simulations   int64
	RootVisits    int64
	OutstandingVL int64
	BestMoveQ     float64
}

// Engine runs AlphaZero-style PUCT search against a shared Evaluator.
type Engine struct {
	eval evaluator.Evaluator
	cfg  Config

	lastTree  *tree
	lastStats Stats
}

// New builds an Engine that evaluates leaves through eval using cfg's
// tuning constants.
func New(eval evaluator.Evaluator, cfg Config) *Engine {
	return &Engine{eval: eval, cfg: cfg}
}

// Search runs PUCT simulations from hist's current position until
// deadline, then returns the most-visited root move. hist supplies both
// the root position and the real game history the feature encoder reaches
// back into for positions near the root.
func (e *Engine) Search(ctx context.Context, hist *history.History, deadline time.Time) (chess.Move, Stats, error) {
	root := hist.Current()
	rootRepCount := hist.RepetitionCount()

	if term := root.ClassifyTerminal(rootRepCount); term != chess.NotTerminal {
		return chess.Move{}, Stats{}, ErrRootTerminal
	}
	if len(root.LegalMoves()) == 0 {
		return chess.Move{}, Stats{}, ErrNoLegalMoves
	}

	t := newTree(*root)
	t.historyPrefix = prefixBefore(hist)

	b := newBatcher(e.eval, e.cfg)
	bctx, cancelBatcher := context.WithCancel(ctx)
	defer cancelBatcher()
	go b.run(bctx)

	sctx, cancelSearch := context.WithDeadline(bctx, deadline)
	defer cancelSearch()

	rootValue, ok, err := e.tryExpand(sctx, t, t.root, rootRepCount)
	if !ok {
		return chess.Move{}, Stats{}, &InternalInvariantViolation{Msg: "root expansion lost a race it could not have lost"}
	}
	if err != nil {
		// The root is the one expansion with no fallback: if it cannot
		// produce any value at all, the search cannot proceed, per
		// spec.md §7's "fatal evaluator error" forfeit path.
		return chess.Move{}, Stats{}, &EvaluatorFailure{Err: err}
	}
	backup(t, []int32{t.root}, rootValue, e.cfg)

	workers := e.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(sctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			e.simulateUntilDone(gctx, t, rootRepCount, b)
			return nil
		})
	}
	_ = g.Wait()

	move, stats := e.selectMove(t)
	e.lastTree = t
	e.lastStats = stats
	logSearchStats(t, stats)
	return move, stats, nil
}

// LastSearchStats returns the iteration count, root value estimate, and
// other bookkeeping from the most recently completed Search call. A
// supplemented accessor (spec.md's distillation dropped observability data
// present in the original implementation's SearchInfo); never exposed on
// the CEGO wire protocol itself.
func (e *Engine) LastSearchStats() Stats { return e.lastStats }

// LastPrincipalVariation returns the best line found by the most recently
// completed Search call, root move first.
func (e *Engine) LastPrincipalVariation() []chess.Move {
	if e.lastTree == nil {
		return nil
	}
	return principalVariation(e.lastTree)
}

// simulateUntilDone runs PUCT simulations in a tight loop until ctx is
// cancelled (the search deadline, or an ancestor's cancellation).
func (e *Engine) simulateUntilDone(ctx context.Context, t *tree, rootRepCount int, b *batcher) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e.simulateOnce(ctx, t, rootRepCount, b)
	}
}

func (e *Engine) simulateOnce(ctx context.Context, t *tree, rootRepCount int, b *batcher) {
	path := e.selectLeaf(t)
	leafIdx := path[len(path)-1]
	nd := t.get(leafIdx)

	if nd.state.Load() == stateExpanded {
		// selectLeaf only stops early on an expanded node when that node
		// is terminal (otherwise it would have kept descending into a
		// child), so its value is fixed regardless of how many times it
		// is revisited.
		backup(t, path, terminalValue(nd.terminal), e.cfg)
		return
	}

	value, ok := e.tryExpandFromWorker(ctx, t, leafIdx, rootRepCount, b)
	if !ok {
		// Another worker already owns this leaf's expansion. Undo the
		// virtual loss this simulation applied on the way down and
		// retry from the root rather than wait.
		undoVirtualLoss(t, path, e.cfg)
		return
	}
	backup(t, path, value, e.cfg)
}

// tryExpand wins the unexpanded->expanding CAS unconditionally (used only
// for the root, before any worker is running) and expands synchronously. A
// non-nil error means the root's own evaluator call failed with nothing to
// fall back to; the caller treats that as fatal.
func (e *Engine) tryExpand(ctx context.Context, t *tree, idx int32, rootRepCount int) (float64, bool, error) {
	nd := t.get(idx)
	if !nd.state.CompareAndSwap(stateUnexpanded, stateExpanding) {
		return 0, false, nil
	}
	value, err := e.doExpand(ctx, t, idx, rootRepCount, nil)
	return value, true, err
}

// tryExpandFromWorker is tryExpand with a batcher to route the evaluator
// call through, used by every worker past the initial root expansion. Its
// error is always nil: only root expansion can fail fatally, since every
// deeper leaf degrades to uniform priors on evaluator error instead.
func (e *Engine) tryExpandFromWorker(ctx context.Context, t *tree, idx int32, rootRepCount int, b *batcher) (float64, bool) {
	nd := t.get(idx)
	if !nd.state.CompareAndSwap(stateUnexpanded, stateExpanding) {
		return 0, false
	}
	value, _ := e.doExpand(ctx, t, idx, rootRepCount, b)
	return value, true
}

// doExpand determines idx's terminal status, and for non-terminal leaves
// calls the evaluator (batched through b, or directly via e.eval when b is
// nil, as happens for the synchronous root expansion) to obtain priors for
// each child and a value for idx itself. An evaluator failure at the root
// (b == nil) is returned rather than papered over, since the root has no
// earlier expansion to fall back on; every other leaf degrades to uniform
// priors and a neutral value on failure so one bad batch never aborts the
// whole search.
func (e *Engine) doExpand(ctx context.Context, t *tree, idx int32, rootRepCount int, b *batcher) (float64, error) {
	nd := t.get(idx)
	defer nd.state.Store(stateExpanded)

	term := e.terminalFor(t, idx, rootRepCount)
	if term != chess.NotTerminal {
		nd.terminal = term
		return terminalValue(term), nil
	}

	legal := nd.board.LegalMoves()
	if len(legal) == 0 {
		// ClassifyTerminal should have already caught this; guard anyway
		// rather than allocate a childless expanded node.
		nd.terminal = chess.Stalemate
		return 0, nil
	}

	req := evaluator.Request{Positions: t.windowFor(idx), Legal: legal}
	var result evaluator.Result
	var err error
	if b != nil {
		result, err = b.evaluate(ctx, req)
	} else {
		var results []evaluator.Result
		results, err = e.eval.EvaluateBatch(ctx, []evaluator.Request{req})
		if err == nil {
			result = results[0]
		}
	}
	if err != nil {
		if idx == t.root {
			return 0, err
		}
		// Degrade gracefully: fall back to uniform priors and a neutral
		// value so the search can still complete and return a move
		// rather than abort the whole tree on one transient failure.
		result = evaluator.Result{Policy: uniformPolicy(len(legal)), Value: 0}
	}

	policy := result.Policy
	if idx == t.root && e.cfg.RootNoise {
		policy = mixDirichletNoise(policy, e.cfg.DirichletAlpha, e.cfg.DirichletEpsilon)
	}

	children := make([]int32, len(legal))
	for i, m := range legal {
		childBoard := nd.board.Make(m)
		children[i] = t.alloc(idx, m, policy[i], childBoard, chess.NotTerminal)
	}
	nd.children = children
	return result.Value, nil
}

func uniformPolicy(n int) []float64 {
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	uniform := 1.0 / float64(n)
	for i := range out {
		out[i] = uniform
	}
	return out
}

func mixDirichletNoise(policy []float64, alpha, epsilon float64) []float64 {
	noise := dirichletNoise(len(policy), alpha)
	out := make([]float64, len(policy))
	for i := range out {
		out[i] = (1-epsilon)*policy[i] + epsilon*noise[i]
	}
	return out
}

// terminalValue returns the scalar value of a terminal position from its
// own side to move's perspective: -1 for a side that has just been
// checkmated, 0 for every drawn terminal class.
func terminalValue(t chess.Terminal) float64 {
	if t == chess.Checkmate {
		return -1
	}
	return 0
}

// terminalFor classifies idx's terminal status. The root uses the real
// repetition count carried over from game history; every other node uses
// only the repetition count visible within the search tree itself, since
// positions below the root were never actually played and the driver's
// history has no record of them.
func (e *Engine) terminalFor(t *tree, idx int32, rootRepCount int) chess.Terminal {
	nd := t.get(idx)
	repCount := rootRepCount
	if idx != t.root {
		repCount = t.repetitionCountInPath(idx)
	}
	return nd.board.ClassifyTerminal(repCount)
}

func prefixBefore(hist *history.History) []chess.Board {
	slice := hist.Slice()
	if len(slice) == 0 {
		return nil
	}
	return slice[:len(slice)-1]
}
