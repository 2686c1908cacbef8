package mcts

import (
	"math"

	"github.com/samber/lo"

	"github.com/veles-dev/cego/chess"
)

// selectLeaf walks from the root by PUCT selection, applying virtual loss
// to every node it enters, until it reaches a node that is not yet fully
// expanded or is a terminal leaf. It returns the full root-to-leaf path.
func (e *Engine) selectLeaf(t *tree) []int32 {
	path := make([]int32, 1, 8)
	path[0] = t.root
	cur := t.root
	for {
		nd := t.get(cur)
		if nd.state.Load() != stateExpanded || nd.terminal != chess.NotTerminal {
			return path
		}
		child := selectChild(t, nd, e.cfg.CPuct)
		cn := t.get(child)
		cn.n.Add(1)
		cn.w.Add(-e.cfg.VirtualLoss)
		cn.vl.Add(int64(e.cfg.VirtualLoss))
		path = append(path, child)
		cur = child
	}
}

// selectChild picks the child maximizing PUCT's Q + U, Q = W/max(1,n) and
// U = c_puct * prior * sqrt(N_parent) / (1 + n_child). Ties go to the
// first child with the winning score, which by construction of
// doExpand's children slice is the lowest move index; lo.MaxBy only
// replaces its running best on a strict improvement, preserving that.
func selectChild(t *tree, parent *node, cpuct float64) int32 {
	sqrtN := math.Sqrt(float64(parent.n.Load()))
	return lo.MaxBy(parent.children, func(c, best int32) bool {
		return puctScore(t, c, sqrtN, cpuct) > puctScore(t, best, sqrtN, cpuct)
	})
}

func puctScore(t *tree, idx int32, sqrtN, cpuct float64) float64 {
	cn := t.get(idx)
	u := cpuct * cn.prior * sqrtN / float64(1+cn.n.Load())
	return cn.q() + u
}

// backup propagates a completed simulation's value from leaf to root. The
// leaf's own value is from the leaf's side-to-move perspective and flips
// sign at each ply up toward the root. Non-root nodes already had their
// visit counted (and their W pessimistically discounted) by the virtual
// loss applied during selectLeaf's descent; backup reverses exactly that
// discount and folds in the real value. The root's visit is only ever
// counted here, since nothing ever "descends into" the root.
func backup(t *tree, path []int32, leafValue float64, cfg Config) {
	value := leafValue
	for i := len(path) - 1; i >= 0; i-- {
		idx := path[i]
		nd := t.get(idx)
		if idx == t.root {
			nd.n.Add(1)
			nd.w.Add(value)
		} else {
			nd.w.Add(cfg.VirtualLoss + value)
			nd.vl.Add(-int64(cfg.VirtualLoss))
		}
		value = -value
	}
}

// undoVirtualLoss reverses the virtual loss a simulation applied along
// path without ever backing up a real value, because the simulation was
// abandoned after losing an expansion race. Every node it touched returns
// exactly to its pre-selection state.
func undoVirtualLoss(t *tree, path []int32, cfg Config) {
	for i := 1; i < len(path); i++ {
		nd := t.get(path[i])
		nd.n.Add(-1)
		nd.w.Add(cfg.VirtualLoss)
		nd.vl.Add(-int64(cfg.VirtualLoss))
	}
}

// selectMove returns the root's child with the highest visit count, ties
// broken by higher Q and then by lowest move index (the order doExpand
// allocated children in, preserved since lo.MaxBy only replaces its
// running best on a strict improvement).
func (e *Engine) selectMove(t *tree) (chess.Move, Stats) {
	root := t.get(t.root)
	best := lo.MaxBy(root.children, func(c, best int32) bool {
		cn, bn := t.get(c), t.get(best)
		if cn.n.Load() != bn.n.Load() {
			return cn.n.Load() > bn.n.Load()
		}
		return cn.q() > bn.q()
	})
	bn := t.get(best)
	var childVisits, outstandingVL int64
	for _, c := range root.children {
		childVisits += t.get(c).n.Load()
	}
	t.mu.RLock()
	for _, nd := range t.nodes {
		if nd != nil {
			outstandingVL += nd.vl.Load()
		}
	}
	t.mu.RUnlock()
	stats := Stats{
		// root.n also counts the backup of the root's own expansion.
		Simulations:   root.n.Load() - 1,
		RootVisits:    childVisits,
		OutstandingVL: outstandingVL,
		BestMoveQ:     bn.q(),
	}
	return bn.move, stats
}
