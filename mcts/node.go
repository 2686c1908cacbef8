// Package mcts implements the AlphaZero-style PUCT search of spec.md §4.5:
// a shared tree mutated under per-node atomics, root Dirichlet noise,
// virtual-loss-guided parallel selection, and evaluator-batched expansion.
// The worker-pool shape is grounded on the teacher's montecarlo package
// (montecarlo/montecarlo.go's errgroup.Group fan-out over Simulate); the
// per-node atomic counters generalize the teacher's transposition-table
// atomic bookkeeping (endgame/negamax/transposition_table.go) from a fixed
// 16-byte table entry to a growable node arena.
package mcts

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/veles-dev/cego/chess"
	"github.com/veles-dev/cego/feature"
)

// expansion states, per spec.md §4.5's node state machine.
const (
	stateUnexpanded int32 = iota
	stateExpanding
	stateExpanded
)

// atomicFloat64 accumulates a float64 total under atomic CAS, the standard
// Go idiom for an atomic floating-point accumulator (sync/atomic itself
// only provides integer and pointer atomics).
type atomicFloat64 struct{ bits atomic.Uint64 }

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := a.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if a.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// node is one arena slot. N, W, VL, and state are the four atomically
// shared fields spec.md §4.5/§9 names explicitly; everything else is
// written once, by the single worker that wins expansion, before state
// flips to expanded, and is safe to read without synchronization
// thereafter (a benign data race on the write-once fields would still be
// a bug, so expansion fully populates the node before the state flip).
type node struct {
	parent int32
	move   chess.Move
	prior  float64

	n     atomic.Int64
	w     atomicFloat64
	vl    atomic.Int64
	state atomic.Int32

	children []int32
	board    chess.Board
	terminal chess.Terminal
}

func (nd *node) visits() int64 { return nd.n.Load() }

// q returns the action-value W/max(1,n), per spec.md §4.5's PUCT formula.
func (nd *node) q() float64 {
	n := nd.n.Load()
	if n < 1 {
		n = 1
	}
	return nd.w.Load() / float64(n)
}

// tree is the shared node arena. Index 0 is never a valid node so that the
// zero value of an int32 child slot can mean "absent" if ever needed; root
// is tracked explicitly regardless.
type tree struct {
	mu    sync.RWMutex
	nodes []*node
	root  int32

	// historyPrefix is the real game history strictly before root, oldest
	// first. windowFor prepends it to a node's in-tree ancestor path so
	// leaves near the root still get a full feature.History-deep window.
	historyPrefix []chess.Board
}

func newTree(rootBoard chess.Board) *tree {
	t := &tree{nodes: make([]*node, 1, 1024)} // nodes[0] is a sentinel, never addressed
	root := &node{parent: -1, board: rootBoard}
	t.nodes = append(t.nodes, root)
	t.root = int32(len(t.nodes) - 1)
	return t
}

// get reads a node pointer out of the arena. Guarded by RLock: alloc can
// reallocate the backing slice concurrently with any worker's read, so every
// read needs to be synchronized against that, not just every write.
func (t *tree) get(idx int32) *node {
	t.mu.RLock()
	nd := t.nodes[idx]
	t.mu.RUnlock()
	return nd
}

// alloc appends a new child node and returns its index. Guarded by the same
// mutex get reads under: only the worker that wins a leaf's expanding-state
// CAS calls this, so write contention is limited to distinct workers
// expanding distinct leaves at the same instant, never two workers racing on
// the same leaf.
func (t *tree) alloc(parent int32, move chess.Move, prior float64, board chess.Board, terminal chess.Terminal) int32 {
	nd := &node{parent: parent, move: move, prior: prior, board: board, terminal: terminal}
	t.mu.Lock()
	t.nodes = append(t.nodes, nd)
	idx := int32(len(t.nodes) - 1)
	t.mu.Unlock()
	return idx
}

// windowFor builds the up-to-feature.History-deep position window idx's
// evaluator request should encode: idx's own ancestor chain within the
// tree (oldest first), extended with the driver's real pre-root history
// when that chain alone is shorter than the window, per spec.md §4.3's
// "reaching back into game history as needed" note.
func (t *tree) windowFor(idx int32) []chess.Board {
	path := make([]chess.Board, 0, feature.History)
	for cur := idx; cur != -1 && len(path) < feature.History; cur = t.get(cur).parent {
		path = append(path, t.get(cur).board)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if len(path) >= feature.History {
		return path
	}
	need := feature.History - len(path)
	prefix := t.historyPrefix
	if len(prefix) > need {
		prefix = prefix[len(prefix)-need:]
	}
	out := make([]chess.Board, 0, len(prefix)+len(path))
	out = append(out, prefix...)
	out = append(out, path...)
	return out
}

// repetitionCountInPath counts how many of idx's ancestors within the
// search tree (including idx itself) share idx's Zobrist hash. Used for
// every node but the root, whose repetition count instead comes from the
// driver's real game history.
func (t *tree) repetitionCountInPath(idx int32) int {
	target := t.get(idx).board.Hash
	count := 0
	for cur := idx; cur != -1; cur = t.get(cur).parent {
		if t.get(cur).board.Hash == target {
			count++
		}
	}
	return count
}
