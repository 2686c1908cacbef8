package mcts

import (
	"testing"

	"github.com/matryer/is"

	"github.com/veles-dev/cego/chess"
)

func newTestTree(is *is.I) *tree {
	b, err := chess.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	is.NoErr(err)
	t := newTree(*b)
	root := t.get(t.root)
	root.n.Store(10)
	root.state.Store(stateExpanded)
	return t
}

func TestSelectChildPrefersUnvisitedOnEqualPrior(t *testing.T) {
	is := is.New(t)
	tr := newTestTree(is)
	root := tr.get(tr.root)

	c0 := tr.alloc(tr.root, chess.Move{}, 0.5, root.board, chess.NotTerminal)
	c1 := tr.alloc(tr.root, chess.Move{}, 0.5, root.board, chess.NotTerminal)
	root.children = []int32{c0, c1}
	tr.get(c0).n.Store(5)
	tr.get(c0).w.Add(5)

	best := selectChild(tr, root, 1.5)
	is.Equal(best, c1)
}

func TestSelectChildBreaksTiesByLowestIndex(t *testing.T) {
	is := is.New(t)
	tr := newTestTree(is)
	root := tr.get(tr.root)

	c0 := tr.alloc(tr.root, chess.Move{}, 0.5, root.board, chess.NotTerminal)
	c1 := tr.alloc(tr.root, chess.Move{}, 0.5, root.board, chess.NotTerminal)
	root.children = []int32{c0, c1}

	best := selectChild(tr, root, 1.5)
	is.Equal(best, c0)
}

func TestBackupReversesVirtualLossExactly(t *testing.T) {
	is := is.New(t)
	tr := newTestTree(is)
	root := tr.get(tr.root)
	cfg := DefaultConfig()

	child := tr.alloc(tr.root, chess.Move{}, 0.5, root.board, chess.NotTerminal)
	root.children = []int32{child}

	cn := tr.get(child)
	cn.n.Add(1)
	cn.w.Add(-cfg.VirtualLoss)
	cn.vl.Add(int64(cfg.VirtualLoss))

	backup(tr, []int32{tr.root, child}, 0.7, cfg)

	is.Equal(cn.vl.Load(), int64(0))
	is.True(cn.w.Load() > 0.69 && cn.w.Load() < 0.71)
	is.Equal(cn.n.Load(), int64(1))
	is.Equal(root.n.Load(), int64(11))
}

func TestUndoVirtualLossRestoresPreSelectionState(t *testing.T) {
	is := is.New(t)
	tr := newTestTree(is)
	root := tr.get(tr.root)
	cfg := DefaultConfig()

	child := tr.alloc(tr.root, chess.Move{}, 0.5, root.board, chess.NotTerminal)
	root.children = []int32{child}

	cn := tr.get(child)
	cn.n.Add(1)
	cn.w.Add(-cfg.VirtualLoss)
	cn.vl.Add(int64(cfg.VirtualLoss))

	undoVirtualLoss(tr, []int32{tr.root, child}, cfg)

	is.Equal(cn.n.Load(), int64(0))
	is.Equal(cn.w.Load(), 0.0)
	is.Equal(cn.vl.Load(), int64(0))
}
