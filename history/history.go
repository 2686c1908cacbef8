// Package history tracks the sequence of positions played in a single CEGO
// session: the ordered board snapshots the feature encoder draws its
// temporal history from, and the Zobrist-hash counts threefold repetition
// detection needs. Grounded on the teacher's zobrist package (the same
// incremental-hash-plus-counter idea, generalized from Scrabble racks and
// board tiles to chess positions) and on spec.md §3/§4.3's seven-position
// history window.
package history

import "github.com/veles-dev/cego/chess"

// Window is the number of most-recent positions the feature encoder draws
// planes from, per spec.md §4.3.
const Window = 7

// History is the ordered record of positions played so far in the current
// game, plus the repetition-count bookkeeping needed for threefold-repetition
// detection. The zero value is an empty history.
type History struct {
	positions []chess.Board
	counts    map[uint64]int
}

// New returns a History seeded with the starting position.
func New(start *chess.Board) *History {
	h := &History{counts: make(map[uint64]int)}
	h.Push(start)
	return h
}

// Push records a newly reached position.
func (h *History) Push(b *chess.Board) {
	if h.counts == nil {
		h.counts = make(map[uint64]int)
	}
	h.positions = append(h.positions, *b)
	h.counts[b.Hash]++
}

// Len returns the number of positions recorded, including the starting one.
func (h *History) Len() int { return len(h.positions) }

// Current returns the most recently pushed position.
func (h *History) Current() *chess.Board {
	return &h.positions[len(h.positions)-1]
}

// RepetitionCount returns how many times the current position's Zobrist
// hash has occurred in the recorded history, including the current
// occurrence. Feeds chess.Board.ClassifyTerminal's threefold check.
func (h *History) RepetitionCount() int {
	return h.counts[h.Current().Hash]
}

// Slice returns up to the last Window positions, oldest first, current
// position last — exactly the order spec.md §4.3's feature encoder
// concatenates along the channel axis. The returned slice may have fewer
// than Window entries early in the game; the feature package pads the
// missing leading slots with the presence-mask plane set to zero.
func (h *History) Slice() []chess.Board {
	n := len(h.positions)
	start := 0
	if n > Window {
		start = n - Window
	}
	return h.positions[start:n]
}
