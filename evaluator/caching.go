package evaluator

import (
	"context"
	"math"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/veles-dev/cego/chess"
)

// cacheEntrySize approximates the bytes one cached Result occupies: a
// policy float64 per legal move (generously budgeted at 32 possible moves)
// plus the value and map/bookkeeping overhead.
const cacheEntrySize = 32*8 + 16 + 48

// CachingEvaluator memoizes EvaluateBatch results by position, sized as a
// fraction of system memory the way the teacher's transposition table sizes
// itself (endgame/negamax/transposition_table.go's Reset): pick the largest
// power-of-two entry count that fits the budget. Keys are the position's
// Zobrist hash folded through xxhash together with the side to move, so a
// cache hit never needs to re-walk the legal-move list to confirm identity
// — repetition of the exact same (hash, side-to-move) pair is assumed to
// mean the same position, which holds as long as the Zobrist table has no
// collisions in practice.
type CachingEvaluator struct {
	inner Evaluator

	mu      sync.Mutex
	entries map[uint64]Result
	order   []uint64
	cap     int
}

// NewCachingEvaluator wraps inner with an LRU-ish cache sized to use at
// most fractionOfMemory of total system memory.
func NewCachingEvaluator(inner Evaluator, fractionOfMemory float64) *CachingEvaluator {
	total := memory.TotalMemory()
	capEntries := int(fractionOfMemory * float64(total) / float64(cacheEntrySize))
	if capEntries < 1024 {
		capEntries = 1024
	}
	capEntries = 1 << int(math.Log2(float64(capEntries)))

	log.Info().Int("cache_entries", capEntries).
		Uint64("total_system_memory_bytes", total).
		Msg("evaluator cache sized")

	return &CachingEvaluator{
		inner:   inner,
		entries: make(map[uint64]Result, capEntries),
		cap:     capEntries,
	}
}

func cacheKey(positions []chess.Board) uint64 {
	b := positions[len(positions)-1]
	var buf [9]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(b.Hash >> (8 * i))
	}
	buf[8] = byte(b.SideToMove)
	return xxhash.Sum64(buf[:])
}

func (c *CachingEvaluator) EvaluateBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))
	misses := make([]Request, 0, len(reqs))
	missIdx := make([]int, 0, len(reqs))
	keys := make([]uint64, len(reqs))

	c.mu.Lock()
	for i, req := range reqs {
		key := cacheKey(req.Positions)
		keys[i] = key
		if hit, ok := c.entries[key]; ok {
			results[i] = hit
			continue
		}
		misses = append(misses, req)
		missIdx = append(missIdx, i)
	}
	c.mu.Unlock()

	if len(misses) == 0 {
		return results, nil
	}

	computed, err := c.inner.EvaluateBatch(ctx, misses)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i, idx := range missIdx {
		results[idx] = computed[i]
		c.put(keys[idx], computed[i])
	}
	c.mu.Unlock()

	return results, nil
}

// put inserts, evicting the oldest entry (by insertion order) once the
// table is full. This is a cheap FIFO approximation of LRU, adequate given
// the table is sized generously relative to a single search's working set.
func (c *CachingEvaluator) put(key uint64, r Result) {
	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.cap {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = r
}
