package mcts

import (
	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/veles-dev/cego/chess"
)

// PrincipalVariation walks the highest-visit child at each step from the
// root, the same descent spec.md §4.5's move selection uses, to surface the
// best line the search found. Not part of the CEGO wire protocol (spec.md
// §4.6/§6 define that exhaustively); exposed only for debug logging and the
// supplemented search-statistics accessor.
func principalVariation(t *tree) []chess.Move {
	var line []chess.Move
	cur := t.root
	for {
		nd := t.get(cur)
		if len(nd.children) == 0 {
			return line
		}
		best := lo.MaxBy(nd.children, func(c, best int32) bool {
			return t.get(c).n.Load() > t.get(best).n.Load()
		})
		bn := t.get(best)
		line = append(line, bn.move)
		if bn.n.Load() == 0 {
			return line
		}
		cur = best
	}
}

// logSearchStats emits a debug-level line with stats and the bucket count of
// a visit-count histogram built across root children (the histogram's bars
// themselves are not printed), grounded on the teacher's SimStats.CalculatePlayStats
// (montecarlo/stats/heatmap.go), which builds the same kind of
// histogram.Hist over simulated-play score distributions.
func logSearchStats(t *tree, stats Stats) {
	root := t.get(t.root)
	if len(root.children) == 0 {
		return
	}
	visits := lo.Map(root.children, func(c int32, _ int) float64 {
		return float64(t.get(c).n.Load())
	})
	bins := len(visits)
	if bins > 15 {
		bins = 15
	}
	hist := histogram.Hist(bins, visits)

	log.Debug().
		Int64("simulations", stats.Simulations).
		Int64("root_visits", stats.RootVisits).
		Int64("outstanding_vl", stats.OutstandingVL).
		Float64("best_move_q", stats.BestMoveQ).
		Int("histogram_buckets", len(hist.Buckets)).
		Msg("search complete")
}
