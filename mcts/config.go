package mcts

import (
	"runtime"
	"time"
)

// Config holds the tunable constants spec.md §4.5/§9(c) leaves as
// "recommended defaults, to be tuned empirically": PUCT exploration,
// virtual-loss magnitude, root Dirichlet noise, worker/batch sizing, and
// time management.
type Config struct {
	CPuct float64

	// VirtualLoss is added to a traversed node's W (and 1 to its N) while
	// a worker descends through it, reversed exactly at backup.
	VirtualLoss float64

	// DirichletAlpha and DirichletEpsilon control root noise mixing:
	// P_i <- (1-epsilon)*P_i + epsilon*eta_i. RootNoise gates whether it's
	// applied at all — on for self-play, off for tournament play.
	DirichletAlpha   float64
	DirichletEpsilon float64
	RootNoise        bool

	// Workers is the number of concurrent selection/expansion goroutines
	// sharing the tree; spec.md §5 defaults this to hardware parallelism.
	Workers int

	// BatchSize and BatchTimeout bound the evaluator batching barrier of
	// spec.md §4.5/§9: flush on reaching BatchSize pending leaves, or
	// after BatchTimeout with fewer.
	BatchSize    int
	BatchTimeout time.Duration

	// MoveHorizon, TimeFactor, and SafetyMargin feed TimeBudget's formula
	// budget = min(T/MoveHorizon + I*TimeFactor, T-SafetyMargin).
	MoveHorizon  float64
	TimeFactor   float64
	SafetyMargin time.Duration
}

// DefaultConfig returns the recommended defaults of spec.md §4.5: c_puct
// 1.5 (midpoint of the ~1.25-2.5 typical range), virtual loss 3, Dirichlet
// alpha 0.3 and epsilon 0.25, move_horizon 30, time factor f 0.8, a 100ms
// safety margin, and spec.md §5's stated worker default of hardware
// parallelism.
func DefaultConfig() Config {
	return Config{
		CPuct:            1.5,
		VirtualLoss:      3,
		DirichletAlpha:   0.3,
		DirichletEpsilon: 0.25,
		RootNoise:        false,
		Workers:          runtime.GOMAXPROCS(0),
		BatchSize:        8,
		BatchTimeout:     2 * time.Millisecond,
		MoveHorizon:      30,
		TimeFactor:       0.8,
		SafetyMargin:     100 * time.Millisecond,
	}
}

// TimeBudget computes the allocation for one move given remaining time and
// increment for the side to move, per spec.md §4.5's time-management
// formula.
func TimeBudget(remaining, increment time.Duration, cfg Config) time.Duration {
	byHorizon := time.Duration(float64(remaining)/cfg.MoveHorizon + float64(increment)*cfg.TimeFactor)
	ceiling := remaining - cfg.SafetyMargin
	if ceiling < 0 {
		ceiling = 0
	}
	if byHorizon > ceiling {
		return ceiling
	}
	return byHorizon
}
