package mcts

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestTimeBudgetHorizonDominates(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	budget := TimeBudget(60*time.Second, 0, cfg)
	// 60s / 30 move_horizon = 2s, well under the 59.9s safety ceiling.
	is.True(budget > 1900*time.Millisecond && budget < 2100*time.Millisecond)
}

func TestTimeBudgetCeilingDominatesWhenLowOnTime(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	// 150ms/30 + 0.8*100ms = 85ms by horizon, capped at 150ms - 100ms = 50ms.
	budget := TimeBudget(150*time.Millisecond, 100*time.Millisecond, cfg)
	is.Equal(budget, 50*time.Millisecond)
}

func TestTimeBudgetNeverNegative(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	budget := TimeBudget(10*time.Millisecond, 0, cfg)
	is.True(budget >= 0)
}
