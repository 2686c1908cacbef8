package mcts

import (
	"testing"

	"github.com/matryer/is"
)

func TestDirichletNoiseSumsToOne(t *testing.T) {
	is := is.New(t)
	out := dirichletNoise(8, 0.3)
	is.Equal(len(out), 8)
	var sum float64
	for _, v := range out {
		is.True(v >= 0)
		sum += v
	}
	is.True(sum > 0.999 && sum < 1.001)
}

func TestMixDirichletNoisePreservesLength(t *testing.T) {
	is := is.New(t)
	policy := []float64{0.25, 0.25, 0.25, 0.25}
	mixed := mixDirichletNoise(policy, 0.3, 0.25)
	is.Equal(len(mixed), len(policy))
	var sum float64
	for _, v := range mixed {
		sum += v
	}
	is.True(sum > 0.99 && sum < 1.01)
}
