package mcts

import (
	"encoding/binary"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
	"lukechampine.com/frand"
)

// dirichletNoise draws one n-dimensional sample from Dirichlet(alpha, ...,
// alpha) by drawing n independent Gamma(alpha, 1) variates and normalizing, the
// standard Dirichlet-via-Gamma construction. Follows the teacher's own
// gonum/distuv usage (stats/z.go's distuv.Normal) generalized from the
// normal to the gamma distribution, seeded from lukechampine.com/frand the
// same way the board package seeds its Zobrist tables, rather than from
// math/rand's unseeded global source.
func dirichletNoise(n int, alpha float64) []float64 {
	seedBytes := frand.Bytes(8)
	seed := int64(binary.LittleEndian.Uint64(seedBytes))
	src := rand.New(rand.NewSource(seed))

	gamma := distuv.Gamma{Alpha: alpha, Beta: 1, Src: src}
	out := make([]float64, n)
	var sum float64
	for i := range out {
		out[i] = gamma.Rand()
		sum += out[i]
	}
	if sum == 0 {
		uniform := 1.0 / float64(n)
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
