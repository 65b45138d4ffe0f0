// SPDX-License-Identifier: MIT

package relax

import (
	"math"
	"math/rand"

	"github.com/katalvlaran/diffpass/matrix"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minUniform keeps the Gumbel quantile finite when the RNG returns 0.
const minUniform = 1e-20

var gumbel = distuv.GumbelRight{Mu: 0, Beta: 1}

// perturb returns scores plus scaled Gumbel noise as a new matrix.
// MAIN DESCRIPTION:
//   - Draw one Gumbel(0,1) sample per entry through the quantile of a
//     uniform from rng, scale it, add it to the score.
//
// Implementation:
//   - Stage 1: clone scores (noise disabled ⇒ return the clone).
//   - Stage 2: scale = Factor, times StdDev(scores) in Std mode.
//   - Stage 3: add scale·G_ij in row-major order.
//
// Complexity:
//   - Time O(n²), Space O(n²).
func perturb(scores *matrix.Dense, n Noise, rng *rand.Rand) *matrix.Dense {
	out := scores.Clone()
	if !n.Enabled {
		return out
	}
	scale := n.Factor
	if n.Std {
		scale *= scoreStd(scores.RawData())
	}
	if scale == 0 {
		return out
	}
	if rng == nil {
		rng = NewRNG(0)
	}
	data := out.RawData()
	for k := range data {
		u := rng.Float64()
		if u < minUniform {
			u = minUniform
		}
		data[k] += scale * gumbel.Quantile(u)
	}

	return out
}

// scoreStd is the sample standard deviation of the entries, 0 when undefined.
func scoreStd(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	s := stat.StdDev(x, nil)
	if math.IsNaN(s) {
		return 0
	}

	return s
}
