// SPDX-License-Identifier: MIT

package relax

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/diffpass/matrix"
	"gonum.org/v1/gonum/floats"
)

// Sinkhorn computes the entropic relaxation of a permutation.
// MAIN DESCRIPTION:
//   - Turn a square score matrix into a doubly-stochastic-like matrix whose
//     rows sum to 1, sharpening towards the assignment optimum as tau → 0.
//
// Implementation:
//   - Stage 1: validate options and squareness.
//   - Stage 2: L = (scores + noise) / tau.
//   - Stage 3: repeat Iterations times: subtract each column's log-sum-exp,
//     then each row's log-sum-exp.
//   - Stage 4: exponentiate.
//
// Behavior highlights:
//   - Rows sum to 1 exactly (up to rounding) because the row pass runs last.
//   - Entries are in [0,1].
//   - A 0×0 input returns a 0×0 output.
//
// Errors:
//   - ErrBadTemperature, ErrBadIterations, ErrBadNoiseFactor,
//     matrix.ErrNilMatrix, matrix.ErrNonSquare.
//
// Complexity:
//   - Time O(Iterations·n²), Space O(n²).
func Sinkhorn(scores *matrix.Dense, opts SinkhornOptions, rng *rand.Rand) (*matrix.Dense, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("Sinkhorn: %w", err)
	}
	if err := matrix.ValidateNotNil(scores); err != nil {
		return nil, fmt.Errorf("Sinkhorn: %w", err)
	}
	if err := matrix.ValidateSquare(scores); err != nil {
		return nil, fmt.Errorf("Sinkhorn: %w", err)
	}

	la := perturb(scores, opts.Noise, rng)
	n := la.Rows()
	if n == 0 {
		return la, nil
	}
	data := la.RawData()
	floats.Scale(1/opts.Tau, data)

	col := make([]float64, n)
	for it := 0; it < opts.Iterations; it++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				col[i] = data[i*n+j]
			}
			lse := floats.LogSumExp(col)
			for i := 0; i < n; i++ {
				data[i*n+j] -= lse
			}
		}
		for i := 0; i < n; i++ {
			row := data[i*n : (i+1)*n]
			floats.AddConst(-floats.LogSumExp(row), row)
		}
	}
	for k, v := range data {
		data[k] = math.Exp(v)
	}

	return la, nil
}
