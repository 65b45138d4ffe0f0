// SPDX-License-Identifier: MIT

package relax

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/diffpass/matrix"
)

// Matching computes a hard permutation from a square score matrix.
// MAIN DESCRIPTION:
//   - Solve the linear assignment problem maximizing Σ_i L[i, σ(i)] on
//     L = scores + noise and return the 0/1 matrix with P[i, σ(i)] = 1.
//
// Implementation:
//   - Stage 1: validate options and squareness.
//   - Stage 2: perturb with Gumbel noise (when enabled).
//   - Stage 3: if Unbias and noise are both on, shuffle rows with rng,
//     solve, and map the answer back to the original row order.
//   - Stage 4: scatter ones.
//
// Behavior highlights:
//   - Noiseless evaluation is a pure function of scores; ties go to the
//     lowest column index, so an all-zero matrix yields the identity.
//
// Errors:
//   - ErrBadNoiseFactor, matrix.ErrNilMatrix, matrix.ErrNonSquare.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func Matching(scores *matrix.Dense, opts MatchingOptions, rng *rand.Rand) (*matrix.Dense, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("Matching: %w", err)
	}
	if err := matrix.ValidateNotNil(scores); err != nil {
		return nil, fmt.Errorf("Matching: %w", err)
	}
	if err := matrix.ValidateSquare(scores); err != nil {
		return nil, fmt.Errorf("Matching: %w", err)
	}

	la := perturb(scores, opts.Noise, rng)
	n := la.Rows()
	out, _ := matrix.NewZeros(n, n)
	if n == 0 {
		return out, nil
	}

	var assign []int
	if opts.Unbias && opts.Noise.Enabled {
		order := permRange(n, rng)
		shuffled, err := la.Induced(order, identityIndex(n))
		if err != nil {
			return nil, fmt.Errorf("Matching: %w", err)
		}
		sub := LinearAssignment(shuffled)
		assign = make([]int, n)
		for k, c := range sub {
			assign[order[k]] = c
		}
	} else {
		assign = LinearAssignment(la)
	}

	data := out.RawData()
	for i, c := range assign {
		data[i*n+c] = 1
	}

	return out, nil
}

func identityIndex(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	return idx
}

// LinearAssignment returns σ maximizing Σ_i s[i, σ(i)] for a square s.
// MAIN DESCRIPTION:
//   - Hungarian algorithm with row/column potentials (shortest augmenting
//     paths), run on the cost -s.
//
// Implementation:
//   - Stage 1: for each row, grow an alternating tree from a virtual column 0,
//     relaxing reduced costs minv[j] and picking the first column with the
//     smallest slack.
//   - Stage 2: update potentials by the slack and follow way[] back to augment.
//
// Behavior highlights:
//   - Exact optimum; deterministic first-index tie-breaking.
//   - NaN scores are treated as -Inf (never preferred); -Inf is clamped to a
//     large finite cost so that the potentials stay finite.
//
// Complexity:
//   - Time O(n³), Space O(n).
func LinearAssignment(s *matrix.Dense) []int {
	n := s.Rows()
	if n == 0 {
		return nil
	}
	src := s.RawData()

	// Finite cost matrix, 1-based in the algorithm below.
	big := 0.0
	for _, v := range src {
		if !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) > big {
			big = math.Abs(v)
		}
	}
	big = 2*big*float64(n) + 1
	cost := make([]float64, n*n)
	for k, v := range src {
		switch {
		case math.IsNaN(v) || math.IsInf(v, -1):
			cost[k] = big
		case math.IsInf(v, 1):
			cost[k] = -big
		default:
			cost[k] = -v
		}
	}

	inf := math.Inf(1)
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1) // p[j]: row matched to column j (1-based, 0 = none)
	way := make([]int, n+1)
	minv := make([]float64, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta, j1 := inf, 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[(i0-1)*n+(j-1)] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	assign := make([]int, n)
	for j := 1; j <= n; j++ {
		if p[j] > 0 {
			assign[p[j]-1] = j - 1
		}
	}

	return assign
}
