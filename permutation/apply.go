// SPDX-License-Identifier: MIT

package permutation

import (
	"fmt"
	"math"

	"github.com/katalvlaran/diffpass/blocks"
	"github.com/katalvlaran/diffpass/matrix"
	"gonum.org/v1/gonum/mat"
)

func checkMats(ranges []blocks.Range, mats []*matrix.Dense) error {
	if len(mats) != len(ranges) {
		return fmt.Errorf("%d groups, %d matrices: %w", len(ranges), len(mats), ErrGroupCount)
	}
	for g, r := range ranges {
		if err := matrix.ValidateSquareOfSize(mats[g], r.Len()); err != nil {
			return fmt.Errorf("group %d: %w", g, err)
		}
	}

	return nil
}

// BlockApply applies each group's matrix to that group's samples of x.
// MAIN DESCRIPTION:
//   - out[s:e] = P_g · x[s:e] where the product contracts the sample axis
//     (x[s:e] flattened to (e-s)×(L·A)).
//
// Implementation:
//   - Stage 1: validate one square matrix per group of the right size and
//     that the groups cover x's sample axis.
//   - Stage 2: per group, gonum product of P_g with the slab, written into
//     the matching output slab.
//
// Errors:
//   - ErrGroupCount, matrix.ErrNilMatrix, matrix.ErrNonSquare,
//     matrix.ErrDimensionMismatch.
//
// Complexity:
//   - Time O(Σ s²·L·A), Space O(N·L·A).
func BlockApply(x *matrix.Tensor3, ranges []blocks.Range, mats []*matrix.Dense) (*matrix.Tensor3, error) {
	if x == nil {
		return nil, fmt.Errorf("BlockApply: %w", matrix.ErrNilMatrix)
	}
	if err := checkMats(ranges, mats); err != nil {
		return nil, fmt.Errorf("BlockApply: %w", err)
	}
	if total := rangesTotal(ranges); total != x.Samples() {
		return nil, fmt.Errorf("BlockApply: groups cover %d samples, tensor has %d: %w",
			total, x.Samples(), matrix.ErrDimensionMismatch)
	}

	n, l, a := x.Dims()
	out, err := matrix.NewTensor3(n, l, a)
	if err != nil {
		return nil, fmt.Errorf("BlockApply: %w", err)
	}
	for g, r := range ranges {
		if r.Len() == 0 {
			continue
		}
		src, _ := x.Slab(r.Start, r.End)
		dst, _ := out.Slab(r.Start, r.End)
		prod, err := matrix.MulGonum(mats[g], src)
		if err != nil {
			return nil, fmt.Errorf("BlockApply: group %d: %w", g, err)
		}
		copy(dst.RawData(), prod.RawData())
	}

	return out, nil
}

// BlockConjugate computes P·A·Pᵀ block-wise for a square relationship matrix.
// MAIN DESCRIPTION:
//   - Row pass: out1[s:e, :] = P_g · A[s:e, :].
//   - Column pass: out2[:, s:e] = out1[:, s:e] · P_gᵀ.
//
// Behavior highlights:
//   - Both intermediates start as NaN; with groups covering the axis every
//     cell is overwritten.
//   - Identity matrices reproduce A exactly.
//
// Errors:
//   - ErrGroupCount, matrix.ErrNilMatrix, matrix.ErrNonSquare,
//     matrix.ErrDimensionMismatch.
//
// Complexity:
//   - Time O(Σ s²·n), Space O(n²).
func BlockConjugate(a *matrix.Dense, ranges []blocks.Range, mats []*matrix.Dense) (*matrix.Dense, error) {
	total := rangesTotal(ranges)
	if err := matrix.ValidateSquareOfSize(a, total); err != nil {
		return nil, fmt.Errorf("BlockConjugate: %w", err)
	}
	if err := checkMats(ranges, mats); err != nil {
		return nil, fmt.Errorf("BlockConjugate: %w", err)
	}

	out1, _ := matrix.NewZeros(total, total)
	out2, _ := matrix.NewZeros(total, total)
	out1.Fill(math.NaN())
	out2.Fill(math.NaN())
	if total == 0 {
		return out2, nil
	}

	ga, g1, g2 := a.Gonum(), out1.Gonum(), out2.Gonum()
	for g, r := range ranges {
		if r.Len() == 0 {
			continue
		}
		dst := g1.Slice(r.Start, r.End, 0, total).(*mat.Dense)
		dst.Mul(mats[g].Gonum(), ga.Slice(r.Start, r.End, 0, total))
	}
	for g, r := range ranges {
		if r.Len() == 0 {
			continue
		}
		dst := g2.Slice(0, total, r.Start, r.End).(*mat.Dense)
		dst.Mul(g1.Slice(0, total, r.Start, r.End), mats[g].Gonum().T())
	}

	return out2, nil
}

func rangesTotal(ranges []blocks.Range) int {
	if len(ranges) == 0 {
		return 0
	}

	return ranges[len(ranges)-1].End
}

// GlobalArgmax returns, for every global row, the global column its group's
// matrix selects: g[s+r] = s + argmax_c P_g[r, c].
// For a hard permutation P, (P·A·Pᵀ)[r][c] = A[g[r]][g[c]].
func GlobalArgmax(mats []*matrix.Dense) []int {
	var out []int
	start := 0
	for _, m := range mats {
		for _, c := range matrix.RowArgmax(m) {
			out = append(out, start+c)
		}
		start += m.Cols()
	}

	return out
}

// ApplyHardPermutation conjugates x by hard permutations through an index
// gather instead of dense products: out[r][c] = x[g[r]][g[c]].
//
// Errors: matrix.ErrNilMatrix, matrix.ErrNonSquare, matrix.ErrDimensionMismatch.
// Complexity: O(n²).
func ApplyHardPermutation(x *matrix.Dense, perms []*matrix.Dense) (*matrix.Dense, error) {
	idx := GlobalArgmax(perms)
	if err := matrix.ValidateSquareOfSize(x, len(idx)); err != nil {
		return nil, fmt.Errorf("ApplyHardPermutation: %w", err)
	}
	out, err := x.Induced(idx, idx)
	if err != nil {
		return nil, fmt.Errorf("ApplyHardPermutation: %w", err)
	}

	return out, nil
}

// ApplyHardPermutationBatch conjugates a single x by a batch of trials, each
// trial holding one hard permutation per group. out[t] = ApplyHardPermutation(x, trials[t]).
func ApplyHardPermutationBatch(x *matrix.Dense, trials [][]*matrix.Dense) ([]*matrix.Dense, error) {
	out := make([]*matrix.Dense, len(trials))
	for t, perms := range trials {
		m, err := ApplyHardPermutation(x, perms)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", t, err)
		}
		out[t] = m
	}

	return out, nil
}
