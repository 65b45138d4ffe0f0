// SPDX-License-Identifier: MIT
// Package matrix: public API facades.
//
// Purpose:
//   - Provide thin entry points for common tasks across the module:
//     neutral constructors, row/column reductions, tolerance comparison,
//     permutation checks.
//
// AI-Hints:
//   - Use NewIdentity/NewZeros to build matrices with explicit shape and neutral elements.
//   - Use IsPermutation to assert hard-mode outputs in tests and diagnostics.

package matrix

import "math"

// NewZeros returns a new zero-initialized *Dense of size rows×cols.
// Unlike NewDense, empty shapes (0×0, 0×k) are accepted; fully fixed
// groups carry an empty free block.
//
// Errors: ErrInvalidDimensions on negative dimensions.
func NewZeros(rows, cols int) (*Dense, error) {
	return newDenseZeroOK(rows, cols)
}

// NewIdentity returns I_n (n×n identity; ones on the diagonal, zeros elsewhere).
// n == 0 yields an empty matrix.
// Complexity: O(n^2) zeroing + O(n) diagonal writes.
func NewIdentity(n int) (*Dense, error) {
	I, err := newDenseZeroOK(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		I.data[i*n+i] = 1.0
	}

	return I, nil
}

// RowSums returns the vector of row sums of m.
// Complexity: O(r*c).
func RowSums(m *Dense) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf("RowSums", err)
	}
	out := make([]float64, m.r)
	for i := 0; i < m.r; i++ {
		s := 0.0
		for _, v := range m.data[i*m.c : (i+1)*m.c] {
			s += v
		}
		out[i] = s
	}

	return out, nil
}

// ColSums returns the vector of column sums of m.
// Complexity: O(r*c).
func ColSums(m *Dense) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf("ColSums", err)
	}
	out := make([]float64, m.c)
	for i := 0; i < m.r; i++ {
		for j, v := range m.data[i*m.c : (i+1)*m.c] {
			out[j] += v
		}
	}

	return out, nil
}

// AllClose reports whether |a-b| ≤ atol + rtol*|b| element-wise.
// NaN entries compare equal only to NaN in the same position; equal
// infinities compare equal.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
func AllClose(a, b *Dense, rtol, atol float64) (bool, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	for k, av := range a.data {
		bv := b.data[k]
		switch {
		case math.IsNaN(av) || math.IsNaN(bv):
			if !(math.IsNaN(av) && math.IsNaN(bv)) {
				return false, nil
			}
		case math.IsInf(av, 0) || math.IsInf(bv, 0):
			if av != bv {
				return false, nil
			}
		case math.Abs(av-bv) > atol+rtol*math.Abs(bv):
			return false, nil
		}
	}

	return true, nil
}

// IsPermutation reports whether m is square with entries in {0,1} and exactly
// one 1 in every row and every column. The empty matrix is a permutation.
func IsPermutation(m *Dense) bool {
	if m == nil || m.r != m.c {
		return false
	}
	colSeen := make([]bool, m.c)
	for i := 0; i < m.r; i++ {
		ones := 0
		for j, v := range m.data[i*m.c : (i+1)*m.c] {
			switch v {
			case 0:
			case 1:
				if colSeen[j] {
					return false
				}
				colSeen[j] = true
				ones++
			default:
				return false
			}
		}
		if ones != 1 {
			return false
		}
	}

	return true
}

// RowArgmax returns, for each row, the index of its largest entry
// (first index on ties; NaN entries are skipped). A row without any
// comparable entry maps to 0.
func RowArgmax(m *Dense) []int {
	out := make([]int, m.r)
	for i := 0; i < m.r; i++ {
		best, bestV := 0, math.Inf(-1)
		found := false
		for j, v := range m.data[i*m.c : (i+1)*m.c] {
			if math.IsNaN(v) {
				continue
			}
			if !found || v > bestV {
				best, bestV, found = j, v, true
			}
		}
		out[i] = best
	}

	return out
}
