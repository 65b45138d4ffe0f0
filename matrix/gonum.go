// SPDX-License-Identifier: MIT
// Package matrix - gonum bridge.
//
// Dense and gonum's *mat.Dense share the same row-major layout (stride == cols),
// so the bridge is zero-copy in the Dense → gonum direction.

package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const opMul = "MulGonum"

// matrixErrorf wraps err with an operation tag: "<tag>: <underlying>".
// The sentinel still matches errors.Is.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Gonum returns a *mat.Dense backed by the same storage as m.
// Mutations through either value are visible in both.
// Returns nil for empty shapes, which gonum does not represent.
func (m *Dense) Gonum() *mat.Dense {
	if m == nil || m.r == 0 || m.c == 0 {
		return nil
	}

	return mat.NewDense(m.r, m.c, m.data)
}

// FromGonum copies any gonum matrix into a new Dense.
func FromGonum(g mat.Matrix) *Dense {
	r, c := g.Dims()
	out, _ := newDenseZeroOK(r, c)
	for i := 0; i < r; i++ {
		row := out.data[i*c : (i+1)*c]
		for j := range row {
			row[j] = g.At(i, j)
		}
	}

	return out
}

// MulGonum computes A·B through gonum's BLAS-backed product.
// Empty operands yield an empty (or zero) result without touching gonum.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
func MulGonum(a, b *Dense) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if a.c != b.r {
		return nil, matrixErrorf(opMul, ErrDimensionMismatch)
	}
	out, _ := newDenseZeroOK(a.r, b.c)
	if a.r == 0 || a.c == 0 || b.c == 0 {
		return out, nil
	}
	out.Gonum().Mul(a.Gonum(), b.Gonum())

	return out, nil
}
