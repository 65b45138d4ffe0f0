// SPDX-License-Identifier: MIT

// Package matrix - Tensor3: rank-3 data tensors (samples × length × alphabet).
//
// Purpose:
//   - Hold one-hot (or relaxed one-hot) encodings of aligned sequences.
//   - Expose contiguous sample ranges as Dense slabs so per-group operators
//     can run matrix products on the flattened (length*alphabet) axis.
//
// Layout:
//   - Flat row-major buffer, offset = (n*L + i)*A + a.

package matrix

import "fmt"

// Tensor3 is a dense N×L×A tensor of float64 values.
type Tensor3 struct {
	n, l, a int
	data    []float64
}

func tensorErrorf(method string, n, i, a int, err error) error {
	return fmt.Errorf("Tensor3.%s(%d,%d,%d): %w", method, n, i, a, err)
}

// NewTensor3 allocates a zero tensor. n may be 0; l and a must be positive.
//
// Errors: ErrInvalidDimensions.
func NewTensor3(n, l, a int) (*Tensor3, error) {
	if n < 0 || l <= 0 || a <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Tensor3{n: n, l: l, a: a, data: make([]float64, n*l*a)}, nil
}

// Dims returns (samples, length, alphabet).
func (t *Tensor3) Dims() (n, l, a int) { return t.n, t.l, t.a }

// Samples returns the size of the leading (group-partitioned) axis.
func (t *Tensor3) Samples() int { return t.n }

// RawData exposes the backing slice. Mutations are visible to t.
func (t *Tensor3) RawData() []float64 { return t.data }

func (t *Tensor3) offset(n, i, a int) (int, error) {
	if n < 0 || n >= t.n || i < 0 || i >= t.l || a < 0 || a >= t.a {
		return 0, ErrOutOfRange
	}

	return (n*t.l+i)*t.a + a, nil
}

// At returns x[n, i, a] or ErrOutOfRange.
func (t *Tensor3) At(n, i, a int) (float64, error) {
	off, err := t.offset(n, i, a)
	if err != nil {
		return 0, tensorErrorf("At", n, i, a, err)
	}

	return t.data[off], nil
}

// Set stores v at x[n, i, a] or returns ErrOutOfRange.
func (t *Tensor3) Set(n, i, a int, v float64) error {
	off, err := t.offset(n, i, a)
	if err != nil {
		return tensorErrorf("Set", n, i, a, err)
	}
	t.data[off] = v

	return nil
}

// Clone returns a deep copy.
func (t *Tensor3) Clone() *Tensor3 {
	cp := make([]float64, len(t.data))
	copy(cp, t.data)

	return &Tensor3{n: t.n, l: t.l, a: t.a, data: cp}
}

// Slab returns samples [start, end) as an (end-start)×(L*A) Dense sharing
// storage with t. Writes through the slab update the tensor.
//
// Errors: ErrDimensionMismatch when the range leaves [0, N].
func (t *Tensor3) Slab(start, end int) (*Dense, error) {
	if start < 0 || end < start || end > t.n {
		return nil, fmt.Errorf("Tensor3.Slab(%d,%d): %w", start, end, ErrDimensionMismatch)
	}
	w := t.l * t.a

	return &Dense{r: end - start, c: w, data: t.data[start*w : end*w]}, nil
}

// Flat returns the whole tensor as an N×(L*A) Dense sharing storage.
func (t *Tensor3) Flat() *Dense {
	d, _ := t.Slab(0, t.n)

	return d
}

// SameShape reports whether t and u have identical dimensions.
func (t *Tensor3) SameShape(u *Tensor3) bool {
	return t != nil && u != nil && t.n == u.n && t.l == u.l && t.a == u.a
}

// AllCloseTensor reports whether two tensors agree element-wise within
// atol + rtol*|b|. Shapes must match.
func AllCloseTensor(x, y *Tensor3, rtol, atol float64) (bool, error) {
	if x == nil || y == nil {
		return false, matrixErrorf("AllCloseTensor", ErrNilMatrix)
	}
	if !x.SameShape(y) {
		return false, matrixErrorf("AllCloseTensor", ErrDimensionMismatch)
	}

	return AllClose(x.Flat(), y.Flat(), rtol, atol)
}
