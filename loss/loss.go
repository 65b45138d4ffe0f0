// SPDX-License-Identifier: MIT

package loss

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/diffpass/blocks"
	"github.com/katalvlaran/diffpass/entropy"
	"github.com/katalvlaran/diffpass/matrix"
	"gonum.org/v1/gonum/floats"
)

// ErrShapeMismatch is returned when compared operands differ in shape or do
// not match the configured partition.
var ErrShapeMismatch = errors.New("loss: operands must be square, equal-shaped and match the group sizes")

// ScoreFunc scores two flattened regions of equal length. Higher is better.
type ScoreFunc func(x, y []float64) float64

// Dot is the default ScoreFunc.
func Dot(x, y []float64) float64 { return floats.Dot(x, y) }

// Comparer compares two relationship matrices.
type Comparer interface {
	Loss(x, y *matrix.Dense) (float64, error)
}

// TensorComparer compares two one-hot tensors.
type TensorComparer interface {
	Loss(x, y *matrix.Tensor3) (float64, error)
}

// masked is a Comparer restricted to a fixed region.
type masked struct {
	op    string
	mask  blocks.Mask
	n     int // required side; -1 accepts any square size
	score ScoreFunc
	// build derives the region for a side when n == -1.
	build func(n int) blocks.Mask
}

// Loss returns −score(x[region], y[region]).
//
// Errors: matrix.ErrNilMatrix, ErrShapeMismatch.
func (m *masked) Loss(x, y *matrix.Dense) (float64, error) {
	if err := matrix.ValidateNotNil(x); err != nil {
		return 0, fmt.Errorf("%s: %w", m.op, err)
	}
	if err := matrix.ValidateNotNil(y); err != nil {
		return 0, fmt.Errorf("%s: %w", m.op, err)
	}
	xr, xc := x.Shape()
	yr, yc := y.Shape()
	if xr != xc || xr != yr || xc != yc || (m.n >= 0 && xr != m.n) {
		return 0, fmt.Errorf("%s: %dx%d vs %dx%d: %w", m.op, xr, xc, yr, yc, ErrShapeMismatch)
	}
	mask := m.mask
	if m.n < 0 {
		mask = m.build(xr)
	}
	a, b := gather(x, mask), gather(y, mask)

	return -m.score(a, b), nil
}

func gather(x *matrix.Dense, mask blocks.Mask) []float64 {
	out := make([]float64, 0, mask.Count())
	for k, v := range x.RawData() {
		if mask.Bits[k] {
			out = append(out, v)
		}
	}

	return out
}

// NewInterGroup compares the strictly-upper entries linking items of
// different groups (each cross-group pair once). score nil means Dot.
// With nil sizes every item is in one group and the region is empty.
//
// Errors: blocks.ErrNegativeSize.
func NewInterGroup(sizes []int, score ScoreFunc) (Comparer, error) {
	if score == nil {
		score = Dot
	}
	if sizes == nil {
		return &masked{
			op:    "InterGroup.Loss",
			n:     -1,
			score: score,
			build: func(n int) blocks.Mask {
				r, _ := blocks.Ranges(nil, n)

				return blocks.InterGroupUpper(r)
			},
		}, nil
	}
	ranges, err := blocks.Ranges(sizes, 0)
	if err != nil {
		return nil, fmt.Errorf("loss.NewInterGroup: %w", err)
	}
	mask := blocks.InterGroupUpper(ranges)

	return &masked{op: "InterGroup.Loss", mask: mask, n: mask.N, score: score}, nil
}

// IntraGroupOptions configures NewIntraGroup.
type IntraGroupOptions struct {
	// GroupSizes restricts the region to the diagonal blocks; nil uses the
	// whole upper triangle of whatever size is compared.
	GroupSizes []int

	// IncludeDiagonal keeps the main diagonal in the region.
	IncludeDiagonal bool

	// Score defaults to Dot.
	Score ScoreFunc
}

// NewIntraGroup compares the upper triangle of each group's diagonal block.
//
// Errors: blocks.ErrNegativeSize.
func NewIntraGroup(opts IntraGroupOptions) (Comparer, error) {
	score := opts.Score
	if score == nil {
		score = Dot
	}
	exclude := !opts.IncludeDiagonal
	if opts.GroupSizes == nil {
		return &masked{
			op:    "IntraGroup.Loss",
			n:     -1,
			score: score,
			build: func(n int) blocks.Mask {
				r, _ := blocks.Ranges(nil, n)

				return blocks.IntraGroupUpper(r, exclude)
			},
		}, nil
	}
	ranges, err := blocks.Ranges(opts.GroupSizes, 0)
	if err != nil {
		return nil, fmt.Errorf("loss.NewIntraGroup: %w", err)
	}
	mask := blocks.IntraGroupUpper(ranges, exclude)

	return &masked{op: "IntraGroup.Loss", mask: mask, n: mask.N, score: score}, nil
}

// TensorFunc adapts a function to TensorComparer.
type TensorFunc func(x, y *matrix.Tensor3) (float64, error)

// Loss calls f.
func (f TensorFunc) Loss(x, y *matrix.Tensor3) (float64, error) { return f(x, y) }

// TwoBodyEntropy is the mean joint entropy between every column of x and
// every column of y.
var TwoBodyEntropy TensorComparer = TensorFunc(entropy.TwoBody)

// MutualInformation is H(x, y) − H(x) averaged over column pairs, i.e. minus
// the mean mutual information up to the constant H(y) of the reference.
var MutualInformation TensorComparer = TensorFunc(func(x, y *matrix.Tensor3) (float64, error) {
	hxy, err := entropy.TwoBody(x, y)
	if err != nil {
		return 0, err
	}
	hx, err := entropy.OneBody(x)
	if err != nil {
		return 0, err
	}

	return hxy - hx, nil
})
