// SPDX-License-Identifier: MIT

package similarity

import (
	"fmt"
	"math"

	"github.com/katalvlaran/diffpass/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Hamming computes smoothed Hamming similarities inside each group.
type Hamming struct {
	form kernelForm
}

// NewHamming validates opts and returns the operator.
//
// Errors: ErrMissingExponent, ErrBadExponent, blocks.ErrNegativeSize.
func NewHamming(opts Options) (*Hamming, error) {
	f, err := opts.resolve("NewHamming")
	if err != nil {
		return nil, err
	}

	return &Hamming{form: f}, nil
}

// Diagnostics returns the non-fatal notes recorded at construction.
func (h *Hamming) Diagnostics() []Diagnostic { return append([]Diagnostic(nil), h.form.diags...) }

// UsesDot reports whether the dot-product kernel is active.
func (h *Hamming) UsesDot() bool { return h.form.useDot }

// Compute returns the N×N similarity matrix of x, NaN outside group blocks.
//
// Dot form:      S_ij = ⟨x_i, x_j⟩ / L, the fraction of identical positions
// for one-hot rows.
// Distance form: S_ij = 1 − Σ|x_i − x_j|^p / (2L), which equals the dot form
// on one-hot rows for every p.
//
// Errors: matrix.ErrNilMatrix, matrix.ErrInvalidDimensions (L == 0), ErrGroupSizeMismatch.
// Complexity: O(N_g²·L·A) per group.
func (h *Hamming) Compute(x *matrix.Tensor3) (*matrix.Dense, error) {
	if x == nil {
		return nil, fmt.Errorf("Hamming.Compute: %w", matrix.ErrNilMatrix)
	}
	_, l, _ := x.Dims()
	invL := 1 / float64(l)
	form := h.form

	return windowed("Hamming.Compute", x, form.sizes, func(slab *matrix.Dense) (*matrix.Dense, error) {
		k := slab.Rows()
		if form.useDot {
			g := slab.Gonum()
			var s mat.Dense
			s.Mul(g, g.T())
			s.Scale(invL, &s)

			return matrix.FromGonum(&s), nil
		}
		out, _ := matrix.NewZeros(k, k)
		for i := 0; i < k; i++ {
			for j := i; j < k; j++ {
				d := math.Pow(floats.Distance(slab.Row(i), slab.Row(j), form.p), form.p)
				v := 1 - d*invL/2
				_ = out.Set(i, j, v)
				_ = out.Set(j, i, v)
			}
		}

		return out, nil
	})
}
