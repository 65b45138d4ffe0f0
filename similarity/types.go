// SPDX-License-Identifier: MIT

package similarity

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/diffpass/blocks"
	"github.com/katalvlaran/diffpass/matrix"
)

var (
	// ErrMissingExponent is returned when the dot form is disabled and no exponent is set.
	ErrMissingExponent = errors.New("similarity: exponent p is required when the dot form is disabled")

	// ErrBadExponent is returned for a non-positive or NaN exponent.
	ErrBadExponent = errors.New("similarity: exponent p must be > 0")

	// ErrGroupSizeMismatch is returned when the group sizes do not sum to the sample count.
	ErrGroupSizeMismatch = errors.New("similarity: group sizes do not match the number of samples")

	// ErrUnknownResidue is returned when a letter has no substitution score.
	ErrUnknownResidue = errors.New("similarity: residue has no substitution score")

	// ErrAlphabetMismatch is returned when the tensor alphabet differs from the substitution matrix.
	ErrAlphabetMismatch = errors.New("similarity: tensor alphabet size differs from substitution matrix")
)

// Operator maps a one-hot tensor (N×L×A) to an N×N similarity matrix.
type Operator interface {
	Compute(x *matrix.Tensor3) (*matrix.Dense, error)
}

// Diagnostic is a non-fatal configuration note.
type Diagnostic struct {
	Code    string
	Message string
}

// DiagExponentOverridesDot is recorded when P is set together with UseDot.
const DiagExponentOverridesDot = "exponent-overrides-dot"

// Options configures the group windowing and kernel form.
//
// UseDot selects the dot-product kernel. When P is set the L^p distance
// kernel is used regardless of UseDot (with a Diagnostic if UseDot was set).
type Options struct {
	GroupSizes []int
	UseDot     bool
	P          *float64
	Logger     *slog.Logger
}

// DefaultOptions returns the dot-product kernel over a single group.
func DefaultOptions() Options {
	return Options{UseDot: true}
}

// Exponent returns a pointer to p, for Options.P.
func Exponent(p float64) *float64 { return &p }

// kernelForm is the resolved kernel choice shared by all operators.
type kernelForm struct {
	sizes  []int
	useDot bool
	p      float64
	diags  []Diagnostic
}

// resolve validates o and settles the dot/distance choice.
func (o Options) resolve(op string) (kernelForm, error) {
	f := kernelForm{sizes: append([]int(nil), o.GroupSizes...)}
	for g, s := range f.sizes {
		if s < 0 {
			return f, fmt.Errorf("%s: group %d: %w", op, g, blocks.ErrNegativeSize)
		}
	}
	if o.P == nil {
		if !o.UseDot {
			return f, fmt.Errorf("%s: %w", op, ErrMissingExponent)
		}
		f.useDot = true

		return f, nil
	}
	if p := *o.P; !(p > 0) || math.IsNaN(p) {
		return f, fmt.Errorf("%s: p=%v: %w", op, p, ErrBadExponent)
	}
	f.p = *o.P
	if o.UseDot {
		d := Diagnostic{
			Code:    DiagExponentOverridesDot,
			Message: fmt.Sprintf("p=%v was provided, the dot form is ignored", f.p),
		}
		f.diags = append(f.diags, d)
		if o.Logger != nil {
			o.Logger.Warn("similarity: "+d.Message, slog.String("op", op), slog.String("code", d.Code))
		}
	}

	return f, nil
}

// windowed evaluates kernel on every group's slab of x and assembles an N×N
// result. Entries outside the diagonal blocks are NaN.
func windowed(op string, x *matrix.Tensor3, sizes []int, kernel func(slab *matrix.Dense) (*matrix.Dense, error)) (*matrix.Dense, error) {
	if x == nil {
		return nil, fmt.Errorf("%s: %w", op, matrix.ErrNilMatrix)
	}
	n, l, _ := x.Dims()
	if l == 0 {
		return nil, fmt.Errorf("%s: zero-length sequences: %w", op, matrix.ErrInvalidDimensions)
	}
	if len(sizes) > 0 && blocks.Total(sizes) != n {
		return nil, fmt.Errorf("%s: sizes sum to %d, have %d samples: %w",
			op, blocks.Total(sizes), n, ErrGroupSizeMismatch)
	}
	ranges, err := blocks.Ranges(sizes, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := matrix.NewZeros(n, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out.Fill(math.NaN())
	for _, r := range ranges {
		if r.Len() == 0 {
			continue
		}
		slab, err := x.Slab(r.Start, r.End)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		blk, err := kernel(slab)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for i := 0; i < r.Len(); i++ {
			copy(out.Row(r.Start + i)[r.Start:r.End], blk.Row(i))
		}
	}

	return out, nil
}
