// SPDX-License-Identifier: MIT

package besthits

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/blocks"
	"github.com/katalvlaran/diffpass/matrix"
	"gonum.org/v1/gonum/floats"
)

// ErrBadTemperature is returned for a non-positive soft-mode temperature.
var ErrBadTemperature = errors.New("besthits: tau must be > 0")

// Options configures the operator.
type Options struct {
	// GroupSizes partitions the items; nil treats all items as one group.
	GroupSizes []int

	// Reciprocal keeps only mutual best hits.
	Reciprocal bool

	// Tau is the soft-mode softmax temperature.
	Tau float64

	// InGroup also computes best hits inside each group's own block.
	// When false those blocks are zero.
	InGroup bool

	Mode diffpass.Mode
}

// DefaultOptions: reciprocal, Tau 0.1, in-group hits, soft mode.
func DefaultOptions() Options {
	return Options{Reciprocal: true, Tau: 0.1, InGroup: true, Mode: diffpass.Soft}
}

// BestHits computes best-hit indicators in the current mode.
type BestHits struct {
	sizes      []int
	reciprocal bool
	tau        float64
	inGroup    bool
	mode       diffpass.Mode
}

// New validates opts.
//
// Errors: ErrBadTemperature, diffpass.ErrInvalidMode, blocks.ErrNegativeSize.
func New(opts Options) (*BestHits, error) {
	if !(opts.Tau > 0) {
		return nil, fmt.Errorf("besthits.New: tau=%v: %w", opts.Tau, ErrBadTemperature)
	}
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("besthits.New: %w", diffpass.ErrInvalidMode)
	}
	if _, err := blocks.Ranges(opts.GroupSizes, 0); err != nil {
		return nil, fmt.Errorf("besthits.New: %w", err)
	}

	return &BestHits{
		sizes:      append([]int(nil), opts.GroupSizes...),
		reciprocal: opts.Reciprocal,
		tau:        opts.Tau,
		inGroup:    opts.InGroup,
		mode:       opts.Mode,
	}, nil
}

// Mode returns the current mode.
func (b *BestHits) Mode() diffpass.Mode { return b.mode }

// SetMode switches mode; setting the current mode is a no-op.
func (b *BestHits) SetMode(m diffpass.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("BestHits.SetMode(%d): %w", int(m), diffpass.ErrInvalidMode)
	}
	b.mode = m

	return nil
}

// SetModeName parses name ("soft" or "hard") and switches mode.
func (b *BestHits) SetModeName(name string) error {
	m, err := diffpass.ParseMode(name)
	if err != nil {
		return err
	}

	return b.SetMode(m)
}

// Soft switches to soft mode.
func (b *BestHits) Soft() { b.mode = diffpass.Soft }

// Hard switches to hard mode.
func (b *BestHits) Hard() { b.mode = diffpass.Hard }

// Reciprocal reports whether only mutual best hits are kept.
func (b *BestHits) Reciprocal() bool { return b.reciprocal }

// Compute returns the N×N best-hit matrix of the square similarity s in the
// current mode.
//
// Errors: matrix.ErrNilMatrix, matrix.ErrNonSquare, matrix.ErrDimensionMismatch.
func (b *BestHits) Compute(s *matrix.Dense) (*matrix.Dense, error) {
	return b.ComputeMode(s, b.mode)
}

// ComputeMode is Compute in an explicit mode, leaving the operator's mode unchanged.
// MAIN DESCRIPTION:
//   - Stage 1: copy s, setting the diagonal and NaN entries to −Inf.
//   - Stage 2: for every (row group, column group) block, score each row
//     against the block's columns (softmax over s/tau or one-hot argmax).
//   - Stage 3: when reciprocal, score each column against the block's rows
//     the same way and combine element-wise (product or AND).
//
// Rows or columns whose candidates are all excluded produce zeros.
// Complexity: O(N²).
func (b *BestHits) ComputeMode(s *matrix.Dense, m diffpass.Mode) (*matrix.Dense, error) {
	if err := matrix.ValidateNotNil(s); err != nil {
		return nil, fmt.Errorf("BestHits.Compute: %w", err)
	}
	if err := matrix.ValidateSquare(s); err != nil {
		return nil, fmt.Errorf("BestHits.Compute: %w", err)
	}
	if !m.Valid() {
		return nil, fmt.Errorf("BestHits.Compute: %w", diffpass.ErrInvalidMode)
	}
	n := s.Rows()
	if len(b.sizes) > 0 && blocks.Total(b.sizes) != n {
		return nil, fmt.Errorf("BestHits.Compute: sizes sum to %d, matrix is %d×%d: %w",
			blocks.Total(b.sizes), n, n, matrix.ErrDimensionMismatch)
	}
	ranges, _ := blocks.Ranges(b.sizes, n)

	masked := s.Clone()
	masked.Apply(func(i, j int, v float64) float64 {
		if i == j || math.IsNaN(v) {
			return math.Inf(-1)
		}

		return v
	})

	out, err := matrix.NewZeros(n, n)
	if err != nil {
		return nil, fmt.Errorf("BestHits.Compute: %w", err)
	}
	for ga, ra := range ranges {
		for gb, rb := range ranges {
			if ga == gb && !b.inGroup {
				continue
			}
			if ra.Len() == 0 || rb.Len() == 0 {
				continue
			}
			b.block(masked, out, ra, rb, m)
		}
	}

	return out, nil
}

// block fills out[ra, rb] from masked[ra, rb].
func (b *BestHits) block(masked, out *matrix.Dense, ra, rb blocks.Range, m diffpass.Mode) {
	fwd := make([]float64, rb.Len())
	for i := ra.Start; i < ra.End; i++ {
		copy(fwd, masked.Row(i)[rb.Start:rb.End])
		b.score(fwd, m)
		copy(out.Row(i)[rb.Start:rb.End], fwd)
	}
	if !b.reciprocal {
		return
	}
	col := make([]float64, ra.Len())
	for j := rb.Start; j < rb.End; j++ {
		for i := ra.Start; i < ra.End; i++ {
			col[i-ra.Start], _ = masked.At(i, j)
		}
		b.score(col, m)
		for i := ra.Start; i < ra.End; i++ {
			v, _ := out.At(i, j)
			_ = out.Set(i, j, v*col[i-ra.Start])
		}
	}
}

// score replaces v by its best-hit weights: a softmax of v/tau or the
// one-hot of the first maximum. All −Inf gives all zeros.
func (b *BestHits) score(v []float64, m diffpass.Mode) {
	best := floats.MaxIdx(v)
	if math.IsInf(v[best], -1) {
		for k := range v {
			v[k] = 0
		}

		return
	}
	if m == diffpass.Hard {
		for k := range v {
			v[k] = 0
		}
		v[best] = 1

		return
	}
	floats.Scale(1/b.tau, v)
	lse := floats.LogSumExp(v)
	for k := range v {
		v[k] = math.Exp(v[k] - lse)
	}
}
