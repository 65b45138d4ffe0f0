// SPDX-License-Identifier: MIT

package blocks

import (
	"errors"
	"fmt"
)

// ErrNegativeSize is returned when a group size is negative.
var ErrNegativeSize = errors.New("blocks: group size must be non-negative")

// Range is the half-open interval [Start, End) of one group on the global axis.
type Range struct {
	Start, End int
}

// Len returns End-Start.
func (r Range) Len() int { return r.End - r.Start }

// Ranges returns the ordered, contiguous ranges for the given group sizes.
// With no sizes and total >= 0 it returns a single range [0, total).
// With sizes, total is ignored and the ranges cover [0, Σsizes).
//
// Errors: ErrNegativeSize (wrapped with the offending group index).
func Ranges(sizes []int, total int) ([]Range, error) {
	if len(sizes) == 0 {
		if total < 0 {
			return nil, fmt.Errorf("Ranges(total=%d): %w", total, ErrNegativeSize)
		}

		return []Range{{Start: 0, End: total}}, nil
	}
	out := make([]Range, len(sizes))
	start := 0
	for g, s := range sizes {
		if s < 0 {
			return nil, fmt.Errorf("Ranges: group %d has size %d: %w", g, s, ErrNegativeSize)
		}
		out[g] = Range{Start: start, End: start + s}
		start += s
	}

	return out, nil
}

// Total returns Σsizes.
func Total(sizes []int) int {
	t := 0
	for _, s := range sizes {
		t += s
	}

	return t
}

// Mask is a square boolean selection stored row-major.
type Mask struct {
	N    int
	Bits []bool
}

// At reports whether (i, j) is selected.
func (m Mask) At(i, j int) bool { return m.Bits[i*m.N+j] }

// Count returns the number of selected entries.
func (m Mask) Count() int {
	c := 0
	for _, b := range m.Bits {
		if b {
			c++
		}
	}

	return c
}

// BlockDiagonal selects (i, j) whenever i and j belong to the same range.
func BlockDiagonal(ranges []Range) Mask {
	n := 0
	if len(ranges) > 0 {
		n = ranges[len(ranges)-1].End
	}
	m := Mask{N: n, Bits: make([]bool, n*n)}
	for _, r := range ranges {
		for i := r.Start; i < r.End; i++ {
			for j := r.Start; j < r.End; j++ {
				m.Bits[i*n+j] = true
			}
		}
	}

	return m
}

// InterGroupUpper selects the strictly-upper entries (i < j) whose items lie in
// different groups: every unordered cross-group pair once.
func InterGroupUpper(ranges []Range) Mask {
	bd := BlockDiagonal(ranges)
	out := Mask{N: bd.N, Bits: make([]bool, len(bd.Bits))}
	for i := 0; i < bd.N; i++ {
		for j := i + 1; j < bd.N; j++ {
			out.Bits[i*bd.N+j] = !bd.Bits[i*bd.N+j]
		}
	}

	return out
}

// IntraGroupUpper selects the upper-triangular entries of each diagonal block.
// With excludeDiag the main diagonal is left out (i < j), otherwise i <= j.
func IntraGroupUpper(ranges []Range, excludeDiag bool) Mask {
	bd := BlockDiagonal(ranges)
	out := Mask{N: bd.N, Bits: make([]bool, len(bd.Bits))}
	first := 0
	if excludeDiag {
		first = 1
	}
	for i := 0; i < bd.N; i++ {
		for j := i + first; j < bd.N; j++ {
			out.Bits[i*bd.N+j] = bd.Bits[i*bd.N+j]
		}
	}

	return out
}
