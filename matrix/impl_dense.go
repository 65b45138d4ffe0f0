// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Keep algorithmic determinism (fixed loop orders, no map iteration).
//   - Support copy-based gathers (Induced) used by hard permutation application.
//
// AI-Hints:
//   - Kernels in sibling packages work on RawData/Row directly; products go through gonum.go.
//   - Use Induced(rows, cols) to materialize a permuted or windowed copy.
//   - NaN and -Inf are legitimate sentinels in similarity and best-hit matrices.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); Induced: O(r'*c').

package matrix

import (
	"fmt"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt     = "At"      // method tag used in error wrappers
	ctxSet    = "Set"     // method tag used in error wrappers
	ctxInduce = "Induced" // method tag for Dense.Induced
	ctxRows   = "FromRows"
)

// ---------- Formatting literals  ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
// Format: "Dense.<method>(row,col): %w"; the sentinel survives for errors.Is.
// Complexity: O(1).
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
type Dense struct {
	r, c int       // row and column counts (>=0; zero allowed for empty groups)
	data []float64 // contiguous row-major storage (len == r*c)
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
// MAIN DESCRIPTION:
//   - Public constructor for Dense with strict shape validation.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate a zero-filled buffer.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
//
// Notes:
//   - Empty shapes (fully fixed groups have a 0×0 free block) go through NewZeros.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return newDenseZeroOK(rows, cols)
}

// newDenseZeroOK is the internal constructor that allows rows==0 or cols==0.
// Complexity: O(rows*cols).
func newDenseZeroOK(rows, cols int) (*Dense, error) {
	if rows < 0 || cols < 0 {
		return nil, ErrInvalidDimensions
	}
	// Zero-length buffer is legal when rows==0 or cols==0 (len == rows*cols).
	buf := make([]float64, rows*cols)

	return &Dense{r: rows, c: cols, data: buf}, nil
}

// NewDenseFromRows copies a rectangular [][]float64 into a new Dense.
// Errors: ErrInvalidDimensions for an empty input, ErrRaggedRows when
// row lengths differ.
// Complexity: O(r*c).
func NewDenseFromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	cols := len(rows[0])
	m, _ := newDenseZeroOK(len(rows), cols) // shape already validated
	for i, row := range rows {
		if len(row) != cols {
			return nil, denseErrorf(ctxRows, i, len(row), ErrRaggedRows)
		}
		copy(m.data[i*cols:(i+1)*cols], row)
	}

	return m, nil
}

// Rows returns the row count.
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count.
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
// Public methods (At/Set) wrap the sentinel with coordinates and method name.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	// Row-major offset: i*c + j.
	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Never panics on out-of-range; returns a wrapped sentinel.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	m.data[off] = v

	return nil
}

// Clone returns a deep copy.
// Complexity: O(r*c).
func (m *Dense) Clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}

// RawData exposes the row-major backing slice. Mutations are visible to m.
// Intended for kernels in sibling packages that need flat-slice fast paths.
func (m *Dense) RawData() []float64 { return m.data }

// Row returns row i as a slice sharing storage with m, or nil when i is out of range.
func (m *Dense) Row(i int) []float64 {
	if i < 0 || i >= m.r {
		return nil
	}

	return m.data[i*m.c : (i+1)*m.c]
}

// Fill sets every entry to v (no numeric policy check).
func (m *Dense) Fill(v float64) {
	for i := range m.data {
		m.data[i] = v
	}
}

// String provides a readable row-wise dump for diagnostics.
// Format: one "[v, v, ...]" line per row, values printed with %g.
func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		sb.WriteString(_fmtRowOpen)
		for j := 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(_fmtSep)
			}
			fmt.Fprintf(&sb, "%g", m.data[i*m.c+j])
		}
		sb.WriteString(_fmtRowClose)
	}

	return sb.String()
}

// Induced materializes the submatrix m[rowsIdx, colsIdx] as a new Dense.
// MAIN DESCRIPTION:
//   - Gather arbitrary rows and columns (repeats and reorderings allowed).
//
// Implementation:
//   - Stage 1: validate every index against the source shape.
//   - Stage 2: allocate len(rowsIdx)×len(colsIdx) and copy element-wise.
//
// Errors:
//   - ErrOutOfRange (wrapped with the offending position).
//
// Complexity:
//   - Time O(r'*c'), Space O(r'*c').
//
// AI-Hints:
//   - With rowsIdx == colsIdx == g, Induced computes the hard conjugation out[r][c] = m[g[r]][g[c]].
func (m *Dense) Induced(rowsIdx, colsIdx []int) (*Dense, error) {
	for k, i := range rowsIdx {
		if i < 0 || i >= m.r {
			return nil, denseErrorf(ctxInduce, k, i, ErrOutOfRange)
		}
	}
	for k, j := range colsIdx {
		if j < 0 || j >= m.c {
			return nil, denseErrorf(ctxInduce, k, j, ErrOutOfRange)
		}
	}
	out, _ := newDenseZeroOK(len(rowsIdx), len(colsIdx))
	for oi, i := range rowsIdx {
		src := m.data[i*m.c : (i+1)*m.c]
		dst := out.data[oi*out.c : (oi+1)*out.c]
		for oj, j := range colsIdx {
			dst[oj] = src[j]
		}
	}

	return out, nil
}

// Apply replaces every element with f(i, j, v) in row-major order.
func (m *Dense) Apply(f func(i, j int, v float64) float64) {
	for i := 0; i < m.r; i++ {
		base := i * m.c
		for j := 0; j < m.c; j++ {
			m.data[base+j] = f(i, j, m.data[base+j])
		}
	}
}
