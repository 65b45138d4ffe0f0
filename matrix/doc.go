// Package matrix provides the dense numeric containers used across diffpass.
//
// The matrix package provides:
//
//   - Dense: a row-major float64 matrix with bounds-checked At/Set and
//     copy-based gathers (Induced).
//   - Tensor3: an N×L×A data tensor (samples × positions × alphabet) whose
//     contiguous sample ranges are exposed as Dense slabs.
//   - Facades: RowSums/ColSums, AllClose,
//     IsPermutation, RowArgmax.
//   - A zero-copy bridge to gonum (Gonum, FromGonum, MulGonum).
//
// Errors are package-level sentinels (errors.go) matched with errors.Is.
package matrix
