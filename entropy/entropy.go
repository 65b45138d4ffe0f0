// SPDX-License-Identifier: MIT

// Package entropy estimates smoothed column entropies of (relaxed) one-hot
// tensors shaped samples × positions × alphabet.
//
// Frequencies are plain sample means of the encodings, so a soft-permuted
// tensor yields a smooth function of the permutation. Entropies use the
// natural logarithm with 0·log 0 = 0.
package entropy

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/diffpass/matrix"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoSamples is returned when a tensor has an empty sample axis.
	ErrNoSamples = errors.New("entropy: tensor has no samples")

	// ErrSampleMismatch is returned when two tensors disagree on the sample count.
	ErrSampleMismatch = errors.New("entropy: tensors must have the same number of samples")
)

// plogp returns -p·log p, with the 0·log 0 = 0 convention.
func plogp(p float64) float64 {
	if p <= 0 {
		return 0
	}

	return -p * math.Log(p)
}

// OneBody returns the mean over positions of the entropy of each position's
// alphabet frequencies: mean_i −Σ_a f_i(a) log f_i(a), f_i(a) = mean_n x[n,i,a].
//
// Errors: matrix.ErrNilMatrix, ErrNoSamples.
// Complexity: O(N·L·A).
func OneBody(x *matrix.Tensor3) (float64, error) {
	if x == nil {
		return 0, fmt.Errorf("entropy.OneBody: %w", matrix.ErrNilMatrix)
	}
	n, l, a := x.Dims()
	if n == 0 {
		return 0, fmt.Errorf("entropy.OneBody: %w", ErrNoSamples)
	}
	freq := make([]float64, l*a)
	data := x.RawData()
	for s := 0; s < n; s++ {
		row := data[s*l*a : (s+1)*l*a]
		for k, v := range row {
			freq[k] += v
		}
	}
	h := 0.0
	inv := 1 / float64(n)
	for _, f := range freq {
		h += plogp(f * inv)
	}

	return h / float64(l), nil
}

// TwoBody returns the mean over position pairs (i of x, j of y) of the joint
// entropy −Σ_{a,b} f_ij(a,b) log f_ij(a,b), f_ij(a,b) = mean_n x[n,i,a]·y[n,j,b].
// MAIN DESCRIPTION:
//   - All pair frequencies at once: F = Xᵀ·Y / N with X, Y flattened to
//     N×(L·A) and N×(L'·A'); block (i, j) of F is the joint table f_ij.
//
// Errors: matrix.ErrNilMatrix, ErrNoSamples, ErrSampleMismatch.
// Complexity: O(N·L·A·L'·A').
func TwoBody(x, y *matrix.Tensor3) (float64, error) {
	if x == nil || y == nil {
		return 0, fmt.Errorf("entropy.TwoBody: %w", matrix.ErrNilMatrix)
	}
	nx, lx, ax := x.Dims()
	ny, ly, ay := y.Dims()
	if nx != ny {
		return 0, fmt.Errorf("entropy.TwoBody: %d vs %d: %w", nx, ny, ErrSampleMismatch)
	}
	if nx == 0 {
		return 0, fmt.Errorf("entropy.TwoBody: %w", ErrNoSamples)
	}

	var f mat.Dense
	f.Mul(x.Flat().Gonum().T(), y.Flat().Gonum())
	f.Scale(1/float64(nx), &f)

	h := 0.0
	raw := f.RawMatrix()
	for r := 0; r < lx*ax; r++ {
		row := raw.Data[r*raw.Stride : r*raw.Stride+ly*ay]
		for _, p := range row {
			h += plogp(p)
		}
	}

	return h / float64(lx*ly), nil
}

// MutualInformation returns the mean over position pairs of
// I(i; j) = H(i) + H(j) − H(i, j), averaged as OneBody(x)+OneBody(y)−TwoBody(x,y).
func MutualInformation(x, y *matrix.Tensor3) (float64, error) {
	hx, err := OneBody(x)
	if err != nil {
		return 0, err
	}
	hy, err := OneBody(y)
	if err != nil {
		return 0, err
	}
	hxy, err := TwoBody(x, y)
	if err != nil {
		return 0, err
	}

	return hx + hy - hxy, nil
}
