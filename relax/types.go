// SPDX-License-Identifier: MIT

package relax

import (
	"errors"
	"math"
)

var (
	// ErrBadTemperature is returned when tau is not a positive finite number.
	ErrBadTemperature = errors.New("relax: temperature must be > 0")

	// ErrBadIterations is returned when the Sinkhorn iteration count is < 1.
	ErrBadIterations = errors.New("relax: iterations must be >= 1")

	// ErrBadNoiseFactor is returned when the noise factor is negative or not finite.
	ErrBadNoiseFactor = errors.New("relax: noise factor must be finite and >= 0")
)

// Noise configures Gumbel perturbation of the score matrix.
//
// Fields:
//   - Enabled: add noise at all.
//   - Factor:  multiplier applied to each Gumbel(0,1) sample.
//   - Std:     additionally scale by the sample standard deviation of the scores.
type Noise struct {
	Enabled bool
	Factor  float64
	Std     bool
}

// Validate checks Factor when noise is enabled.
func (n Noise) Validate() error {
	if n.Enabled && (n.Factor < 0 || math.IsNaN(n.Factor) || math.IsInf(n.Factor, 0)) {
		return ErrBadNoiseFactor
	}

	return nil
}

// SinkhornOptions configures the entropic relaxation.
type SinkhornOptions struct {
	Tau        float64
	Iterations int
	Noise      Noise
}

// DefaultSinkhornOptions returns tau=1, one iteration, no noise.
func DefaultSinkhornOptions() SinkhornOptions {
	return SinkhornOptions{Tau: 1, Iterations: 1, Noise: Noise{Factor: 1}}
}

// Validate reports the first configuration error, if any.
func (o SinkhornOptions) Validate() error {
	if !(o.Tau > 0) || math.IsInf(o.Tau, 0) {
		return ErrBadTemperature
	}
	if o.Iterations < 1 {
		return ErrBadIterations
	}

	return o.Noise.Validate()
}

// MatchingOptions configures the matching relaxation.
type MatchingOptions struct {
	Noise  Noise
	Unbias bool
}

// DefaultMatchingOptions returns no noise with unbiasing on.
func DefaultMatchingOptions() MatchingOptions {
	return MatchingOptions{Noise: Noise{Factor: 1}, Unbias: true}
}

// Validate reports the first configuration error, if any.
func (o MatchingOptions) Validate() error { return o.Noise.Validate() }
