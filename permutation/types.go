// SPDX-License-Identifier: MIT

package permutation

import (
	"errors"
	"log/slog"

	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/relax"
)

var (
	// ErrFixedPairingsLength is returned when fixed pairings are given but their
	// number of groups differs from the number of group sizes.
	ErrFixedPairingsLength = errors.New("permutation: fixed pairings must have one entry per group")

	// ErrFixedPairingRange is returned when a fixed pair references an index
	// outside [0, group size).
	ErrFixedPairingRange = errors.New("permutation: fixed pairing index out of range")

	// ErrFixedPairingDuplicate is returned when a source or a target index is
	// used by more than one fixed pair in the same group.
	ErrFixedPairingDuplicate = errors.New("permutation: fixed pairing index repeated")

	// ErrGroupCount is returned by the operators when the number of matrices
	// differs from the number of groups.
	ErrGroupCount = errors.New("permutation: one matrix per group required")
)

// Options configures an Engine.
//
// Fields:
//   - Tau, Iterations: Sinkhorn temperature and rounds (soft mode).
//   - Noise, NoiseFactor, NoiseStd: Gumbel perturbation shared by both modes.
//   - Unbias: row shuffling before the assignment solve (hard mode).
//   - Mode: initial mode.
//   - Seed: RNG seed for noise; 0 selects the default seed.
//   - Parallel: evaluate groups concurrently.
//   - Logger: optional structured logger; nil is silent.
type Options struct {
	Tau         float64
	Iterations  int
	Noise       bool
	NoiseFactor float64
	NoiseStd    bool
	Unbias      bool
	Mode        diffpass.Mode
	Seed        int64
	Parallel    bool
	Logger      *slog.Logger
}

// DefaultOptions returns tau=1, one Sinkhorn round, no noise, unbiased
// matching, soft mode.
func DefaultOptions() Options {
	return Options{
		Tau:         1,
		Iterations:  1,
		NoiseFactor: 1,
		Unbias:      true,
		Mode:        diffpass.Soft,
	}
}

func (o Options) noise() relax.Noise {
	return relax.Noise{Enabled: o.Noise, Factor: o.NoiseFactor, Std: o.NoiseStd}
}

func (o Options) sinkhorn() relax.SinkhornOptions {
	return relax.SinkhornOptions{Tau: o.Tau, Iterations: o.Iterations, Noise: o.noise()}
}

func (o Options) matching() relax.MatchingOptions {
	return relax.MatchingOptions{Noise: o.noise(), Unbias: o.Unbias}
}

// Validate reports the first configuration error, if any.
func (o Options) Validate() error {
	if !o.Mode.Valid() {
		return diffpass.ErrInvalidMode
	}
	if err := o.sinkhorn().Validate(); err != nil {
		return err
	}

	return o.matching().Validate()
}
