// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/besthits"
	"github.com/katalvlaran/diffpass/fit"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/msa"
	"github.com/katalvlaran/diffpass/pairing"
	"github.com/katalvlaran/diffpass/permutation"
	"github.com/katalvlaran/diffpass/similarity"
)

// ErrWrongInputKind is returned when an MSA model is requested for a graph
// configuration, or the reverse.
var ErrWrongInputKind = errors.New("config: model does not take this input kind")

// IsGraph reports whether the configured model aligns adjacency matrices.
func (c Config) IsGraph() bool { return c.Model == ModelGraph }

// PermutationOptions converts the permutation section.
func (c Config) PermutationOptions(log *slog.Logger) (permutation.Options, error) {
	m, err := diffpass.ParseMode(c.Permutation.Mode)
	if err != nil {
		return permutation.Options{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	p := c.Permutation

	return permutation.Options{
		Tau:         p.Tau,
		Iterations:  p.Iterations,
		Noise:       p.Noise,
		NoiseFactor: p.NoiseFactor,
		NoiseStd:    p.NoiseStd,
		Unbias:      p.Unbias,
		Mode:        m,
		Seed:        p.Seed,
		Parallel:    p.Parallel,
		Logger:      log,
	}, nil
}

// FitOptions converts the fit section.
func (c Config) FitOptions(log *slog.Logger) fit.Options {
	return fit.Options{
		Epochs:        c.Fit.Epochs,
		LearningRate:  c.Fit.LearningRate,
		Epsilon:       c.Fit.Epsilon,
		MeanCentering: c.Fit.MeanCentering,
		Logger:        log,
	}
}

// Alphabet returns the configured alphabet, msa.DefaultLetters when unset.
func (c Config) Alphabet() (msa.Alphabet, error) {
	if c.Similarity.Alphabet == "" {
		return msa.DefaultAlphabet(), nil
	}

	return msa.NewAlphabet(c.Similarity.Alphabet)
}

// SimilarityOperator builds the configured kernel windowed by sizes
// (nil means one window over all sequences).
func (c Config) SimilarityOperator(sizes []int, log *slog.Logger) (similarity.Operator, error) {
	s := c.Similarity
	base := similarity.Options{GroupSizes: sizes, UseDot: s.UseDot, P: s.P, Logger: log}
	switch s.Kind {
	case SimilarityHamming:
		return similarity.NewHamming(base)
	case SimilarityBlosum62:
		alpha, err := c.Alphabet()
		if err != nil {
			return nil, err
		}

		return similarity.NewBlosum62(similarity.SubstitutionOptions{
			Options:      base,
			UseScoredist: s.UseScoredist,
			Letters:      alpha.Letters(),
			GapsAsStars:  s.GapsAsStars,
		})
	default:
		return nil, fmt.Errorf("%w: similarity kind %q", ErrInvalidConfig, s.Kind)
	}
}

func (c Config) pairingConfig(log *slog.Logger) (pairing.Config, error) {
	po, err := c.PermutationOptions(log)
	if err != nil {
		return pairing.Config{}, err
	}

	return pairing.Config{
		GroupSizes:    append([]int(nil), c.GroupSizes...),
		FixedPairings: c.FixedPairings,
		Permutation:   po,
	}, nil
}

// MSAModel builds one of the MSA pairing models.
//
// Errors: ErrWrongInputKind for the graph model, ErrInvalidConfig, model
// construction errors.
func (c Config) MSAModel(log *slog.Logger) (pairing.Model[*matrix.Tensor3], error) {
	pc, err := c.pairingConfig(log)
	if err != nil {
		return nil, err
	}
	switch c.Model {
	case ModelInformation:
		m, err := pairing.ParseMeasure(c.Information.Measure)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}

		return msaModel(pairing.NewInformation(pairing.InformationOptions{Config: pc, Measure: m}))
	case ModelBestHits:
		sim, err := c.SimilarityOperator(nil, log)
		if err != nil {
			return nil, err
		}

		return msaModel(pairing.NewBestHits(pairing.BestHitsOptions{
			Config:     pc,
			Similarity: sim,
			BestHits: besthits.Options{
				Reciprocal: c.BestHits.Reciprocal,
				Tau:        c.BestHits.Tau,
				InGroup:    c.BestHits.InGroup,
			},
			CompareSoftToHard: c.BestHits.CompareSoftToHard,
		}))
	case ModelDistance:
		sim, err := c.SimilarityOperator(pc.GroupSizes, log)
		if err != nil {
			return nil, err
		}

		return msaModel(pairing.NewDistanceNetwork(pairing.DistanceNetworkOptions{Config: pc, Similarity: sim}))
	default:
		return nil, fmt.Errorf("config.MSAModel(%q): %w", c.Model, ErrWrongInputKind)
	}
}

// GraphModel builds the graph alignment model.
//
// Errors: ErrWrongInputKind for MSA models, model construction errors.
func (c Config) GraphModel(log *slog.Logger) (pairing.Model[*matrix.Dense], error) {
	if !c.IsGraph() {
		return nil, fmt.Errorf("config.GraphModel(%q): %w", c.Model, ErrWrongInputKind)
	}
	pc, err := c.pairingConfig(log)
	if err != nil {
		return nil, err
	}

	m, err := pairing.NewGraphAlignment(pairing.GraphAlignmentOptions{Config: pc})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// msaModel keeps a failed constructor from leaking a typed nil.
func msaModel(m pairing.Model[*matrix.Tensor3], err error) (pairing.Model[*matrix.Tensor3], error) {
	if err != nil {
		return nil, err
	}

	return m, nil
}
