// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/katalvlaran/diffpass"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Model kinds.
const (
	ModelInformation = "information"
	ModelBestHits    = "besthits"
	ModelDistance    = "distance"
	ModelGraph       = "graph"
)

// Similarity kinds.
const (
	SimilarityHamming  = "hamming"
	SimilarityBlosum62 = "blosum62"
)

// Config is a complete run description.
type Config struct {
	Model         string                 `yaml:"model" validate:"required,oneof=information besthits distance graph"`
	GroupSizes    []int                  `yaml:"group_sizes" validate:"required,min=1,dive,gte=0"`
	FixedPairings diffpass.FixedPairings `yaml:"fixed_pairings"`
	Permutation   Permutation            `yaml:"permutation"`
	Similarity    Similarity             `yaml:"similarity"`
	BestHits      BestHits               `yaml:"best_hits"`
	Information   Information            `yaml:"information"`
	Fit           Fit                    `yaml:"fit"`
}

// Permutation mirrors permutation.Options.
type Permutation struct {
	Tau         float64 `yaml:"tau" validate:"gt=0"`
	Iterations  int     `yaml:"iterations" validate:"gte=1"`
	Noise       bool    `yaml:"noise"`
	NoiseFactor float64 `yaml:"noise_factor" validate:"gte=0"`
	NoiseStd    bool    `yaml:"noise_std"`
	Unbias      bool    `yaml:"unbias"`
	Mode        string  `yaml:"mode" validate:"oneof=soft hard"`
	Seed        int64   `yaml:"seed"`
	Parallel    bool    `yaml:"parallel"`
}

// Similarity selects and parameterizes the similarity kernel.
type Similarity struct {
	Kind         string   `yaml:"kind" validate:"oneof=hamming blosum62"`
	UseDot       bool     `yaml:"use_dot"`
	P            *float64 `yaml:"p" validate:"omitempty,gt=0"`
	UseScoredist bool     `yaml:"use_scoredist"`
	GapsAsStars  bool     `yaml:"gaps_as_stars"`
	Alphabet     string   `yaml:"alphabet"`
}

// BestHits parameterizes the best-hits model.
type BestHits struct {
	Reciprocal        bool    `yaml:"reciprocal"`
	Tau               float64 `yaml:"tau" validate:"gt=0"`
	InGroup           bool    `yaml:"in_group"`
	CompareSoftToHard bool    `yaml:"compare_soft_to_hard"`
}

// Information parameterizes the information model.
type Information struct {
	Measure string `yaml:"measure" validate:"oneof=TwoBodyEntropy MI"`
}

// Fit mirrors fit.Options.
type Fit struct {
	Epochs        int     `yaml:"epochs" validate:"gte=0"`
	LearningRate  float64 `yaml:"learning_rate" validate:"gt=0"`
	Epsilon       float64 `yaml:"epsilon" validate:"gt=0"`
	MeanCentering bool    `yaml:"mean_centering"`
}

// Default returns an information-pairing configuration with library defaults.
// GroupSizes is left empty and must be provided.
func Default() Config {
	return Config{
		Model: ModelInformation,
		Permutation: Permutation{
			Tau:         1,
			Iterations:  1,
			NoiseFactor: 1,
			Unbias:      true,
			Mode:        diffpass.Soft.String(),
		},
		Similarity: Similarity{
			Kind:        SimilarityHamming,
			UseDot:      true,
			GapsAsStars: true,
		},
		BestHits: BestHits{
			Reciprocal:        true,
			Tau:               0.1,
			InGroup:           true,
			CompareSoftToHard: true,
		},
		Information: Information{Measure: "TwoBodyEntropy"},
		Fit: Fit{
			Epochs:        20,
			LearningRate:  0.1,
			Epsilon:       1e-4,
			MeanCentering: true,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field tags and cross-field rules.
//
// Errors: ErrInvalidConfig wrapping the first failure.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(c.FixedPairings) > 0 && len(c.FixedPairings) != len(c.GroupSizes) {
		return fmt.Errorf("%w: %d fixed pairing lists for %d groups",
			ErrInvalidConfig, len(c.FixedPairings), len(c.GroupSizes))
	}
	for g, pairs := range c.FixedPairings {
		for _, p := range pairs {
			if p.I < 0 || p.J < 0 || p.I >= c.GroupSizes[g] || p.J >= c.GroupSizes[g] {
				return fmt.Errorf("%w: group %d: pair (%d,%d) outside [0,%d)",
					ErrInvalidConfig, g, p.I, p.J, c.GroupSizes[g])
			}
		}
	}
	if !c.Similarity.UseDot && c.Similarity.P == nil {
		return fmt.Errorf("%w: similarity.p is required when use_dot is false", ErrInvalidConfig)
	}

	return nil
}

// Decode reads a YAML document over Default() and validates it.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Load reads and decodes the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	return Decode(bytes.NewReader(data))
}
