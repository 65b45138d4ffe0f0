// SPDX-License-Identifier: MIT

package pairing

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/blocks"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/permutation"
)

var (
	// ErrModeMismatch is returned when coupled mode-bearing components disagree.
	ErrModeMismatch = errors.New("pairing: permutation and best hits must be in the same mode")

	// ErrNotPrepared is returned by Evaluate on a caching model before Prepare.
	ErrNotPrepared = errors.New("pairing: Prepare must be called before Evaluate")

	// ErrIncompatibleInputs is returned when x and y do not fit the group sizes or each other.
	ErrIncompatibleInputs = errors.New("pairing: incompatible inputs")

	// ErrUnknownMeasure is returned for an unknown information measure name.
	ErrUnknownMeasure = errors.New("pairing: information measure must be 'TwoBodyEntropy' or 'MI'")
)

// Result is the output of one evaluation.
type Result[T any] struct {
	Perms []*matrix.Dense
	XPerm T
	Loss  float64
}

// IdentityLosses are the losses obtained with no permutation applied.
type IdentityLosses struct {
	Hard float64
	Soft float64
}

// Model is the lifecycle shared by all pairing models.
type Model[T any] interface {
	Prepare(x, y T) error
	Evaluate(x, y T) (Result[T], error)
	EvaluateAtIdentity(x, y T) (IdentityLosses, error)

	Engine() *permutation.Engine
	Mode() diffpass.Mode
	SetMode(m diffpass.Mode) error
}

// Measure selects the information loss.
type Measure int

const (
	// TwoBodyEntropy minimizes the mean joint entropy of column pairs.
	TwoBodyEntropy Measure = iota
	// MI maximizes the mean mutual information of column pairs.
	MI
)

// String implements fmt.Stringer.
func (m Measure) String() string {
	switch m {
	case TwoBodyEntropy:
		return "TwoBodyEntropy"
	case MI:
		return "MI"
	default:
		return fmt.Sprintf("Measure(%d)", int(m))
	}
}

// ParseMeasure accepts "TwoBodyEntropy" or "MI", case-insensitively.
func ParseMeasure(name string) (Measure, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "twobodyentropy", "two_body_entropy":
		return TwoBodyEntropy, nil
	case "mi":
		return MI, nil
	default:
		return TwoBodyEntropy, fmt.Errorf("ParseMeasure(%q): %w", name, ErrUnknownMeasure)
	}
}

// Config is the part shared by every model: group sizes, fixed pairings and
// the permutation engine options.
type Config struct {
	GroupSizes    []int
	FixedPairings diffpass.FixedPairings
	Permutation   permutation.Options
}

// DefaultConfig returns a Config over sizes with default engine options.
func DefaultConfig(sizes []int) Config {
	return Config{GroupSizes: sizes, Permutation: permutation.DefaultOptions()}
}

// base holds the engine and partition every model embeds.
type base struct {
	engine *permutation.Engine
	ranges []blocks.Range
	total  int
	log    *slog.Logger
}

func newBase(op string, c Config) (base, error) {
	e, err := permutation.New(c.GroupSizes, c.FixedPairings, c.Permutation)
	if err != nil {
		return base{}, fmt.Errorf("%s: %w", op, err)
	}

	return base{engine: e, ranges: e.Ranges(), total: blocks.Total(c.GroupSizes), log: c.Permutation.Logger}, nil
}

// Engine returns the permutation engine.
func (b *base) Engine() *permutation.Engine { return b.engine }

// Mode returns the engine mode.
func (b *base) Mode() diffpass.Mode { return b.engine.Mode() }

// SetMode switches the engine mode.
func (b *base) SetMode(m diffpass.Mode) error { return b.engine.SetMode(m) }

// Soft switches to soft mode.
func (b *base) Soft() { b.engine.Soft() }

// Hard switches to hard mode.
func (b *base) Hard() { b.engine.Hard() }

// checkMSAs validates two one-hot MSAs against the partition.
func (b *base) checkMSAs(op string, x, y *matrix.Tensor3, sameAlphabet bool) error {
	if x == nil || y == nil {
		return fmt.Errorf("%s: %w", op, matrix.ErrNilMatrix)
	}
	nx, _, ax := x.Dims()
	ny, _, ay := y.Dims()
	if nx != b.total || ny != b.total {
		return fmt.Errorf("%s: %d and %d sequences, groups hold %d: %w", op, nx, ny, b.total, ErrIncompatibleInputs)
	}
	if sameAlphabet && ax != ay {
		return fmt.Errorf("%s: alphabet sizes %d and %d: %w", op, ax, ay, ErrIncompatibleInputs)
	}

	return nil
}

// checkGraphs validates two adjacency matrices against the partition.
func (b *base) checkGraphs(op string, x, y *matrix.Dense) error {
	if err := matrix.ValidateSquareOfSize(x, b.total); err != nil {
		return fmt.Errorf("%s: x: %w: %w", op, ErrIncompatibleInputs, err)
	}
	if err := matrix.ValidateSquareOfSize(y, b.total); err != nil {
		return fmt.Errorf("%s: y: %w: %w", op, ErrIncompatibleInputs, err)
	}

	return nil
}

func (b *base) debug(msg string, args ...any) {
	if b.log != nil {
		b.log.Debug(msg, args...)
	}
}
