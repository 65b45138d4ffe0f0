// SPDX-License-Identifier: MIT

package diffpass

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode is returned when a mode name is neither "soft" nor "hard".
var ErrInvalidMode = errors.New("diffpass: mode must be either 'soft' or 'hard'")

// Mode selects how mode-bearing components (permutation engine, best hits)
// evaluate: as a differentiable relaxation or as an exact 0/1 object.
type Mode int

const (
	// Soft produces relaxed (doubly-stochastic / softmax) outputs.
	Soft Mode = iota

	// Hard produces exact permutations / one-hot indicators.
	Hard
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Soft:
		return "soft"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool { return m == Soft || m == Hard }

// ParseMode maps a case-insensitive name onto a Mode.
// Returns ErrInvalidMode for anything other than "soft" or "hard".
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "soft":
		return Soft, nil
	case "hard":
		return Hard, nil
	default:
		return Soft, fmt.Errorf("ParseMode(%q): %w", name, ErrInvalidMode)
	}
}

// IndexPair is a fixed correspondence inside one group: item I of the
// permuted collection must map to item J of the reference collection.
type IndexPair struct {
	I int `json:"i" yaml:"i"`
	J int `json:"j" yaml:"j"`
}

// FixedPairings holds one (possibly empty) list of IndexPair per group.
// A nil FixedPairings means "no fixed pairings at all".
type FixedPairings [][]IndexPair

// Empty reports whether no group carries any fixed pair.
func (fp FixedPairings) Empty() bool {
	for _, g := range fp {
		if len(g) > 0 {
			return false
		}
	}

	return true
}
