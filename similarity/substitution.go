// SPDX-License-Identifier: MIT

package similarity

import (
	"fmt"

	"github.com/katalvlaran/diffpass/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SubstitutionOptions extends Options with the substitution-matrix settings.
type SubstitutionOptions struct {
	Options

	// UseScoredist normalizes dot-form scores against the expected value and
	// the self-scores of each pair (dot form only).
	UseScoredist bool

	// Letters is the alphabet in one-hot index order; empty means msa.DefaultLetters.
	Letters string

	// GapsAsStars scores gaps with the '*' row of BLOSUM62; otherwise gaps score 0.
	GapsAsStars bool
}

// DefaultSubstitutionOptions returns the dot form, default alphabet and star gaps.
func DefaultSubstitutionOptions() SubstitutionOptions {
	return SubstitutionOptions{Options: DefaultOptions(), GapsAsStars: true}
}

// Substitution computes substitution-matrix similarities inside each group.
type Substitution struct {
	form         kernelForm
	subs         *matrix.Dense
	expected     float64
	useScoredist bool
}

// NewBlosum62 builds a Substitution operator over BLOSUM62.
//
// Errors: those of NewSubstitution and Blosum62Data.
func NewBlosum62(opts SubstitutionOptions) (*Substitution, error) {
	m, ev, err := Blosum62Data(opts.Letters, opts.GapsAsStars)
	if err != nil {
		return nil, err
	}

	return NewSubstitution(m, ev, opts)
}

// NewSubstitution builds an operator over an arbitrary square substitution
// matrix with expected value ev. Letters and GapsAsStars are ignored.
//
// Errors: matrix.ErrNilMatrix, matrix.ErrNonSquare, ErrMissingExponent, ErrBadExponent.
func NewSubstitution(subs *matrix.Dense, ev float64, opts SubstitutionOptions) (*Substitution, error) {
	if err := matrix.ValidateNotNil(subs); err != nil {
		return nil, fmt.Errorf("NewSubstitution: %w", err)
	}
	if err := matrix.ValidateSquare(subs); err != nil {
		return nil, fmt.Errorf("NewSubstitution: %w", err)
	}
	f, err := opts.resolve("NewSubstitution")
	if err != nil {
		return nil, err
	}

	return &Substitution{form: f, subs: subs.Clone(), expected: ev, useScoredist: opts.UseScoredist}, nil
}

// Matrix returns a copy of the substitution matrix.
func (s *Substitution) Matrix() *matrix.Dense { return s.subs.Clone() }

// ExpectedValue returns the expected score of a random residue pair.
func (s *Substitution) ExpectedValue() float64 { return s.expected }

// Diagnostics returns the non-fatal notes recorded at construction.
func (s *Substitution) Diagnostics() []Diagnostic { return append([]Diagnostic(nil), s.form.diags...) }

// UsesDot reports whether the dot-product kernel is active.
func (s *Substitution) UsesDot() bool { return s.form.useDot }

// Compute returns the N×N similarity matrix of x, NaN outside group blocks.
// MAIN DESCRIPTION:
//   - Embed every position through the substitution matrix: E = X·M, with
//     X viewed as (N·L)×A.
//   - Dot form: S_ij = ⟨E_i, X_j⟩, the summed substitution score of the two
//     aligned sequences. With scoredist the scores are normalized to
//     (S_ij − L·ev) / ((S_ii + S_jj)/2 − L·ev).
//   - Distance form: S_ij = −‖E_i − E_j‖_p.
//
// Errors: matrix.ErrNilMatrix, ErrAlphabetMismatch, matrix.ErrInvalidDimensions,
// ErrGroupSizeMismatch.
// Complexity: O(N_g·L·A² + N_g²·L·A) per group.
func (s *Substitution) Compute(x *matrix.Tensor3) (*matrix.Dense, error) {
	if x == nil {
		return nil, fmt.Errorf("Substitution.Compute: %w", matrix.ErrNilMatrix)
	}
	_, l, a := x.Dims()
	if a != s.subs.Rows() {
		return nil, fmt.Errorf("Substitution.Compute: alphabet %d vs %d: %w", a, s.subs.Rows(), ErrAlphabetMismatch)
	}
	lev := float64(l) * s.expected
	subs := s.subs.Gonum()

	return windowed("Substitution.Compute", x, s.form.sizes, func(slab *matrix.Dense) (*matrix.Dense, error) {
		k := slab.Rows()
		positions := mat.NewDense(k*l, a, slab.RawData())
		emb := mat.NewDense(k*l, a, nil)
		emb.Mul(positions, subs)
		embRows := mat.NewDense(k, l*a, emb.RawMatrix().Data)

		out, _ := matrix.NewZeros(k, k)
		if !s.form.useDot {
			for i := 0; i < k; i++ {
				for j := i; j < k; j++ {
					d := -floats.Distance(embRows.RawRowView(i), embRows.RawRowView(j), s.form.p)
					_ = out.Set(i, j, d)
					_ = out.Set(j, i, d)
				}
			}

			return out, nil
		}

		out.Gonum().Mul(embRows, slab.Gonum().T())
		if !s.useScoredist {
			return out, nil
		}
		self := make([]float64, k)
		for i := range self {
			self[i], _ = out.At(i, i)
		}
		out.Apply(func(i, j int, v float64) float64 {
			return (v - lev) / ((self[i]+self[j])/2 - lev)
		})

		return out, nil
	})
}
