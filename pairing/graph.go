// SPDX-License-Identifier: MIT

package pairing

import (
	"fmt"

	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/loss"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/permutation"
)

// GraphAlignmentOptions configures NewGraphAlignment.
// Zero-value Comparer is the dot product over the whole strict upper triangle.
type GraphAlignmentOptions struct {
	Config
	Comparer loss.Comparer
}

// GraphAlignment aligns two weighted adjacency matrices: the permutations
// act on x as P·X·Pᵀ per group.
type GraphAlignment struct {
	base
	cmp loss.Comparer
}

var _ Model[*matrix.Dense] = (*GraphAlignment)(nil)

// NewGraphAlignment builds the model.
func NewGraphAlignment(opts GraphAlignmentOptions) (*GraphAlignment, error) {
	const op = "pairing.NewGraphAlignment"
	b, err := newBase(op, opts.Config)
	if err != nil {
		return nil, err
	}
	cmp := opts.Comparer
	if cmp == nil {
		if cmp, err = loss.NewIntraGroup(loss.IntraGroupOptions{}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &GraphAlignment{base: b, cmp: cmp}, nil
}

// Prepare validates that x and y are square over the partition.
func (m *GraphAlignment) Prepare(x, y *matrix.Dense) error {
	return m.checkGraphs("GraphAlignment.Prepare", x, y)
}

// Evaluate conjugates x by the current permutations and compares it with y.
// Hard mode uses index gathering instead of dense products.
func (m *GraphAlignment) Evaluate(x, y *matrix.Dense) (Result[*matrix.Dense], error) {
	var res Result[*matrix.Dense]
	if err := m.checkGraphs("GraphAlignment.Evaluate", x, y); err != nil {
		return res, err
	}
	mode := m.engine.Mode()
	perms, err := m.engine.Compute()
	if err != nil {
		return res, err
	}
	var xp *matrix.Dense
	if mode == diffpass.Soft {
		xp, err = permutation.BlockConjugate(x, m.ranges, perms)
	} else {
		xp, err = permutation.ApplyHardPermutation(x, perms)
	}
	if err != nil {
		return res, fmt.Errorf("GraphAlignment.Evaluate: %w", err)
	}
	l, err := m.cmp.Loss(xp, y)
	if err != nil {
		return res, fmt.Errorf("GraphAlignment.Evaluate: %w", err)
	}

	return Result[*matrix.Dense]{Perms: perms, XPerm: xp, Loss: l}, nil
}

// EvaluateAtIdentity compares x with y unpermuted; hard and soft agree.
func (m *GraphAlignment) EvaluateAtIdentity(x, y *matrix.Dense) (IdentityLosses, error) {
	if err := m.checkGraphs("GraphAlignment.EvaluateAtIdentity", x, y); err != nil {
		return IdentityLosses{}, err
	}
	l, err := m.cmp.Loss(x, y)
	if err != nil {
		return IdentityLosses{}, fmt.Errorf("GraphAlignment.EvaluateAtIdentity: %w", err)
	}

	return IdentityLosses{Hard: l, Soft: l}, nil
}
