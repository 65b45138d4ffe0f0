// SPDX-License-Identifier: MIT

package pairing

import (
	"fmt"

	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/loss"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/permutation"
	"github.com/katalvlaran/diffpass/similarity"
)

// DistanceNetworkOptions configures NewDistanceNetwork.
// Zero-value Similarity is a group-windowed dot-product Hamming operator and
// zero-value Comparer is the intra-group loss over the group sizes.
type DistanceNetworkOptions struct {
	Config
	Similarity similarity.Operator
	Comparer   loss.Comparer
}

// DistanceNetwork pairs two MSAs by aligning their within-group sequence
// similarity matrices (mirror-tree pairing).
type DistanceNetwork struct {
	base
	sim      similarity.Operator
	cmp      loss.Comparer
	prepared bool
	simX     *matrix.Dense
	simY     *matrix.Dense
}

var _ Model[*matrix.Tensor3] = (*DistanceNetwork)(nil)

// NewDistanceNetwork builds the model.
func NewDistanceNetwork(opts DistanceNetworkOptions) (*DistanceNetwork, error) {
	const op = "pairing.NewDistanceNetwork"
	b, err := newBase(op, opts.Config)
	if err != nil {
		return nil, err
	}
	sim, err := defaultSimilarity(op, opts.Similarity, opts.GroupSizes)
	if err != nil {
		return nil, err
	}
	cmp := opts.Comparer
	if cmp == nil {
		if cmp, err = loss.NewIntraGroup(loss.IntraGroupOptions{GroupSizes: opts.GroupSizes}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &DistanceNetwork{base: b, sim: sim, cmp: cmp}, nil
}

// Prepare validates the inputs and caches the similarity matrices of x and y.
func (m *DistanceNetwork) Prepare(x, y *matrix.Tensor3) error {
	if err := m.checkMSAs("DistanceNetwork.Prepare", x, y, true); err != nil {
		return err
	}
	m.prepared = false
	var err error
	if m.simX, err = m.sim.Compute(x); err != nil {
		return fmt.Errorf("DistanceNetwork.Prepare: x: %w", err)
	}
	if m.simY, err = m.sim.Compute(y); err != nil {
		return fmt.Errorf("DistanceNetwork.Prepare: y: %w", err)
	}
	m.prepared = true
	m.debug("pairing: similarities cached", "model", "DistanceNetwork", "n", m.total)

	return nil
}

// Evaluate compares the similarities of the permuted x with those of y.
// Hard mode conjugates the cached similarities of x by index gathering.
func (m *DistanceNetwork) Evaluate(x, _ *matrix.Tensor3) (Result[*matrix.Tensor3], error) {
	var res Result[*matrix.Tensor3]
	if !m.prepared {
		return res, ErrNotPrepared
	}
	if x == nil {
		return res, fmt.Errorf("DistanceNetwork.Evaluate: %w", matrix.ErrNilMatrix)
	}
	mode := m.engine.Mode()
	perms, err := m.engine.Compute()
	if err != nil {
		return res, err
	}
	xp, err := permutation.BlockApply(x, m.ranges, perms)
	if err != nil {
		return res, fmt.Errorf("DistanceNetwork.Evaluate: %w", err)
	}
	var sx *matrix.Dense
	if mode == diffpass.Soft {
		sx, err = m.sim.Compute(xp)
	} else {
		sx, err = permutation.ApplyHardPermutation(m.simX, perms)
	}
	if err != nil {
		return res, fmt.Errorf("DistanceNetwork.Evaluate: %w", err)
	}
	l, err := m.cmp.Loss(sx, m.simY)
	if err != nil {
		return res, fmt.Errorf("DistanceNetwork.Evaluate: %w", err)
	}

	return Result[*matrix.Tensor3]{Perms: perms, XPerm: xp, Loss: l}, nil
}

// EvaluateAtIdentity refreshes the cache and compares the unpermuted
// similarity matrices; hard and soft agree.
func (m *DistanceNetwork) EvaluateAtIdentity(x, y *matrix.Tensor3) (IdentityLosses, error) {
	if err := m.Prepare(x, y); err != nil {
		return IdentityLosses{}, err
	}
	l, err := m.cmp.Loss(m.simX, m.simY)
	if err != nil {
		return IdentityLosses{}, fmt.Errorf("DistanceNetwork.EvaluateAtIdentity: %w", err)
	}

	return IdentityLosses{Hard: l, Soft: l}, nil
}
