// SPDX-License-Identifier: MIT

package pairing

import (
	"fmt"

	"github.com/katalvlaran/diffpass/loss"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/permutation"
)

// InformationOptions configures NewInformation.
type InformationOptions struct {
	Config
	Measure Measure
}

// Information pairs two MSAs by minimizing an information loss between the
// permuted x and the reference y. Under hard permutations both measures
// rank pairings identically.
type Information struct {
	base
	measure Measure
	loss    loss.TensorComparer
}

var _ Model[*matrix.Tensor3] = (*Information)(nil)

// NewInformation builds the model.
//
// Errors: permutation.New errors, ErrUnknownMeasure.
func NewInformation(opts InformationOptions) (*Information, error) {
	b, err := newBase("pairing.NewInformation", opts.Config)
	if err != nil {
		return nil, err
	}
	m := &Information{base: b, measure: opts.Measure}
	switch opts.Measure {
	case TwoBodyEntropy:
		m.loss = loss.TwoBodyEntropy
	case MI:
		m.loss = loss.MutualInformation
	default:
		return nil, fmt.Errorf("pairing.NewInformation: %v: %w", opts.Measure, ErrUnknownMeasure)
	}

	return m, nil
}

// Measure returns the configured information measure.
func (m *Information) Measure() Measure { return m.measure }

// Prepare validates that x and y hold the grouped sequences over the same alphabet.
func (m *Information) Prepare(x, y *matrix.Tensor3) error {
	return m.checkMSAs("Information.Prepare", x, y, true)
}

// Evaluate permutes x group by group and scores it against y.
func (m *Information) Evaluate(x, y *matrix.Tensor3) (Result[*matrix.Tensor3], error) {
	var res Result[*matrix.Tensor3]
	if err := m.checkMSAs("Information.Evaluate", x, y, true); err != nil {
		return res, err
	}
	perms, err := m.engine.Compute()
	if err != nil {
		return res, err
	}
	xp, err := permutation.BlockApply(x, m.ranges, perms)
	if err != nil {
		return res, fmt.Errorf("Information.Evaluate: %w", err)
	}
	l, err := m.loss.Loss(xp, y)
	if err != nil {
		return res, fmt.Errorf("Information.Evaluate: %w", err)
	}

	return Result[*matrix.Tensor3]{Perms: perms, XPerm: xp, Loss: l}, nil
}

// EvaluateAtIdentity scores x against y unpermuted; hard and soft agree.
func (m *Information) EvaluateAtIdentity(x, y *matrix.Tensor3) (IdentityLosses, error) {
	if err := m.checkMSAs("Information.EvaluateAtIdentity", x, y, true); err != nil {
		return IdentityLosses{}, err
	}
	l, err := m.loss.Loss(x, y)
	if err != nil {
		return IdentityLosses{}, fmt.Errorf("Information.EvaluateAtIdentity: %w", err)
	}

	return IdentityLosses{Hard: l, Soft: l}, nil
}
