// SPDX-License-Identifier: MIT

package pairing

import (
	"fmt"

	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/besthits"
	"github.com/katalvlaran/diffpass/loss"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/permutation"
	"github.com/katalvlaran/diffpass/similarity"
)

// BestHitsOptions configures NewBestHits.
//
// Zero-value Similarity is a dot-product Hamming operator over all sequences
// (best hits need the cross-group blocks) and zero-value Comparer is the
// inter-group loss. BestHits.GroupSizes and
// BestHits.Mode are taken from the model.
type BestHitsOptions struct {
	Config
	Similarity similarity.Operator
	BestHits   besthits.Options
	Comparer   loss.Comparer

	// CompareSoftToHard compares soft best hits of the permuted x with the
	// hard best hits of y; when false, with the soft best hits of y.
	CompareSoftToHard bool
}

// DefaultBestHitsOptions returns the default configuration over sizes.
func DefaultBestHitsOptions(sizes []int) BestHitsOptions {
	return BestHitsOptions{
		Config:            DefaultConfig(sizes),
		BestHits:          besthits.DefaultOptions(),
		CompareSoftToHard: true,
	}
}

// BestHits pairs two MSAs by aligning their (reciprocal) best-hit networks.
type BestHits struct {
	base
	sim          similarity.Operator
	bh           *besthits.BestHits
	cmp          loss.Comparer
	softToHard   bool
	prepared     bool
	hardX, hardY *matrix.Dense
	softX, softY *matrix.Dense
}

var _ Model[*matrix.Tensor3] = (*BestHits)(nil)

// NewBestHits builds the model.
//
// Errors: permutation.New, similarity and besthits construction errors.
func NewBestHits(opts BestHitsOptions) (*BestHits, error) {
	const op = "pairing.NewBestHits"
	b, err := newBase(op, opts.Config)
	if err != nil {
		return nil, err
	}
	sim, err := defaultSimilarity(op, opts.Similarity, nil)
	if err != nil {
		return nil, err
	}
	bhOpts := opts.BestHits
	bhOpts.GroupSizes = opts.GroupSizes
	bhOpts.Mode = b.engine.Mode()
	bh, err := besthits.New(bhOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cmp := opts.Comparer
	if cmp == nil {
		if cmp, err = loss.NewInterGroup(opts.GroupSizes, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &BestHits{base: b, sim: sim, bh: bh, cmp: cmp, softToHard: opts.CompareSoftToHard}, nil
}

// BestHitsOperator returns the mode-bearing best-hits component.
func (m *BestHits) BestHitsOperator() *besthits.BestHits { return m.bh }

// CompareSoftToHard reports the soft-comparison policy.
func (m *BestHits) CompareSoftToHard() bool { return m.softToHard }

// SetMode switches the engine and the best-hits operator together.
func (m *BestHits) SetMode(md diffpass.Mode) error {
	if err := m.engine.SetMode(md); err != nil {
		return err
	}

	return m.bh.SetMode(md)
}

// Soft switches both components to soft mode.
func (m *BestHits) Soft() { m.engine.Soft(); m.bh.Soft() }

// Hard switches both components to hard mode.
func (m *BestHits) Hard() { m.engine.Hard(); m.bh.Hard() }

// Prepare validates the inputs and caches hard and soft best hits of x and y.
func (m *BestHits) Prepare(x, y *matrix.Tensor3) error {
	if err := m.checkMSAs("BestHits.Prepare", x, y, true); err != nil {
		return err
	}

	return m.precompute(x, y)
}

func (m *BestHits) precompute(x, y *matrix.Tensor3) error {
	m.prepared = false
	sx, err := m.sim.Compute(x)
	if err != nil {
		return fmt.Errorf("BestHits.Prepare: x: %w", err)
	}
	sy, err := m.sim.Compute(y)
	if err != nil {
		return fmt.Errorf("BestHits.Prepare: y: %w", err)
	}
	for _, c := range []struct {
		dst  **matrix.Dense
		s    *matrix.Dense
		mode diffpass.Mode
	}{
		{&m.hardX, sx, diffpass.Hard},
		{&m.hardY, sy, diffpass.Hard},
		{&m.softX, sx, diffpass.Soft},
		{&m.softY, sy, diffpass.Soft},
	} {
		if *c.dst, err = m.bh.ComputeMode(c.s, c.mode); err != nil {
			return fmt.Errorf("BestHits.Prepare: %w", err)
		}
	}
	m.prepared = true
	m.debug("pairing: best hits cached", "model", "BestHits", "n", m.total)

	return nil
}

func (m *BestHits) yForSoftX() *matrix.Dense {
	if m.softToHard {
		return m.hardY
	}

	return m.softY
}

// Evaluate computes permutations and the best-hits loss in the current mode.
// Soft mode recomputes similarities and best hits of the permuted x; hard
// mode conjugates the cached hard best hits of x by index gathering.
//
// Errors: ErrModeMismatch, ErrNotPrepared, ErrIncompatibleInputs and
// wrapped operator errors.
func (m *BestHits) Evaluate(x, _ *matrix.Tensor3) (Result[*matrix.Tensor3], error) {
	var res Result[*matrix.Tensor3]
	mode := m.engine.Mode()
	if mode != m.bh.Mode() {
		return res, fmt.Errorf("BestHits.Evaluate: permutation %s, best hits %s: %w", mode, m.bh.Mode(), ErrModeMismatch)
	}
	if !m.prepared {
		return res, ErrNotPrepared
	}
	if x == nil {
		return res, fmt.Errorf("BestHits.Evaluate: %w", matrix.ErrNilMatrix)
	}
	perms, err := m.engine.Compute()
	if err != nil {
		return res, err
	}
	xp, err := permutation.BlockApply(x, m.ranges, perms)
	if err != nil {
		return res, fmt.Errorf("BestHits.Evaluate: %w", err)
	}

	var l float64
	if mode == diffpass.Soft {
		sx, err := m.sim.Compute(xp)
		if err != nil {
			return res, fmt.Errorf("BestHits.Evaluate: %w", err)
		}
		bhx, err := m.bh.Compute(sx)
		if err != nil {
			return res, fmt.Errorf("BestHits.Evaluate: %w", err)
		}
		l, err = m.cmp.Loss(bhx, m.yForSoftX())
		if err != nil {
			return res, fmt.Errorf("BestHits.Evaluate: %w", err)
		}
	} else {
		bhx, err := permutation.ApplyHardPermutation(m.hardX, perms)
		if err != nil {
			return res, fmt.Errorf("BestHits.Evaluate: %w", err)
		}
		l, err = m.cmp.Loss(bhx, m.hardY)
		if err != nil {
			return res, fmt.Errorf("BestHits.Evaluate: %w", err)
		}
	}

	return Result[*matrix.Tensor3]{Perms: perms, XPerm: xp, Loss: l}, nil
}

// EvaluateAtIdentity refreshes the cache from x and y and compares the
// unpermuted best hits: hard x against hard y, soft x against the y side
// selected by CompareSoftToHard.
func (m *BestHits) EvaluateAtIdentity(x, y *matrix.Tensor3) (IdentityLosses, error) {
	if err := m.Prepare(x, y); err != nil {
		return IdentityLosses{}, err
	}
	hard, err := m.cmp.Loss(m.hardX, m.hardY)
	if err != nil {
		return IdentityLosses{}, fmt.Errorf("BestHits.EvaluateAtIdentity: %w", err)
	}
	soft, err := m.cmp.Loss(m.softX, m.yForSoftX())
	if err != nil {
		return IdentityLosses{}, fmt.Errorf("BestHits.EvaluateAtIdentity: %w", err)
	}

	return IdentityLosses{Hard: hard, Soft: soft}, nil
}

// defaultSimilarity returns op, or a dot-product Hamming operator windowed by sizes.
func defaultSimilarity(op string, sim similarity.Operator, sizes []int) (similarity.Operator, error) {
	if sim != nil {
		return sim, nil
	}
	o := similarity.DefaultOptions()
	o.GroupSizes = sizes
	h, err := similarity.NewHamming(o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return h, nil
}
