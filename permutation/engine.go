// SPDX-License-Identifier: MIT

package permutation

import (
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"

	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/blocks"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/relax"
	"golang.org/x/sync/errgroup"
)

// groupLayout is the per-group fixed-pairing derivation, built once by New.
//   - forced lists every (i, j) with P[j, i] = 1, complement included.
//   - freeRows/freeCols are the not-fixed mask as sorted index lists:
//     the free region is freeRows × freeCols, filled row-major.
//   - fullyFixed is true when at most one row was left free.
type groupLayout struct {
	size       int
	forced     []diffpass.IndexPair
	freeRows   []int
	freeCols   []int
	fullyFixed bool
}

// numEffectiveFixed is s minus the size of the free block.
func (l groupLayout) numEffectiveFixed() int { return l.size - len(l.freeRows) }

// Engine produces per-group soft or hard permutation matrices from learnable
// score matrices. It is not safe for concurrent use; the optimizer mutates
// score matrices between calls to Compute.
type Engine struct {
	sizes   []int
	ranges  []blocks.Range
	fixed   diffpass.FixedPairings
	layouts []groupLayout // nil when no fixed pairings were configured
	scores  []*matrix.Dense
	mode    diffpass.Mode
	opts    Options
	rng     *rand.Rand
	log     *slog.Logger

	held       bool  // HoldNoise in effect
	heldParent int64 // noise parent replayed by Compute while held
}

// New validates the configuration and builds an Engine.
// MAIN DESCRIPTION:
//   - Validate sizes, options and fixed pairings; derive per-group layouts;
//     allocate zero score matrices of the free-block sizes.
//
// Implementation:
//   - Stage 1: blocks.Ranges(sizes) rejects negative sizes.
//   - Stage 2: opts.Validate (tau, iterations, noise factor, mode).
//   - Stage 3: when fixed is non-nil, check arity, index ranges and duplicates,
//     then derive each group's layout (see deriveLayout).
//   - Stage 4: allocate score matrices (size s, or s minus effective fixed count).
//
// Errors:
//   - blocks.ErrNegativeSize, relax.ErrBadTemperature, relax.ErrBadIterations,
//     relax.ErrBadNoiseFactor, diffpass.ErrInvalidMode,
//     ErrFixedPairingsLength, ErrFixedPairingRange, ErrFixedPairingDuplicate.
//
// Complexity:
//   - Time O(Σ s²), Space O(Σ s²).
func New(sizes []int, fixed diffpass.FixedPairings, opts Options) (*Engine, error) {
	ranges, err := blocks.Ranges(sizes, 0)
	if err != nil {
		return nil, fmt.Errorf("permutation.New: %w", err)
	}
	if err = opts.Validate(); err != nil {
		return nil, fmt.Errorf("permutation.New: %w", err)
	}

	e := &Engine{
		sizes:  append([]int(nil), sizes...),
		ranges: ranges,
		mode:   opts.Mode,
		opts:   opts,
		rng:    relax.NewRNG(opts.Seed),
		log:    opts.Logger,
	}

	if len(fixed) > 0 {
		if len(fixed) != len(sizes) {
			return nil, fmt.Errorf("permutation.New: %d groups, %d fixed pairing lists: %w",
				len(sizes), len(fixed), ErrFixedPairingsLength)
		}
		e.layouts = make([]groupLayout, len(sizes))
		e.fixed = make(diffpass.FixedPairings, len(fixed))
		for g, pairs := range fixed {
			if e.layouts[g], err = deriveLayout(sizes[g], pairs); err != nil {
				return nil, fmt.Errorf("permutation.New: group %d: %w", g, err)
			}
			e.fixed[g] = append([]diffpass.IndexPair(nil), pairs...)
		}
	}

	e.scores = make([]*matrix.Dense, len(sizes))
	for g, s := range sizes {
		free := s
		if e.layouts != nil {
			free = len(e.layouts[g].freeRows)
		}
		e.scores[g], _ = matrix.NewZeros(free, free)
	}

	if e.log != nil {
		e.log.Debug("permutation engine configured",
			"groups", len(sizes),
			"total", blocks.Total(sizes),
			"fixed_pairs", e.TotalFixed(),
			"mode", e.mode.String())
	}

	return e, nil
}

// deriveLayout validates one group's pairs and builds its layout.
// MAIN DESCRIPTION:
//   - complement = s - len(pairs). A group is fully fixed when complement ≤ 1:
//     its free block is empty and, if one correspondence is left, it is the
//     unique (source, target) pair not yet used.
//   - Otherwise row j and column i are removed from the free region for every
//     pair (i, j).
//
// Errors:
//   - ErrFixedPairingRange, ErrFixedPairingDuplicate.
func deriveLayout(s int, pairs []diffpass.IndexPair) (groupLayout, error) {
	srcUsed := make([]bool, s)
	dstUsed := make([]bool, s)
	for _, p := range pairs {
		if p.I < 0 || p.I >= s || p.J < 0 || p.J >= s {
			return groupLayout{}, fmt.Errorf("pair (%d,%d) with size %d: %w", p.I, p.J, s, ErrFixedPairingRange)
		}
		if srcUsed[p.I] || dstUsed[p.J] {
			return groupLayout{}, fmt.Errorf("pair (%d,%d): %w", p.I, p.J, ErrFixedPairingDuplicate)
		}
		srcUsed[p.I], dstUsed[p.J] = true, true
	}

	l := groupLayout{size: s, forced: append([]diffpass.IndexPair(nil), pairs...)}
	complement := s - len(pairs)
	if complement <= 1 {
		l.fullyFixed = true
		if complement == 1 {
			rest := diffpass.IndexPair{I: firstUnused(srcUsed), J: firstUnused(dstUsed)}
			l.forced = append(l.forced, rest)
		}

		return l, nil
	}
	for k := 0; k < s; k++ {
		if !dstUsed[k] {
			l.freeRows = append(l.freeRows, k)
		}
		if !srcUsed[k] {
			l.freeCols = append(l.freeCols, k)
		}
	}

	return l, nil
}

func firstUnused(used []bool) int {
	for k, u := range used {
		if !u {
			return k
		}
	}

	return -1
}

// GroupSizes returns a copy of the configured group sizes.
func (e *Engine) GroupSizes() []int { return append([]int(nil), e.sizes...) }

// Ranges returns the block ranges of the groups.
func (e *Engine) Ranges() []blocks.Range { return append([]blocks.Range(nil), e.ranges...) }

// FixedPairings returns the configured fixed pairings (nil when none).
func (e *Engine) FixedPairings() diffpass.FixedPairings { return e.fixed }

// Mode returns the current mode.
func (e *Engine) Mode() diffpass.Mode { return e.mode }

// SetMode switches the relaxation used by Compute. Idempotent.
// Errors: diffpass.ErrInvalidMode.
func (e *Engine) SetMode(m diffpass.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("Engine.SetMode(%d): %w", int(m), diffpass.ErrInvalidMode)
	}
	e.mode = m

	return nil
}

// SetModeName is SetMode over a textual mode ("soft" | "hard", any case).
func (e *Engine) SetModeName(name string) error {
	m, err := diffpass.ParseMode(name)
	if err != nil {
		return err
	}

	return e.SetMode(m)
}

// Soft switches to soft mode.
func (e *Engine) Soft() { e.mode = diffpass.Soft }

// Hard switches to hard mode.
func (e *Engine) Hard() { e.mode = diffpass.Hard }

// HoldNoise draws one noise parent from the engine RNG and replays it on every
// Compute until release is called, so a batch of evaluations at nearby score
// values sees the same Gumbel draw. Nested holds keep the outer draw; release
// of an inner hold is a no-op.
func (e *Engine) HoldNoise() (release func()) {
	if e.held {
		return func() {}
	}
	e.heldParent = e.rng.Int63()
	e.held = true

	return func() { e.held = false }
}

// Scores returns the learnable score matrices, one per group, sharing storage
// with the engine. Fully fixed groups carry a 0×0 matrix.
func (e *Engine) Scores() []*matrix.Dense { return e.scores }

// NumParameters is the total number of learnable scalars.
func (e *Engine) NumParameters() int {
	n := 0
	for _, s := range e.scores {
		n += len(s.RawData())
	}

	return n
}

// EffectiveFixed returns, per group, the number of rows removed from the
// free block (s for fully fixed groups, the number of pairs otherwise).
func (e *Engine) EffectiveFixed() []int {
	out := make([]int, len(e.sizes))
	if e.layouts == nil {
		return out
	}
	for g, l := range e.layouts {
		out[g] = l.numEffectiveFixed()
	}

	return out
}

// TotalFixed is Σ EffectiveFixed().
func (e *Engine) TotalFixed() int { return blocks.Total(e.EffectiveFixed()) }

// NotFixedMask returns group g's not-fixed mask as a dense 0/1 matrix.
// Errors: matrix.ErrOutOfRange for an invalid group.
func (e *Engine) NotFixedMask(g int) (*matrix.Dense, error) {
	if g < 0 || g >= len(e.sizes) {
		return nil, fmt.Errorf("Engine.NotFixedMask(%d): %w", g, matrix.ErrOutOfRange)
	}
	s := e.sizes[g]
	out, _ := matrix.NewZeros(s, s)
	if e.layouts == nil {
		out.Fill(1)

		return out, nil
	}
	l := e.layouts[g]
	data := out.RawData()
	for _, r := range l.freeRows {
		for _, c := range l.freeCols {
			data[r*s+c] = 1
		}
	}

	return out, nil
}

// Compute evaluates one permutation matrix per group in the current mode.
// MAIN DESCRIPTION:
//   - Run the mode's relaxation on each score matrix and splice fixed pairings.
//
// Implementation:
//   - Stage 1: derive one noise seed per group from the engine RNG, or from
//     the held parent while HoldNoise is in effect.
//   - Stage 2: per group (sequentially, or on an errgroup when Parallel):
//     relax the free block, then splice when fixed pairings are configured.
//
// Behavior highlights:
//   - Exactly one relaxation call per group; output order follows group order.
//   - Noiseless evaluations are pure functions of the score matrices.
//
// Errors:
//   - Errors from relax (not expected after New validated options).
//
// Complexity:
//   - Soft: O(Iterations·Σ s²); Hard: O(Σ s³).
func (e *Engine) Compute() ([]*matrix.Dense, error) {
	var seeds []int64
	if e.held {
		seeds = relax.SeedsFrom(e.heldParent, len(e.sizes))
	} else {
		seeds = relax.DeriveSeeds(e.rng, len(e.sizes))
	}
	out := make([]*matrix.Dense, len(e.sizes))
	mode := e.mode

	one := func(g int) error {
		rng := relax.NewRNG(seeds[g])
		var (
			rel *matrix.Dense
			err error
		)
		if mode == diffpass.Hard {
			rel, err = relax.Matching(e.scores[g], e.opts.matching(), rng)
		} else {
			rel, err = relax.Sinkhorn(e.scores[g], e.opts.sinkhorn(), rng)
		}
		if err != nil {
			return fmt.Errorf("Engine.Compute: group %d: %w", g, err)
		}
		if e.layouts == nil {
			out[g] = rel
			return nil
		}
		out[g] = splice(e.layouts[g], rel)

		return nil
	}

	if !e.opts.Parallel || len(e.sizes) < 2 {
		for g := range e.sizes {
			if err := one(g); err != nil {
				return nil, err
			}
		}

		return out, nil
	}

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for g := range e.sizes {
		eg.Go(func() error { return one(g) })
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// splice builds the full s×s matrix: forced ones, then the relaxed free block
// scattered row-major into freeRows × freeCols.
func splice(l groupLayout, rel *matrix.Dense) *matrix.Dense {
	s := l.size
	full, _ := matrix.NewZeros(s, s)
	data := full.RawData()
	for _, p := range l.forced {
		data[p.J*s+p.I] = 1
	}
	src := rel.RawData()
	k := 0
	for _, r := range l.freeRows {
		for _, c := range l.freeCols {
			data[r*s+c] = src[k]
			k++
		}
	}

	return full
}
