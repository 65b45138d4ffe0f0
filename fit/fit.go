// SPDX-License-Identifier: MIT

package fit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/pairing"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrBadEpochs is returned for a negative epoch count.
	ErrBadEpochs = errors.New("fit: epochs must be >= 0")

	// ErrBadStep is returned for a non-positive learning rate or difference step.
	ErrBadStep = errors.New("fit: learning rate and epsilon must be > 0")
)

// Options configures Run.
type Options struct {
	Epochs        int
	LearningRate  float64
	Epsilon       float64 // finite-difference step
	MeanCentering bool    // subtract each score matrix's mean after every step
	Logger        *slog.Logger
}

// DefaultOptions: 20 epochs, learning rate 0.1, epsilon 1e-4, mean centering.
func DefaultOptions() Options {
	return Options{Epochs: 20, LearningRate: 0.1, Epsilon: 1e-4, MeanCentering: true}
}

// Validate reports the first configuration error, if any.
func (o Options) Validate() error {
	if o.Epochs < 0 {
		return ErrBadEpochs
	}
	if !(o.LearningRate > 0) || !(o.Epsilon > 0) {
		return ErrBadStep
	}

	return nil
}

// History records one run.
type History struct {
	RunID      uuid.UUID
	Identity   pairing.IdentityLosses
	HardLosses []float64
	SoftLosses []float64
	HardPerms  [][]*matrix.Dense

	BestEpoch    int
	BestHardLoss float64
}

// BestPerms returns the hard permutations of the best epoch, or nil if no
// hard evaluation completed.
func (h *History) BestPerms() []*matrix.Dense {
	if h.BestEpoch < 0 || h.BestEpoch >= len(h.HardPerms) {
		return nil
	}

	return h.HardPerms[h.BestEpoch]
}

// Run prepares m with x and y and trains it.
// MAIN DESCRIPTION:
//   - Stage 1: Prepare, then record identity losses.
//   - Stage 2: for each epoch, hard evaluation (recorded), then soft
//     evaluation, finite-difference gradient and SGD step.
//   - Stage 3: final hard evaluation.
//
// The context is checked between epochs; on cancellation the partial history
// is returned with ctx.Err(). The model is left in soft mode.
//
// Errors: ErrBadEpochs, ErrBadStep, model errors, context errors.
// Complexity: O(Epochs · P · cost(Evaluate)) for P learnable scores.
func Run[T any](ctx context.Context, m pairing.Model[T], x, y T, opts Options) (*History, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("fit.Run: %w", err)
	}
	h := &History{RunID: uuid.New(), BestEpoch: -1, BestHardLoss: math.Inf(1)}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("run_id", h.RunID.String())

	if err := m.Prepare(x, y); err != nil {
		return h, fmt.Errorf("fit.Run: %w", err)
	}
	id, err := m.EvaluateAtIdentity(x, y)
	if err != nil {
		return h, fmt.Errorf("fit.Run: %w", err)
	}
	h.Identity = id
	log.Info("fit started",
		"epochs", opts.Epochs,
		"parameters", m.Engine().NumParameters(),
		"identity_hard", id.Hard,
		"identity_soft", id.Soft)

	for epoch := 0; ; epoch++ {
		if err := ctx.Err(); err != nil {
			epochsTotal.WithLabelValues("cancelled").Inc()
			return h, err
		}
		start := time.Now()

		if err := hardStep(m, x, y, h, epoch); err != nil {
			epochsTotal.WithLabelValues("error").Inc()
			return h, fmt.Errorf("fit.Run: epoch %d: %w", epoch, err)
		}
		if epoch == opts.Epochs {
			break
		}
		soft, err := softStep(m, x, y, opts)
		if err != nil {
			epochsTotal.WithLabelValues("error").Inc()
			return h, fmt.Errorf("fit.Run: epoch %d: %w", epoch, err)
		}
		h.SoftLosses = append(h.SoftLosses, soft)
		lastLoss.WithLabelValues(diffpass.Soft.String()).Set(soft)

		epochDuration.Observe(time.Since(start).Seconds())
		epochsTotal.WithLabelValues("ok").Inc()
		log.Debug("epoch done", "epoch", epoch, "hard_loss", h.HardLosses[epoch], "soft_loss", soft)
	}
	if err := m.SetMode(diffpass.Soft); err != nil {
		return h, err
	}

	log.Info("fit finished", "best_epoch", h.BestEpoch, "best_hard_loss", h.BestHardLoss)

	return h, nil
}

// hardStep records the hard loss and permutations of the current scores.
func hardStep[T any](m pairing.Model[T], x, y T, h *History, epoch int) error {
	if err := m.SetMode(diffpass.Hard); err != nil {
		return err
	}
	res, err := m.Evaluate(x, y)
	if err != nil {
		return err
	}
	h.HardLosses = append(h.HardLosses, res.Loss)
	h.HardPerms = append(h.HardPerms, res.Perms)
	lastLoss.WithLabelValues(diffpass.Hard.String()).Set(res.Loss)
	if res.Loss < h.BestHardLoss {
		h.BestHardLoss = res.Loss
		h.BestEpoch = epoch
	}

	return nil
}

// softStep evaluates the soft loss, estimates its gradient with respect to
// every score by central differences and applies one SGD step. All 2P+1
// evaluations of a step share one noise draw through Engine.HoldNoise.
func softStep[T any](m pairing.Model[T], x, y T, opts Options) (float64, error) {
	if err := m.SetMode(diffpass.Soft); err != nil {
		return 0, err
	}
	release := m.Engine().HoldNoise()
	defer release()

	lossAt := func() (float64, error) {
		res, err := m.Evaluate(x, y)
		if err != nil {
			return 0, err
		}

		return res.Loss, nil
	}
	current, err := lossAt()
	if err != nil {
		return 0, err
	}

	scores := m.Engine().Scores()
	grads := make([][]float64, len(scores))
	for g, s := range scores {
		theta := s.RawData()
		grads[g] = make([]float64, len(theta))
		for k := range theta {
			orig := theta[k]
			theta[k] = orig + opts.Epsilon
			up, err := lossAt()
			if err != nil {
				theta[k] = orig
				return 0, err
			}
			theta[k] = orig - opts.Epsilon
			down, err := lossAt()
			theta[k] = orig
			if err != nil {
				return 0, err
			}
			grads[g][k] = (up - down) / (2 * opts.Epsilon)
		}
	}
	for g, s := range scores {
		theta := s.RawData()
		floats.AddScaled(theta, -opts.LearningRate, grads[g])
		if opts.MeanCentering && len(theta) > 0 {
			floats.AddConst(-stat.Mean(theta, nil), theta)
		}
	}

	return current, nil
}
