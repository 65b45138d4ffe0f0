package fit_test

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/fit"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/pairing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// plantedGraphs returns x and y = x conjugated by sigma = [2, 0, 1].
func plantedGraphs(t *testing.T) (*matrix.Dense, *matrix.Dense) {
	t.Helper()
	x, err := matrix.NewDenseFromRows([][]float64{
		{0, 1, 2},
		{1, 0, 3},
		{2, 3, 0},
	})
	require.NoError(t, err)
	y, err := x.Induced([]int{2, 0, 1}, []int{2, 0, 1})
	require.NoError(t, err)

	return x, y
}

func newGraphModel(t *testing.T) *pairing.GraphAlignment {
	t.Helper()
	m, err := pairing.NewGraphAlignment(pairing.GraphAlignmentOptions{Config: pairing.DefaultConfig([]int{3})})
	require.NoError(t, err)

	return m
}

func TestRunRecoversPlantedPermutation(t *testing.T) {
	x, y := plantedGraphs(t)
	m := newGraphModel(t)
	var buf bytes.Buffer
	opts := fit.DefaultOptions()
	opts.Epochs = 5
	opts.LearningRate = 1
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h, err := fit.Run(context.Background(), m, x, y, opts)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, h.RunID)
	assert.Len(t, h.HardLosses, 6)
	assert.Len(t, h.HardPerms, 6)
	assert.Len(t, h.SoftLosses, 5)
	assert.Equal(t, -11.0, h.Identity.Hard)
	assert.Equal(t, h.Identity.Hard, h.HardLosses[0])
	assert.InDelta(t, -14, h.BestHardLoss, 1e-12)
	assert.LessOrEqual(t, h.BestHardLoss, h.Identity.Hard)
	for e := 1; e < len(h.SoftLosses); e++ {
		assert.Less(t, h.SoftLosses[e], h.SoftLosses[e-1], "epoch %d", e)
	}

	best := h.BestPerms()
	require.Len(t, best, 1)
	assert.Equal(t, []int{2, 0, 1}, matrix.RowArgmax(best[0]))

	assert.Equal(t, diffpass.Soft, m.Mode())
	for _, s := range m.Engine().Scores() {
		assert.InDelta(t, 0, floats.Sum(s.RawData()), 1e-9)
	}
	assert.True(t, strings.Contains(buf.String(), "run_id="+h.RunID.String()))
	assert.True(t, strings.Contains(buf.String(), "fit finished"))
}

func noisyGraphModel(t *testing.T, factor float64) *pairing.GraphAlignment {
	t.Helper()
	c := pairing.DefaultConfig([]int{3})
	c.Permutation.Noise = true
	c.Permutation.NoiseFactor = factor
	c.Permutation.Seed = 11
	m, err := pairing.NewGraphAlignment(pairing.GraphAlignmentOptions{Config: c})
	require.NoError(t, err)

	return m
}

// TestRunNoisySmallFactorTracksNoiseless: with a tiny Gumbel factor the
// finite-difference step must land next to the noiseless step.
func TestRunNoisySmallFactorTracksNoiseless(t *testing.T) {
	x, y := plantedGraphs(t)
	opts := fit.DefaultOptions()
	opts.Epochs = 1
	opts.LearningRate = 1

	clean := newGraphModel(t)
	_, err := fit.Run(context.Background(), clean, x, y, opts)
	require.NoError(t, err)
	noisy := noisyGraphModel(t, 1e-3)
	_, err = fit.Run(context.Background(), noisy, x, y, opts)
	require.NoError(t, err)

	want := clean.Engine().Scores()[0].RawData()
	got := noisy.Engine().Scores()[0].RawData()
	require.Len(t, got, len(want))
	for k := range want {
		assert.InDelta(t, want[k], got[k], 0.05, "score %d", k)
	}
}

// TestRunNoisyScoresStayBounded: one step under unit-scale noise moves scores
// by the size of the loss slope, not by noise/epsilon.
func TestRunNoisyScoresStayBounded(t *testing.T) {
	x, y := plantedGraphs(t)
	opts := fit.DefaultOptions()
	opts.Epochs = 1
	opts.LearningRate = 1

	m := noisyGraphModel(t, 0.1)
	h, err := fit.Run(context.Background(), m, x, y, opts)
	require.NoError(t, err)
	require.Len(t, h.SoftLosses, 1)
	for k, v := range m.Engine().Scores()[0].RawData() {
		assert.Less(t, math.Abs(v), 1.0, "score %d", k)
	}
}

// TestHeldNoiseLossIsStable: repeated evaluations at fixed scores agree while
// the noise draw is held.
func TestHeldNoiseLossIsStable(t *testing.T) {
	x, y := plantedGraphs(t)
	m := noisyGraphModel(t, 0.5)
	require.NoError(t, m.SetMode(diffpass.Soft))

	release := m.Engine().HoldNoise()
	defer release()
	first, err := m.Evaluate(x, y)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := m.Evaluate(x, y)
		require.NoError(t, err)
		assert.Equal(t, first.Loss, again.Loss)
	}
}

func TestRunZeroEpochs(t *testing.T) {
	x, y := plantedGraphs(t)
	opts := fit.DefaultOptions()
	opts.Epochs = 0
	h, err := fit.Run(context.Background(), newGraphModel(t), x, y, opts)
	require.NoError(t, err)
	assert.Len(t, h.HardLosses, 1)
	assert.Empty(t, h.SoftLosses)
	assert.Equal(t, 0, h.BestEpoch)
}

func TestRunCancelled(t *testing.T) {
	x, y := plantedGraphs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h, err := fit.Run(ctx, newGraphModel(t), x, y, fit.DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, h)
	assert.Empty(t, h.HardLosses)
	assert.Nil(t, h.BestPerms())
	assert.Equal(t, -11.0, h.Identity.Hard)
}

func TestRunErrors(t *testing.T) {
	x, y := plantedGraphs(t)
	m := newGraphModel(t)

	opts := fit.DefaultOptions()
	opts.Epochs = -1
	_, err := fit.Run(context.Background(), m, x, y, opts)
	require.ErrorIs(t, err, fit.ErrBadEpochs)

	opts = fit.DefaultOptions()
	opts.LearningRate = 0
	_, err = fit.Run(context.Background(), m, x, y, opts)
	require.ErrorIs(t, err, fit.ErrBadStep)

	small, _ := matrix.NewZeros(2, 2)
	_, err = fit.Run(context.Background(), m, x, small, fit.DefaultOptions())
	require.ErrorIs(t, err, pairing.ErrIncompatibleInputs)
}
