package besthits_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/besthits"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)

	return m
}

func symmetricRandom(n int, seed int64) *matrix.Dense {
	rng := rand.New(rand.NewSource(seed))
	m, _ := matrix.NewZeros(n, n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := rng.NormFloat64()
			_ = m.Set(i, j, v)
			_ = m.Set(j, i, v)
		}
	}

	return m
}

var s3 = [][]float64{
	{0, 5, 1},
	{5, 0, 2},
	{1, 2, 0},
}

var s4 = [][]float64{
	{0, 9, 3, 1},
	{9, 0, 2, 4},
	{3, 2, 0, 7},
	{1, 4, 7, 0},
}

func TestHardBestHits(t *testing.T) {
	opts := besthits.DefaultOptions()
	opts.Mode = diffpass.Hard
	opts.Reciprocal = false
	bh, err := besthits.New(opts)
	require.NoError(t, err)

	got, err := bh.Compute(dense(t, s3))
	require.NoError(t, err)
	assert.Equal(t, "[0, 1, 0]\n[1, 0, 0]\n[0, 1, 0]\n", got.String())

	opts.Reciprocal = true
	bh, err = besthits.New(opts)
	require.NoError(t, err)
	got, err = bh.Compute(dense(t, s3))
	require.NoError(t, err)
	assert.Equal(t, "[0, 1, 0]\n[1, 0, 0]\n[0, 0, 0]\n", got.String())
}

func TestHardBestHitsGroups(t *testing.T) {
	opts := besthits.DefaultOptions()
	opts.Mode = diffpass.Hard
	opts.GroupSizes = []int{2, 2}
	bh, err := besthits.New(opts)
	require.NoError(t, err)

	got, err := bh.Compute(dense(t, s4))
	require.NoError(t, err)
	assert.Equal(t, "[0, 1, 1, 0]\n[1, 0, 0, 1]\n[1, 0, 0, 1]\n[0, 1, 1, 0]\n", got.String())

	opts.InGroup = false
	bh, err = besthits.New(opts)
	require.NoError(t, err)
	got, err = bh.Compute(dense(t, s4))
	require.NoError(t, err)
	assert.Equal(t, "[0, 0, 1, 0]\n[0, 0, 0, 1]\n[1, 0, 0, 0]\n[0, 1, 0, 0]\n", got.String())
}

func TestSingletonGroupHasNoInGroupHit(t *testing.T) {
	opts := besthits.DefaultOptions()
	opts.GroupSizes = []int{1, 2}
	bh, err := besthits.New(opts)
	require.NoError(t, err)

	for _, m := range []diffpass.Mode{diffpass.Soft, diffpass.Hard} {
		got, err := bh.ComputeMode(dense(t, s3), m)
		require.NoError(t, err)
		v, _ := got.At(0, 0)
		assert.Equal(t, 0.0, v, "mode %s", m)
	}
}

func TestSoftRowsNormalizedPerBlock(t *testing.T) {
	opts := besthits.DefaultOptions()
	opts.Reciprocal = false
	opts.Tau = 0.7
	opts.GroupSizes = []int{3, 2}
	bh, err := besthits.New(opts)
	require.NoError(t, err)

	got, err := bh.Compute(symmetricRandom(5, 3))
	require.NoError(t, err)
	blocks := [][2]int{{0, 3}, {3, 5}}
	for i := 0; i < 5; i++ {
		for _, b := range blocks {
			sum := 0.0
			for j := b[0]; j < b[1]; j++ {
				v, _ := got.At(i, j)
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
				sum += v
			}
			assert.InDelta(t, 1, sum, 1e-12, "row %d block %v", i, b)
		}
	}
}

func TestReciprocalSymmetry(t *testing.T) {
	for _, m := range []diffpass.Mode{diffpass.Soft, diffpass.Hard} {
		opts := besthits.DefaultOptions()
		opts.Mode = m
		opts.GroupSizes = []int{3, 4, 2}
		bh, err := besthits.New(opts)
		require.NoError(t, err)

		got, err := bh.Compute(symmetricRandom(9, 11))
		require.NoError(t, err)
		for i := 0; i < 9; i++ {
			for j := 0; j < 9; j++ {
				a, _ := got.At(i, j)
				b, _ := got.At(j, i)
				assert.InDelta(t, a, b, 1e-12, "mode %s (%d,%d)", m, i, j)
			}
		}
	}
}

func TestSoftApproachesHard(t *testing.T) {
	opts := besthits.DefaultOptions()
	opts.Tau = 1e-3
	opts.GroupSizes = []int{2, 2}
	bh, err := besthits.New(opts)
	require.NoError(t, err)

	soft, err := bh.ComputeMode(dense(t, s4), diffpass.Soft)
	require.NoError(t, err)
	hard, err := bh.ComputeMode(dense(t, s4), diffpass.Hard)
	require.NoError(t, err)
	ok, err := matrix.AllClose(soft, hard, 0, 1e-9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, diffpass.Soft, bh.Mode())
}

func TestNaNIsExcluded(t *testing.T) {
	nan := math.NaN()
	s := dense(t, [][]float64{
		{0, nan, 1},
		{nan, 0, 2},
		{1, 2, 0},
	})
	opts := besthits.DefaultOptions()
	opts.Mode = diffpass.Hard
	opts.Reciprocal = false
	bh, err := besthits.New(opts)
	require.NoError(t, err)
	got, err := bh.Compute(s)
	require.NoError(t, err)
	assert.Equal(t, "[0, 0, 1]\n[0, 0, 1]\n[0, 1, 0]\n", got.String())
}

func TestModeSwitching(t *testing.T) {
	bh, err := besthits.New(besthits.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, bh.Reciprocal())

	bh.Hard()
	bh.Hard()
	assert.Equal(t, diffpass.Hard, bh.Mode())
	require.NoError(t, bh.SetModeName("SOFT"))
	assert.Equal(t, diffpass.Soft, bh.Mode())
	require.ErrorIs(t, bh.SetModeName("medium"), diffpass.ErrInvalidMode)
	require.ErrorIs(t, bh.SetMode(diffpass.Mode(7)), diffpass.ErrInvalidMode)
	assert.Equal(t, diffpass.Soft, bh.Mode())
}

func TestErrors(t *testing.T) {
	opts := besthits.DefaultOptions()
	opts.Tau = 0
	_, err := besthits.New(opts)
	require.ErrorIs(t, err, besthits.ErrBadTemperature)

	opts = besthits.DefaultOptions()
	opts.GroupSizes = []int{2}
	bh, err := besthits.New(opts)
	require.NoError(t, err)
	_, err = bh.Compute(dense(t, s3))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = bh.Compute(dense(t, [][]float64{{1, 2}}))
	require.ErrorIs(t, err, matrix.ErrNonSquare)

	_, err = bh.Compute(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}
