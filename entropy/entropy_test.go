package entropy_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/diffpass/entropy"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneHot builds an N×L×A tensor from integer states.
func oneHot(t *testing.T, states [][]int, a int) *matrix.Tensor3 {
	t.Helper()
	x, err := matrix.NewTensor3(len(states), len(states[0]), a)
	require.NoError(t, err)
	for n, row := range states {
		for i, s := range row {
			require.NoError(t, x.Set(n, i, s, 1))
		}
	}

	return x
}

func TestOneBody(t *testing.T) {
	// Column 0 is constant (H=0); column 1 is uniform over 2 states (H=log 2).
	x := oneHot(t, [][]int{{0, 0}, {0, 1}, {0, 0}, {0, 1}}, 2)
	h, err := entropy.OneBody(x)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(2)/2, h, 1e-12)
}

func TestTwoBodyIndependentAndCopy(t *testing.T) {
	// x has one uniform binary column.
	x := oneHot(t, [][]int{{0}, {1}, {0}, {1}}, 2)
	// y copies x: joint entropy = log 2.
	h, err := entropy.TwoBody(x, x.Clone())
	require.NoError(t, err)
	assert.InDelta(t, math.Log(2), h, 1e-12)

	// z is independent of x: joint entropy = 2 log 2.
	z := oneHot(t, [][]int{{0}, {0}, {1}, {1}}, 2)
	h, err = entropy.TwoBody(x, z)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Log(2), h, 1e-12)

	mi, err := entropy.MutualInformation(x, x.Clone())
	require.NoError(t, err)
	assert.InDelta(t, math.Log(2), mi, 1e-12)

	mi, err = entropy.MutualInformation(x, z)
	require.NoError(t, err)
	assert.InDelta(t, 0, mi, 1e-12)
}

func TestEntropyErrors(t *testing.T) {
	empty, _ := matrix.NewTensor3(0, 1, 2)
	_, err := entropy.OneBody(empty)
	require.ErrorIs(t, err, entropy.ErrNoSamples)

	a, _ := matrix.NewTensor3(2, 1, 2)
	b, _ := matrix.NewTensor3(3, 1, 2)
	_, err = entropy.TwoBody(a, b)
	require.ErrorIs(t, err, entropy.ErrSampleMismatch)

	_, err = entropy.OneBody(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}
