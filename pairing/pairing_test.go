package pairing_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/besthits"
	"github.com/katalvlaran/diffpass/loss"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/msa"
	"github.com/katalvlaran/diffpass/pairing"
	"github.com/katalvlaran/diffpass/permutation"
	"github.com/katalvlaran/diffpass/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, seqs ...string) *matrix.Tensor3 {
	t.Helper()
	recs := make([]msa.Record, len(seqs))
	for i, s := range seqs {
		recs[i] = msa.Record{Seq: s}
	}
	x, err := msa.OneHot(recs, msa.DefaultAlphabet())
	require.NoError(t, err)

	return x
}

func states(t *testing.T, col []int, a int) *matrix.Tensor3 {
	t.Helper()
	x, err := matrix.NewTensor3(len(col), 1, a)
	require.NoError(t, err)
	for n, s := range col {
		require.NoError(t, x.Set(n, 0, s, 1))
	}

	return x
}

// plant makes group g's hard permutation select sigma: P[r][sigma[r]] = 1.
func plant(t *testing.T, e *permutation.Engine, g int, sigma []int) {
	t.Helper()
	s := e.Scores()[g]
	s.Fill(0)
	for r, c := range sigma {
		require.NoError(t, s.Set(r, c, 10))
	}
}

func TestParseMeasure(t *testing.T) {
	m, err := pairing.ParseMeasure("mi")
	require.NoError(t, err)
	assert.Equal(t, pairing.MI, m)
	m, err = pairing.ParseMeasure("TwoBodyEntropy")
	require.NoError(t, err)
	assert.Equal(t, pairing.TwoBodyEntropy, m)
	assert.Equal(t, "MI", pairing.MI.String())
	_, err = pairing.ParseMeasure("KL")
	require.ErrorIs(t, err, pairing.ErrUnknownMeasure)
}

func TestInformationPairing(t *testing.T) {
	x := states(t, []int{0, 0, 1, 1}, 2)
	y := states(t, []int{0, 1, 0, 1}, 2)

	m, err := pairing.NewInformation(pairing.InformationOptions{
		Config:  pairing.DefaultConfig([]int{4}),
		Measure: pairing.MI,
	})
	require.NoError(t, err)
	require.NoError(t, m.Prepare(x, y))

	id, err := m.EvaluateAtIdentity(x, y)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(2), id.Hard, 1e-12)
	assert.Equal(t, id.Hard, id.Soft)

	require.NoError(t, m.SetMode(diffpass.Hard))
	plant(t, m.Engine(), 0, []int{0, 2, 1, 3})
	res, err := m.Evaluate(x, y)
	require.NoError(t, err)
	require.Len(t, res.Perms, 1)
	assert.True(t, matrix.IsPermutation(res.Perms[0]))
	ok, err := matrix.AllCloseTensor(res.XPerm, y, 0, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0, res.Loss, 1e-12)
	assert.Less(t, res.Loss, id.Hard)

	m.Engine().Soft()
	res, err = m.Evaluate(x, y)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(res.Loss))
	sums, _ := matrix.RowSums(res.Perms[0])
	for _, s := range sums {
		assert.InDelta(t, 1, s, 1e-9)
	}
}

func TestInformationErrors(t *testing.T) {
	_, err := pairing.NewInformation(pairing.InformationOptions{
		Config:  pairing.DefaultConfig([]int{2}),
		Measure: pairing.Measure(9),
	})
	require.ErrorIs(t, err, pairing.ErrUnknownMeasure)

	cfg := pairing.DefaultConfig([]int{2})
	cfg.FixedPairings = diffpass.FixedPairings{{{I: 0, J: 5}}}
	_, err = pairing.NewInformation(pairing.InformationOptions{Config: cfg})
	require.ErrorIs(t, err, permutation.ErrFixedPairingRange)

	m, err := pairing.NewInformation(pairing.InformationOptions{Config: pairing.DefaultConfig([]int{4})})
	require.NoError(t, err)
	assert.Equal(t, pairing.TwoBodyEntropy, m.Measure())
	err = m.Prepare(states(t, []int{0, 1, 0}, 2), states(t, []int{0, 1, 0, 1}, 2))
	require.ErrorIs(t, err, pairing.ErrIncompatibleInputs)
	err = m.Prepare(states(t, []int{0, 1, 0, 1}, 2), states(t, []int{0, 1, 0, 1}, 3))
	require.ErrorIs(t, err, pairing.ErrIncompatibleInputs)
	_, err = m.Evaluate(nil, nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// Groups [2,2]: swapping the first group of x yields y.
var (
	bhX = []string{"AAAA", "CCCC", "AAAC", "CCCA"}
	bhY = []string{"CCCC", "AAAA", "AAAC", "CCCA"}
)

func TestBestHitsPairingHard(t *testing.T) {
	x, y := encode(t, bhX...), encode(t, bhY...)
	m, err := pairing.NewBestHits(pairing.DefaultBestHitsOptions([]int{2, 2}))
	require.NoError(t, err)

	_, err = m.Evaluate(x, y)
	require.ErrorIs(t, err, pairing.ErrNotPrepared)

	id, err := m.EvaluateAtIdentity(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 0, id.Hard, 1e-12)

	m.Hard()
	assert.Equal(t, diffpass.Hard, m.BestHitsOperator().Mode())
	plant(t, m.Engine(), 0, []int{1, 0})
	res, err := m.Evaluate(x, y)
	require.NoError(t, err)
	assert.InDelta(t, -2, res.Loss, 1e-12)
	ok, err := matrix.AllCloseTensor(res.XPerm, y, 0, 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBestHitsPairingModeMismatch(t *testing.T) {
	x, y := encode(t, bhX...), encode(t, bhY...)
	m, err := pairing.NewBestHits(pairing.DefaultBestHitsOptions([]int{2, 2}))
	require.NoError(t, err)
	require.NoError(t, m.Prepare(x, y))

	m.Engine().Hard()
	_, err = m.Evaluate(x, y)
	require.ErrorIs(t, err, pairing.ErrModeMismatch)

	require.NoError(t, m.SetMode(diffpass.Hard))
	_, err = m.Evaluate(x, y)
	require.NoError(t, err)

	m.Soft()
	res, err := m.Evaluate(x, y)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(res.Loss))
}

func TestBestHitsCompareSoftToHardPolicy(t *testing.T) {
	x, y := encode(t, bhX...), encode(t, bhY...)
	sizes := []int{2, 2}

	sim, err := similarity.NewHamming(similarity.DefaultOptions())
	require.NoError(t, err)
	bhOpts := besthits.DefaultOptions()
	bhOpts.GroupSizes = sizes
	bh, err := besthits.New(bhOpts)
	require.NoError(t, err)
	cmp, err := loss.NewInterGroup(sizes, nil)
	require.NoError(t, err)

	sx, err := sim.Compute(x)
	require.NoError(t, err)
	sy, err := sim.Compute(y)
	require.NoError(t, err)
	softX, err := bh.ComputeMode(sx, diffpass.Soft)
	require.NoError(t, err)
	softY, err := bh.ComputeMode(sy, diffpass.Soft)
	require.NoError(t, err)
	hardY, err := bh.ComputeMode(sy, diffpass.Hard)
	require.NoError(t, err)
	wantToHard, err := cmp.Loss(softX, hardY)
	require.NoError(t, err)
	wantToSoft, err := cmp.Loss(softX, softY)
	require.NoError(t, err)

	for _, toHard := range []bool{true, false} {
		opts := pairing.DefaultBestHitsOptions(sizes)
		opts.CompareSoftToHard = toHard
		m, err := pairing.NewBestHits(opts)
		require.NoError(t, err)
		assert.Equal(t, toHard, m.CompareSoftToHard())

		id, err := m.EvaluateAtIdentity(x, y)
		require.NoError(t, err)
		if toHard {
			assert.InDelta(t, wantToHard, id.Soft, 1e-12)
		} else {
			assert.InDelta(t, wantToSoft, id.Soft, 1e-12)
		}
		assert.InDelta(t, 0, id.Hard, 1e-12)
	}
}

// One group of three: y = x[sigma] with sigma = [2, 0, 1].
var (
	dnX = []string{"AAAA", "AAAC", "CCCC"}
	dnY = []string{"CCCC", "AAAA", "AAAC"}
)

func TestDistanceNetworkPairing(t *testing.T) {
	x, y := encode(t, dnX...), encode(t, dnY...)
	m, err := pairing.NewDistanceNetwork(pairing.DistanceNetworkOptions{Config: pairing.DefaultConfig([]int{3})})
	require.NoError(t, err)

	_, err = m.Evaluate(x, y)
	require.ErrorIs(t, err, pairing.ErrNotPrepared)

	id, err := m.EvaluateAtIdentity(x, y)
	require.NoError(t, err)
	assert.InDelta(t, -0.1875, id.Hard, 1e-12)
	assert.Equal(t, id.Hard, id.Soft)

	res, err := m.Evaluate(x, y)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(res.Loss))

	m.Hard()
	plant(t, m.Engine(), 0, []int{2, 0, 1})
	res, err = m.Evaluate(x, y)
	require.NoError(t, err)
	assert.InDelta(t, -0.625, res.Loss, 1e-12)
}

func TestDistanceNetworkCustomSimilarity(t *testing.T) {
	x, y := encode(t, dnX...), encode(t, dnY...)
	opts := similarity.DefaultSubstitutionOptions()
	opts.GroupSizes = []int{3}
	sim, err := similarity.NewBlosum62(opts)
	require.NoError(t, err)
	m, err := pairing.NewDistanceNetwork(pairing.DistanceNetworkOptions{
		Config:     pairing.DefaultConfig([]int{3}),
		Similarity: sim,
	})
	require.NoError(t, err)
	require.NoError(t, m.Prepare(x, y))

	id, err := m.EvaluateAtIdentity(x, y)
	require.NoError(t, err)
	m.Hard()
	plant(t, m.Engine(), 0, []int{2, 0, 1})
	res, err := m.Evaluate(x, y)
	require.NoError(t, err)
	assert.Less(t, res.Loss, id.Hard)
}

func adjacency(t *testing.T) *matrix.Dense {
	t.Helper()
	x, err := matrix.NewDenseFromRows([][]float64{
		{0, 1, 2, 3},
		{1, 0, 4, 5},
		{2, 4, 0, 6},
		{3, 5, 6, 0},
	})
	require.NoError(t, err)

	return x
}

func TestGraphAlignmentSoftUniform(t *testing.T) {
	x := adjacency(t)
	m, err := pairing.NewGraphAlignment(pairing.GraphAlignmentOptions{Config: pairing.DefaultConfig([]int{2, 2})})
	require.NoError(t, err)
	require.NoError(t, m.Prepare(x, x))

	id, err := m.EvaluateAtIdentity(x, x)
	require.NoError(t, err)
	assert.Equal(t, -91.0, id.Hard)

	res, err := m.Evaluate(x, x)
	require.NoError(t, err)
	v, _ := res.XPerm.At(0, 1)
	assert.InDelta(t, 0.5, v, 1e-9)
	v, _ = res.XPerm.At(1, 3)
	assert.InDelta(t, 3.5, v, 1e-9)
	assert.InDelta(t, -67.5, res.Loss, 1e-9)
}

func TestGraphAlignmentHard(t *testing.T) {
	x := adjacency(t)
	m, err := pairing.NewGraphAlignment(pairing.GraphAlignmentOptions{Config: pairing.DefaultConfig([]int{2, 2})})
	require.NoError(t, err)
	m.Hard()
	plant(t, m.Engine(), 0, []int{1, 0})

	y, err := x.Induced([]int{1, 0, 2, 3}, []int{1, 0, 2, 3})
	require.NoError(t, err)
	res, err := m.Evaluate(x, y)
	require.NoError(t, err)
	ok, err := matrix.AllClose(res.XPerm, y, 0, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -91.0, res.Loss)

	id, err := m.EvaluateAtIdentity(x, y)
	require.NoError(t, err)
	assert.Greater(t, id.Hard, res.Loss)
}

func TestGraphAlignmentErrors(t *testing.T) {
	m, err := pairing.NewGraphAlignment(pairing.GraphAlignmentOptions{Config: pairing.DefaultConfig([]int{2, 2})})
	require.NoError(t, err)
	small, _ := matrix.NewZeros(3, 3)
	require.ErrorIs(t, m.Prepare(adjacency(t), small), pairing.ErrIncompatibleInputs)
	_, err = m.Evaluate(nil, adjacency(t))
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
	require.ErrorIs(t, m.SetMode(diffpass.Mode(3)), diffpass.ErrInvalidMode)
}
