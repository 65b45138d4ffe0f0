package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/katalvlaran/diffpass"
	"github.com/katalvlaran/diffpass/config"
	"github.com/katalvlaran/diffpass/pairing"
	"github.com/katalvlaran/diffpass/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bestHitsDoc = `
model: besthits
group_sizes: [2, 3]
fixed_pairings:
  - [{i: 0, j: 1}]
  - []
permutation:
  tau: 0.5
  iterations: 3
  mode: hard
similarity:
  kind: blosum62
  use_scoredist: true
best_hits:
  tau: 0.2
  reciprocal: false
fit:
  epochs: 7
`

func TestDecodeOverDefaults(t *testing.T) {
	c, err := config.Decode(strings.NewReader(bestHitsDoc))
	require.NoError(t, err)

	assert.Equal(t, config.ModelBestHits, c.Model)
	assert.Equal(t, []int{2, 3}, c.GroupSizes)
	require.Len(t, c.FixedPairings, 2)
	assert.Equal(t, []diffpass.IndexPair{{I: 0, J: 1}}, c.FixedPairings[0])
	assert.Empty(t, c.FixedPairings[1])
	assert.Equal(t, 0.5, c.Permutation.Tau)
	assert.Equal(t, 3, c.Permutation.Iterations)
	assert.True(t, c.Permutation.Unbias, "unset keys keep their defaults")
	assert.Equal(t, config.SimilarityBlosum62, c.Similarity.Kind)
	assert.True(t, c.Similarity.UseDot)
	assert.False(t, c.BestHits.Reciprocal)
	assert.True(t, c.BestHits.InGroup)
	assert.Equal(t, 7, c.Fit.Epochs)
	assert.Equal(t, 0.1, c.Fit.LearningRate)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(bestHitsDoc), 0o600))
	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.ModelBestHits, c.Model)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateErrors(t *testing.T) {
	cases := map[string]string{
		"no group sizes":   "model: information\n",
		"unknown model":    "model: tree\ngroup_sizes: [2]\n",
		"unknown key":      "group_sizes: [2]\ncolour: red\n",
		"negative size":    "group_sizes: [2, -1]\n",
		"bad tau":          "group_sizes: [2]\npermutation: {tau: 0}\n",
		"bad mode":         "group_sizes: [2]\npermutation: {mode: warm}\n",
		"bad measure":      "group_sizes: [2]\ninformation: {measure: KL}\n",
		"bad similarity":   "group_sizes: [2]\nsimilarity: {kind: pam250}\n",
		"bad exponent":     "group_sizes: [2]\nsimilarity: {p: -1}\n",
		"missing exponent": "group_sizes: [2]\nsimilarity: {use_dot: false}\n",
		"pairings length":  "group_sizes: [2, 2]\nfixed_pairings: [[{i: 0, j: 0}]]\n",
		"pair range":       "group_sizes: [2]\nfixed_pairings: [[{i: 0, j: 2}]]\n",
		"bad learning":     "group_sizes: [2]\nfit: {learning_rate: 0}\n",
		"malformed yaml":   "group_sizes: [2\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Decode(strings.NewReader(doc))
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestDefaultNeedsGroupSizes(t *testing.T) {
	c := config.Default()
	require.ErrorIs(t, c.Validate(), config.ErrInvalidConfig)
	c.GroupSizes = []int{3}
	require.NoError(t, c.Validate())
}

func TestBuildModels(t *testing.T) {
	c := config.Default()
	c.GroupSizes = []int{2, 2}

	m, err := c.MSAModel(nil)
	require.NoError(t, err)
	info, ok := m.(*pairing.Information)
	require.True(t, ok)
	assert.Equal(t, pairing.TwoBodyEntropy, info.Measure())

	c.Information.Measure = "MI"
	m, err = c.MSAModel(nil)
	require.NoError(t, err)
	assert.Equal(t, pairing.MI, m.(*pairing.Information).Measure())

	c.Model = config.ModelBestHits
	c.Permutation.Mode = "hard"
	m, err = c.MSAModel(nil)
	require.NoError(t, err)
	bh, ok := m.(*pairing.BestHits)
	require.True(t, ok)
	assert.Equal(t, diffpass.Hard, bh.Mode())
	assert.Equal(t, diffpass.Hard, bh.BestHitsOperator().Mode())
	assert.True(t, bh.CompareSoftToHard())

	c.Model = config.ModelDistance
	m, err = c.MSAModel(nil)
	require.NoError(t, err)
	_, ok = m.(*pairing.DistanceNetwork)
	assert.True(t, ok)

	_, err = c.GraphModel(nil)
	require.ErrorIs(t, err, config.ErrWrongInputKind)

	c.Model = config.ModelGraph
	assert.True(t, c.IsGraph())
	g, err := c.GraphModel(nil)
	require.NoError(t, err)
	assert.NotNil(t, g)
	_, err = c.MSAModel(nil)
	require.ErrorIs(t, err, config.ErrWrongInputKind)
}

func TestBuildRejectsBadPairings(t *testing.T) {
	c := config.Default()
	c.GroupSizes = []int{2}
	c.FixedPairings = diffpass.FixedPairings{{{I: 0, J: 0}, {I: 1, J: 0}}}
	m, err := c.MSAModel(nil)
	require.Error(t, err)
	assert.Nil(t, m)
}

func TestSimilarityOperator(t *testing.T) {
	c := config.Default()
	c.GroupSizes = []int{2}

	op, err := c.SimilarityOperator(nil, nil)
	require.NoError(t, err)
	h, ok := op.(*similarity.Hamming)
	require.True(t, ok)
	assert.True(t, h.UsesDot())

	c.Similarity.Kind = config.SimilarityBlosum62
	c.Similarity.UseDot = false
	c.Similarity.P = similarity.Exponent(1)
	op, err = c.SimilarityOperator(c.GroupSizes, nil)
	require.NoError(t, err)
	s, ok := op.(*similarity.Substitution)
	require.True(t, ok)
	assert.False(t, s.UsesDot())
	assert.InDelta(t, -1.065, s.ExpectedValue(), 1e-9)

	c.Similarity.Alphabet = "ACD"
	_, err = c.SimilarityOperator(nil, nil)
	require.Error(t, err)
}

func TestFitAndPermutationOptions(t *testing.T) {
	c := config.Default()
	c.GroupSizes = []int{2}
	c.Permutation.Seed = 9
	po, err := c.PermutationOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9), po.Seed)
	assert.Equal(t, diffpass.Soft, po.Mode)
	require.NoError(t, po.Validate())

	fo := c.FitOptions(nil)
	assert.Equal(t, 20, fo.Epochs)
	require.NoError(t, fo.Validate())
}
