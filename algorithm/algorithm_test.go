package algorithm

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rssalg/rssalg/dataset"
	"github.com/rssalg/rssalg/errors"
	"github.com/rssalg/rssalg/settings"
)

// twoClusterFold has class "a" around 0 and class "b" around 10 on every
// attribute, split over two views
func twoClusterFold() *dataset.Dataset {
	inst := func(id, class string, v float64) dataset.Instance {
		return dataset.Instance{ID: id, Class: class, Features: []float64{v, v + 0.5, v - 0.25, v + 1}}
	}
	return &dataset.Dataset{
		Attributes: []string{"w", "x", "y", "z"},
		ClassNames: []string{"a", "b"},
		Views:      [][]int{{0, 1}, {2, 3}},
		Labeled:    []dataset.Instance{inst("1", "a", 0), inst("2", "a", 1), inst("3", "b", 10), inst("4", "b", 11)},
		Unlabeled:  []dataset.Instance{inst("5", "a", 0.5), inst("6", "b", 9)},
		Test:       []dataset.Instance{inst("7", "a", 0.2), inst("8", "b", 10.4), inst("9", "a", -0.3)},
	}
}

func TestNaiveBayes(t *testing.T) {
	nb := NewNaiveBayes(DefaultVarSmoothing)
	require.NoError(t, nb.Fit(
		[][]float64{{0, 0}, {1, 1}, {10, 10}, {11, 9}},
		[]string{"low", "low", "high", "high"},
	))
	assert.Equal(t, []string{"high", "low"}, nb.Classes())

	label, p := nb.Predict([]float64{0.4, 0.6})
	assert.Equal(t, "low", label)
	assert.Greater(t, p, 0.99)

	proba := nb.PredictProba([]float64{9, 10})
	assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-12)
	assert.Greater(t, proba[0], proba[1])
}

func TestNaiveBayesPopulationVariance(t *testing.T) {
	nb := NewNaiveBayes(0.5)
	require.NoError(t, nb.Fit(
		[][]float64{{10, 10}, {11, 9}, {3, -1}},
		[]string{"high", "high", "low"},
	))
	require.Equal(t, []string{"high", "low"}, nb.Classes())

	assert.InDeltaSlice(t, []float64{10.5, 9.5}, nb.means[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0.75, 0.75}, nb.variances[0], 1e-12, "biased variance plus smoothing")
	assert.InDeltaSlice(t, []float64{3, -1}, nb.means[1], 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, nb.variances[1], 1e-12, "a single instance has only the smoothing")
}

func TestNaiveBayesFitErrors(t *testing.T) {
	nb := NewNaiveBayes(DefaultVarSmoothing)
	assert.Error(t, nb.Fit(nil, nil))
	assert.Error(t, nb.Fit([][]float64{{1}}, []string{"a", "b"}))
	assert.Error(t, nb.Fit([][]float64{{1}, {1, 2}}, []string{"a", "b"}))
}

func TestBaselineRun(t *testing.T) {
	for _, name := range []string{LabeledOnlyName, AllLabeledName} {
		t.Run(name, func(t *testing.T) {
			alg, err := New(name, &settings.Settings{})
			require.NoError(t, err)
			assert.Equal(t, name, alg.Name())

			data := twoClusterFold()
			result, err := alg.Run(context.Background(), data, 0, 0, false)
			require.NoError(t, err)
			assert.Equal(t, 3, result.Total())
			assert.Equal(t, 3, result.Correct())
			assert.Nil(t, alg.Classifiers())
			assert.Nil(t, alg.ClassifiersTestData())
			assert.Equal(t, twoClusterFold(), data, "Run must not modify its input")
		})
	}
}

func TestBaselineRecordsClassifiers(t *testing.T) {
	alg := NewBaseline(LabeledOnlyName, false)

	_, err := alg.Run(context.Background(), twoClusterFold(), 2, 1, true)
	require.NoError(t, err)

	train := alg.Classifiers()
	require.Equal(t, 2, train.Len(), "one classifier per view")
	assert.Equal(t, 2, train.Fold)
	assert.Equal(t, 1, train.Split)
	assert.Equal(t, "L_view1", train.Classifiers[1].Name)
	require.Len(t, train.Classifiers[0].Predictions, 2)
	assert.Equal(t, Prediction{ID: "6", Label: "b", Confidence: train.Classifiers[0].Predictions[1].Confidence},
		train.Classifiers[0].Predictions[1])

	test := alg.ClassifiersTestData()
	require.Equal(t, 2, test.Len())
	assert.Len(t, test.Classifiers[0].Predictions, 3)

	t.Run("no unlabeled data yields no training-side ensemble", func(t *testing.T) {
		data := twoClusterFold()
		data.Unlabeled = nil
		_, err := alg.Run(context.Background(), data, 0, 0, true)
		require.NoError(t, err)
		assert.Zero(t, alg.Classifiers().Len())
		assert.Equal(t, 2, alg.ClassifiersTestData().Len())
	})
}

func TestBaselineErrors(t *testing.T) {
	alg := NewBaseline(LabeledOnlyName, false)

	data := twoClusterFold()
	data.Labeled = nil
	_, err := alg.Run(context.Background(), data, 0, 0, false)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = alg.Run(ctx, twoClusterFold(), 0, 0, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	factory := func(s *settings.Settings) (Algorithm, error) { return NewBaseline("X", false), nil }

	require.NoError(t, r.Register("X", factory))
	assert.Error(t, r.Register("X", factory))
	assert.Equal(t, []string{"X"}, r.List())

	_, err := r.New("Y", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownAlgorithm))
	assert.Equal(t, `unknown algorithm "Y"`, errors.UserMessage(err))
	assert.Contains(t, errors.FlattenHints(err), "X")

	require.NoError(t, r.Register("broken", func(*settings.Settings) (Algorithm, error) {
		return nil, errors.New("missing GA settings")
	}))
	_, err = r.New("broken", nil)
	assert.ErrorContains(t, err, "missing GA settings")

	assert.Contains(t, List(), LabeledOnlyName)
	assert.Contains(t, List(), AllLabeledName)
}

func TestSplitInsensitive(t *testing.T) {
	assert.True(t, SplitInsensitive("RSSalg"))
	assert.True(t, SplitInsensitive("RSSalg_best"))
	assert.True(t, SplitInsensitive("Majority_vote_of_Co-training_classifiers_on_test_set"))
	assert.False(t, SplitInsensitive("Co-training"))
	assert.False(t, SplitInsensitive(LabeledOnlyName))

	assert.True(t, Optimized("RSSalg"))
	assert.False(t, Optimized("Majority_vote_of_Co-training_classifiers_on_test_set"))
}

func TestClassifierEnsembleList(t *testing.T) {
	list := NewClassifierEnsembleList()
	list.Add(nil)
	list.Add(&Ensemble{Fold: 0, Split: 0})
	assert.Zero(t, list.Len(), "empty ensembles are skipped")

	list.Add(&Ensemble{Fold: 1, Split: 2, Classifiers: []ClassifierSnapshot{{
		Name: "L_view0",
		Predictions: []Prediction{
			{ID: "7", Label: "a", Confidence: 0.875},
			{ID: "8", Label: "b", Confidence: 0.5},
		},
	}}})
	require.Equal(t, 1, list.Len())

	var buf bytes.Buffer
	require.NoError(t, list.WriteXML(&buf))
	assert.Contains(t, buf.String(), `<Ensemble fold="1" split="2">`)
	assert.Contains(t, buf.String(), `<Prediction id="7" label="a" confidence="0.875"></Prediction>`)

	decoded, err := ReadClassifierEnsembleList(&buf)
	require.NoError(t, err)
	require.Equal(t, 1, decoded.Len())
	assert.Equal(t, list.Ensembles[0], decoded.Ensembles[0])
}
