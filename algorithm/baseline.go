package algorithm

import (
	"context"
	"fmt"

	"github.com/rssalg/rssalg/classification"
	"github.com/rssalg/rssalg/dataset"
	"github.com/rssalg/rssalg/errors"
)

// Names of the reference algorithms
const (
	// LabeledOnlyName trains on the labeled data only, the lower bound a
	// semi-supervised method has to beat
	LabeledOnlyName = "L"
	// AllLabeledName trains on labeled and unlabeled data with their true
	// labels, the upper bound
	AllLabeledName = "All"
)

// Baseline trains one naive Bayes classifier per view and combines them by
// multiplying their class probabilities
type Baseline struct {
	name         string
	useUnlabeled bool

	classifiers         *Ensemble
	classifiersTestData *Ensemble
}

// NewBaseline creates a baseline. With useUnlabeled the unlabeled data is
// added to the training set using its true labels.
func NewBaseline(name string, useUnlabeled bool) *Baseline {
	return &Baseline{name: name, useUnlabeled: useUnlabeled}
}

// Name implements Algorithm
func (b *Baseline) Name() string { return b.name }

// Classifiers implements Algorithm
func (b *Baseline) Classifiers() *Ensemble { return b.classifiers }

// ClassifiersTestData implements Algorithm
func (b *Baseline) ClassifiersTestData() *Ensemble { return b.classifiersTestData }

// Run implements Algorithm
func (b *Baseline) Run(ctx context.Context, data *dataset.Dataset, fold, split int, record bool) (*classification.Result, error) {
	b.classifiers, b.classifiersTestData = nil, nil

	training := data.Labeled
	if b.useUnlabeled {
		training = append(append([]dataset.Instance(nil), data.Labeled...), data.Unlabeled...)
	}
	if len(training) == 0 {
		return nil, errors.Newf("%s: fold %d has no training data", b.name, fold)
	}
	if data.NoViews() == 0 {
		return nil, errors.Newf("%s: fold %d has no views", b.name, fold)
	}

	labels := make([]string, len(training))
	for i, inst := range training {
		labels[i] = inst.Class
	}

	views := make([]*NaiveBayes, data.NoViews())
	for v := range views {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		X := make([][]float64, len(training))
		for i, inst := range training {
			X[i] = data.ViewFeatures(inst, v)
		}
		nb := NewNaiveBayes(DefaultVarSmoothing)
		if err := nb.Fit(X, labels); err != nil {
			return nil, errors.Wrapf(err, "%s: training view %d", b.name, v)
		}
		views[v] = nb
	}

	result := classification.NewResult(data.ClassNames)
	for _, inst := range data.Test {
		predicted, _ := combine(views, data, inst)
		result.Record(inst.Class, predicted)
	}

	if record {
		b.classifiers = b.snapshot(views, data, data.Unlabeled, fold, split)
		b.classifiersTestData = b.snapshot(views, data, data.Test, fold, split)
	}
	return result, nil
}

// combine sums the per-view log likelihoods, which multiplies the view
// probabilities, and returns the winning class
func combine(views []*NaiveBayes, data *dataset.Dataset, inst dataset.Instance) (string, float64) {
	if len(views) == 1 {
		return views[0].Predict(data.ViewFeatures(inst, 0))
	}
	total := make([]float64, len(views[0].Classes()))
	for v, nb := range views {
		for k, lp := range nb.LogLikelihoods(data.ViewFeatures(inst, v)) {
			total[k] += lp
		}
	}
	proba := softmax(total)
	k := argmax(proba)
	return views[0].Classes()[k], proba[k]
}

func (b *Baseline) snapshot(views []*NaiveBayes, data *dataset.Dataset, instances []dataset.Instance, fold, split int) *Ensemble {
	if len(instances) == 0 {
		return nil
	}
	e := &Ensemble{Fold: fold, Split: split}
	for v, nb := range views {
		c := ClassifierSnapshot{
			Name:        fmt.Sprintf("%s_view%d", b.name, v),
			View:        v,
			Predictions: make([]Prediction, len(instances)),
		}
		for i, inst := range instances {
			label, confidence := nb.Predict(data.ViewFeatures(inst, v))
			c.Predictions[i] = Prediction{ID: inst.ID, Label: label, Confidence: confidence}
		}
		e.Classifiers = append(e.Classifiers, c)
	}
	return e
}
