package algorithm

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/rssalg/rssalg/errors"
)

// DefaultVarSmoothing is added to every per-class feature variance
const DefaultVarSmoothing = 1e-6

// NaiveBayes is a Gaussian naive Bayes classifier over numeric features
type NaiveBayes struct {
	VarSmoothing float64

	classes   []string
	logPriors []float64
	means     [][]float64 // class -> feature
	variances [][]float64 // class -> feature
}

// NewNaiveBayes creates an untrained classifier
func NewNaiveBayes(varSmoothing float64) *NaiveBayes {
	return &NaiveBayes{VarSmoothing: varSmoothing}
}

// Fit estimates class priors and per-class feature means and variances
func (nb *NaiveBayes) Fit(X [][]float64, y []string) error {
	if len(X) == 0 {
		return errors.New("cannot train naive Bayes on an empty training set")
	}
	if len(X) != len(y) {
		return errors.Newf("training set has %d rows but %d labels", len(X), len(y))
	}
	nFeatures := len(X[0])

	byClass := make(map[string][]int)
	for i, label := range y {
		if len(X[i]) != nFeatures {
			return errors.Newf("row %d has %d features, expected %d", i, len(X[i]), nFeatures)
		}
		byClass[label] = append(byClass[label], i)
	}

	nb.classes = make([]string, 0, len(byClass))
	for c := range byClass {
		nb.classes = append(nb.classes, c)
	}
	sort.Strings(nb.classes)

	nb.logPriors = make([]float64, len(nb.classes))
	nb.means = make([][]float64, len(nb.classes))
	nb.variances = make([][]float64, len(nb.classes))

	for k, c := range nb.classes {
		rows := byClass[c]
		nb.logPriors[k] = math.Log(float64(len(rows)) / float64(len(y)))

		mean := make([]float64, nFeatures)
		variance := make([]float64, nFeatures)
		column := make([]float64, len(rows))
		for j := 0; j < nFeatures; j++ {
			for r, i := range rows {
				column[r] = X[i][j]
			}
			m, v := stat.PopMeanVariance(column, nil)
			mean[j] = m
			variance[j] = v + nb.VarSmoothing
		}

		nb.means[k] = mean
		nb.variances[k] = variance
	}
	return nil
}

// Classes returns the classes seen during training, sorted
func (nb *NaiveBayes) Classes() []string {
	return nb.classes
}

// LogLikelihoods returns the unnormalised log posterior of every class
func (nb *NaiveBayes) LogLikelihoods(x []float64) []float64 {
	out := make([]float64, len(nb.classes))
	for k := range nb.classes {
		lp := nb.logPriors[k]
		for j, v := range x {
			lp += logGaussianPDF(v, nb.means[k][j], nb.variances[k][j])
		}
		out[k] = lp
	}
	return out
}

// PredictProba returns the normalised class probabilities for x
func (nb *NaiveBayes) PredictProba(x []float64) []float64 {
	return softmax(nb.LogLikelihoods(x))
}

// Predict returns the most probable class and its probability
func (nb *NaiveBayes) Predict(x []float64) (string, float64) {
	proba := nb.PredictProba(x)
	k := argmax(proba)
	return nb.classes[k], proba[k]
}

func logGaussianPDF(x, mean, variance float64) float64 {
	d := x - mean
	return -0.5*math.Log(2*math.Pi*variance) - d*d/(2*variance)
}

func softmax(logProbs []float64) []float64 {
	maxLog := math.Inf(-1)
	for _, lp := range logProbs {
		if lp > maxLog {
			maxLog = lp
		}
	}
	out := make([]float64, len(logProbs))
	sum := 0.0
	for i, lp := range logProbs {
		out[i] = math.Exp(lp - maxLog)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// argmax returns the first index of the largest value
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
