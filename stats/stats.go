// Package stats aggregates per-fold measure values into the micro- and
// macro-averaged figures stored for an experiment.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rssalg/rssalg/errors"
)

// ErrInsufficientFolds is returned when a standard deviation is requested
// over fewer than two folds.
var ErrInsufficientFolds = errors.ErrInsufficientFolds

// Summary is the aggregate of one measure
type Summary struct {
	Measure string
	Micro   float64
	Mean    float64
	StdDev  float64 // NaN when undefined
	Folds   int
}

// HasStdDev reports whether the standard deviation is defined
func (s Summary) HasStdDev() bool {
	return !math.IsNaN(s.StdDev)
}

// MacroAverage returns the mean and the sample standard deviation (N-1
// degrees of freedom) of the per-fold values. For a single fold the mean is
// returned together with a NaN deviation and ErrInsufficientFolds.
func MacroAverage(values []float64) (mean, stdDev float64, err error) {
	switch len(values) {
	case 0:
		return math.NaN(), math.NaN(), errors.New("cannot macro-average an empty fold table")
	case 1:
		return values[0], math.NaN(), errors.Wrap(ErrInsufficientFolds, "standard deviation needs at least 2 folds")
	}
	mean, stdDev = stat.MeanStdDev(values, nil)
	return mean, stdDev, nil
}

// Table holds measure values indexed by measure and fold. With several splits
// per fold a cell either keeps the last split's value or the mean over
// splits, see NewTable.
type Table struct {
	folds     int
	splitMean bool
	values    map[string][][]float64 // measure -> fold -> split values
}

// NewTable creates a table for the given number of folds. When splitMean is
// false a later Set on the same cell replaces the earlier value.
func NewTable(folds int, splitMean bool) *Table {
	return &Table{folds: folds, splitMean: splitMean, values: make(map[string][][]float64)}
}

// Set stores the value of measure on fold
func (t *Table) Set(measure string, fold int, value float64) error {
	if fold < 0 || fold >= t.folds {
		return errors.Newf("fold %d out of range [0, %d)", fold, t.folds)
	}
	cells, ok := t.values[measure]
	if !ok {
		cells = make([][]float64, t.folds)
		t.values[measure] = cells
	}
	if t.splitMean {
		cells[fold] = append(cells[fold], value)
	} else {
		cells[fold] = []float64{value}
	}
	return nil
}

// Column returns the per-fold values of measure. Folds without a value are
// an error since the macro average would silently be taken over fewer folds.
func (t *Table) Column(measure string) ([]float64, error) {
	cells, ok := t.values[measure]
	if !ok {
		return nil, errors.Newf("no values recorded for %s", measure)
	}
	column := make([]float64, t.folds)
	for fold, splits := range cells {
		if len(splits) == 0 {
			return nil, errors.Newf("no value recorded for %s on fold %d", measure, fold)
		}
		column[fold] = stat.Mean(splits, nil)
	}
	return column, nil
}

// Summarize combines the micro-averaged value with the macro statistics of
// the measure's column. ErrInsufficientFolds is returned alongside a usable
// summary; callers decide whether to treat it as fatal.
func (t *Table) Summarize(measure string, micro float64) (Summary, error) {
	column, err := t.Column(measure)
	if err != nil {
		return Summary{}, err
	}
	mean, stdDev, err := MacroAverage(column)
	return Summary{Measure: measure, Micro: micro, Mean: mean, StdDev: stdDev, Folds: len(column)}, err
}
