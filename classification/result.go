// Package classification records the outcome of classifying a test set and
// computes the named measures reported for an experiment.
package classification

import (
	"sort"
)

// Result is a confusion matrix keyed by class name. Results from different
// folds and splits are pooled with Merge to form the micro-averaged result.
type Result struct {
	classes []string
	counts  map[string]map[string]int // actual -> predicted -> count
	total   int
}

// NewResult creates an empty result over the given classes. Classes that
// only show up while recording are added on the fly.
func NewResult(classNames []string) *Result {
	r := &Result{counts: make(map[string]map[string]int)}
	for _, c := range classNames {
		r.addClass(c)
	}
	return r
}

func (r *Result) addClass(c string) {
	if _, ok := r.counts[c]; ok {
		return
	}
	r.counts[c] = make(map[string]int)
	i := sort.SearchStrings(r.classes, c)
	r.classes = append(r.classes, "")
	copy(r.classes[i+1:], r.classes[i:])
	r.classes[i] = c
}

// Record adds one classified instance
func (r *Result) Record(actual, predicted string) {
	r.addClass(actual)
	r.addClass(predicted)
	r.counts[actual][predicted]++
	r.total++
}

// Merge pools other into r. Pooling is commutative and associative, so the
// micro-averaged result does not depend on fold or split order.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	for _, c := range other.classes {
		r.addClass(c)
	}
	for actual, row := range other.counts {
		for predicted, n := range row {
			r.counts[actual][predicted] += n
		}
	}
	r.total += other.total
}

// Classes returns the sorted class names
func (r *Result) Classes() []string {
	return append([]string(nil), r.classes...)
}

// HasClass reports whether c is one of the result's classes
func (r *Result) HasClass(c string) bool {
	_, ok := r.counts[c]
	return ok
}

// Total returns the number of recorded instances
func (r *Result) Total() int {
	return r.total
}

// Count returns how many instances of class actual were predicted as predicted
func (r *Result) Count(actual, predicted string) int {
	return r.counts[actual][predicted]
}

// Correct returns the number of instances on the diagonal
func (r *Result) Correct() int {
	n := 0
	for c, row := range r.counts {
		n += row[c]
	}
	return n
}

// TruePositives counts instances of c predicted as c
func (r *Result) TruePositives(c string) int {
	return r.counts[c][c]
}

// FalsePositives counts other classes predicted as c
func (r *Result) FalsePositives(c string) int {
	n := 0
	for actual, row := range r.counts {
		if actual != c {
			n += row[c]
		}
	}
	return n
}

// FalseNegatives counts instances of c predicted as something else
func (r *Result) FalseNegatives(c string) int {
	n := 0
	for predicted, count := range r.counts[c] {
		if predicted != c {
			n += count
		}
	}
	return n
}
