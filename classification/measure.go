package classification

import (
	"strings"

	"github.com/rssalg/rssalg/errors"
)

// Measure names. Per-class measures are written as <prefix><class>, for
// example F-measure_spam.
const (
	AccuracyName      = "Accuracy"
	MacroFMeasureName = "Macro_F-measure"
	PrecisionPrefix   = "Precision_"
	RecallPrefix      = "Recall_"
	FMeasurePrefix    = "F-measure_"
)

// Measure is a named scalar computed from a result. Values are percentages.
type Measure interface {
	Name() string
	Compute(r *Result) (float64, error)
}

// ParseMeasures parses a comma separated list such as
// "Accuracy, F-measure_spam". Duplicates are dropped, order is kept.
func ParseMeasures(list string) ([]Measure, error) {
	var measures []Measure
	seen := make(map[string]bool)
	for _, raw := range strings.Split(list, ",") {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		m, err := MeasureByName(name)
		if err != nil {
			return nil, err
		}
		seen[name] = true
		measures = append(measures, m)
	}
	if len(measures) == 0 {
		return nil, errors.Mark(errors.Newf("no measures in %q", list), errors.ErrUnknownMeasure)
	}
	return measures, nil
}

// MeasureByName resolves a single measure name
func MeasureByName(name string) (Measure, error) {
	switch {
	case name == AccuracyName:
		return Accuracy{}, nil
	case name == MacroFMeasureName:
		return MacroFMeasure{}, nil
	case strings.HasPrefix(name, PrecisionPrefix) && len(name) > len(PrecisionPrefix):
		return Precision{Class: strings.TrimPrefix(name, PrecisionPrefix)}, nil
	case strings.HasPrefix(name, RecallPrefix) && len(name) > len(RecallPrefix):
		return Recall{Class: strings.TrimPrefix(name, RecallPrefix)}, nil
	case strings.HasPrefix(name, FMeasurePrefix) && len(name) > len(FMeasurePrefix):
		return FMeasure{Class: strings.TrimPrefix(name, FMeasurePrefix)}, nil
	}
	return nil, errors.WithHint(
		errors.Mark(errors.Newf("unknown measure %q", name), errors.ErrUnknownMeasure),
		"known measures: "+strings.Join(MeasureNames(), ", "),
	)
}

// MeasureNames lists the accepted measure names; <class> stands for any class value
func MeasureNames() []string {
	return []string{
		AccuracyName,
		MacroFMeasureName,
		PrecisionPrefix + "<class>",
		RecallPrefix + "<class>",
		FMeasurePrefix + "<class>",
	}
}

// Accuracy is the percentage of correctly classified instances
type Accuracy struct{}

func (Accuracy) Name() string { return AccuracyName }

func (Accuracy) Compute(r *Result) (float64, error) {
	if r.Total() == 0 {
		return 0, errors.New("cannot compute Accuracy: no classified instances")
	}
	return 100 * float64(r.Correct()) / float64(r.Total()), nil
}

// Precision of one class
type Precision struct{ Class string }

func (p Precision) Name() string { return PrecisionPrefix + p.Class }

func (p Precision) Compute(r *Result) (float64, error) {
	if err := requireClass(r, p.Name(), p.Class); err != nil {
		return 0, err
	}
	return 100 * precision(r, p.Class), nil
}

// Recall of one class
type Recall struct{ Class string }

func (m Recall) Name() string { return RecallPrefix + m.Class }

func (m Recall) Compute(r *Result) (float64, error) {
	if err := requireClass(r, m.Name(), m.Class); err != nil {
		return 0, err
	}
	return 100 * recall(r, m.Class), nil
}

// FMeasure is the harmonic mean of precision and recall of one class
type FMeasure struct{ Class string }

func (f FMeasure) Name() string { return FMeasurePrefix + f.Class }

func (f FMeasure) Compute(r *Result) (float64, error) {
	if err := requireClass(r, f.Name(), f.Class); err != nil {
		return 0, err
	}
	return 100 * fMeasure(r, f.Class), nil
}

// MacroFMeasure is the unweighted mean of the per-class F-measures
type MacroFMeasure struct{}

func (MacroFMeasure) Name() string { return MacroFMeasureName }

func (MacroFMeasure) Compute(r *Result) (float64, error) {
	classes := r.Classes()
	if len(classes) == 0 {
		return 0, errors.New("cannot compute Macro_F-measure: result has no classes")
	}
	sum := 0.0
	for _, c := range classes {
		sum += fMeasure(r, c)
	}
	return 100 * sum / float64(len(classes)), nil
}

func requireClass(r *Result, measure, class string) error {
	if !r.HasClass(class) {
		return errors.Mark(errors.Newf("%s: class %q is not in the data", measure, class), errors.ErrUnknownMeasure)
	}
	return nil
}

func precision(r *Result, c string) float64 {
	tp := r.TruePositives(c)
	return safeDivide(float64(tp), float64(tp+r.FalsePositives(c)))
}

func recall(r *Result, c string) float64 {
	tp := r.TruePositives(c)
	return safeDivide(float64(tp), float64(tp+r.FalseNegatives(c)))
}

func fMeasure(r *Result, c string) float64 {
	p, rc := precision(r, c), recall(r, c)
	return safeDivide(2*p*rc, p+rc)
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
