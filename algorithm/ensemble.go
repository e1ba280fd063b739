package algorithm

import (
	"encoding/xml"
	"io"

	"github.com/rssalg/rssalg/errors"
)

// Prediction is one classifier's vote on one instance
type Prediction struct {
	ID         string  `xml:"id,attr"`
	Label      string  `xml:"label,attr"`
	Confidence float64 `xml:"confidence,attr"`
}

// ClassifierSnapshot records what a trained classifier predicted
type ClassifierSnapshot struct {
	Name        string       `xml:"name,attr"`
	View        int          `xml:"view,attr"`
	Predictions []Prediction `xml:"Prediction"`
}

// Ensemble is the set of classifiers produced by one run
type Ensemble struct {
	Fold        int                  `xml:"fold,attr"`
	Split       int                  `xml:"split,attr"`
	Classifiers []ClassifierSnapshot `xml:"Classifier"`
}

// Len returns the number of classifiers
func (e *Ensemble) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Classifiers)
}

// ClassifierEnsembleList collects the ensembles of every split of a fold
type ClassifierEnsembleList struct {
	XMLName   xml.Name    `xml:"ClassifierEnsembleList"`
	Ensembles []*Ensemble `xml:"Ensemble"`
}

// NewClassifierEnsembleList creates an empty list
func NewClassifierEnsembleList() *ClassifierEnsembleList {
	return &ClassifierEnsembleList{}
}

// Add appends an ensemble; nil or empty ensembles are skipped
func (l *ClassifierEnsembleList) Add(e *Ensemble) {
	if e.Len() == 0 {
		return
	}
	l.Ensembles = append(l.Ensembles, e)
}

// Len returns the number of ensembles
func (l *ClassifierEnsembleList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Ensembles)
}

// WriteXML encodes the list as an indented XML document
func (l *ClassifierEnsembleList) WriteXML(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "failed to write classifier list")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(l); err != nil {
		return errors.Wrap(err, "failed to encode classifier list")
	}
	if err := enc.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush classifier list")
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ReadClassifierEnsembleList decodes a list written by WriteXML
func ReadClassifierEnsembleList(r io.Reader) (*ClassifierEnsembleList, error) {
	var l ClassifierEnsembleList
	if err := xml.NewDecoder(r).Decode(&l); err != nil {
		return nil, errors.Wrap(err, "failed to decode classifier list")
	}
	return &l, nil
}
