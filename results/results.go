// Package results reads and writes Results.xml, the document that collects
// the measures of every experiment run against a result folder. Experiments
// are grouped by the configuration properties they were run with, so runs
// with different cross-validation setups never overwrite each other.
package results

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"sort"

	"github.com/rssalg/rssalg/errors"
)

// FileName is the results document inside the result folder
const FileName = "Results.xml"

// Document is the whole results file
type Document struct {
	XMLName xml.Name       `xml:"ExperimentResults"`
	Groups  []*Experiments `xml:"Experiments"`
}

// Experiments is a group of experiments sharing configuration properties
type Experiments struct {
	Properties  []Property    `xml:"Properties>Property"`
	Experiments []*Experiment `xml:"Experiment"`
}

// Property is one configuration key/value identifying a group
type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Experiment holds the measures of one algorithm configuration
type Experiment struct {
	Name     string     `xml:"name,attr"`
	Measures []*Measure `xml:"Measure"`
}

// Measure is the aggregate of one measure over the folds. StdDev is NaN when
// it could not be computed.
type Measure struct {
	Name          string  `xml:"name,attr"`
	MicroAveraged float64 `xml:"microAveraged,attr"`
	MacroAveraged float64 `xml:"macroAveraged,attr"`
	StdDev        float64 `xml:"stdDev,attr"`
}

// Path returns the location of the results document in a result folder
func Path(resultFolder string) string {
	return filepath.Join(resultFolder, FileName)
}

// Load reads a results document. A missing file yields an empty document;
// an unreadable or malformed one is an error.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Document{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &Document{}, nil
	}

	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &doc, nil
}

// Save writes the whole document. The file is written next to its final
// location and renamed into place so a failed write leaves the previous
// document intact.
func (d *Document) Save(path string) (err error) {
	data, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode results")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+FileName+".*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary results file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.WriteString(xml.Header); err != nil {
		return errors.Wrap(err, "failed to write results")
	}
	if _, err = tmp.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, "failed to write results")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close results")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to replace %s", path)
	}
	return nil
}

// FindExperimentsByProperties returns the group whose properties equal props,
// creating it when none matches
func (d *Document) FindExperimentsByProperties(props map[string]string) *Experiments {
	for _, g := range d.Groups {
		if g.matches(props) {
			return g
		}
	}
	g := &Experiments{Properties: sortedProperties(props)}
	d.Groups = append(d.Groups, g)
	return g
}

// LookupExperiments returns the group whose properties equal props, if any
func (d *Document) LookupExperiments(props map[string]string) (*Experiments, bool) {
	for _, g := range d.Groups {
		if g.matches(props) {
			return g, true
		}
	}
	return nil, false
}

func (g *Experiments) matches(props map[string]string) bool {
	if len(g.Properties) != len(props) {
		return false
	}
	for _, p := range g.Properties {
		if v, ok := props[p.Name]; !ok || v != p.Value {
			return false
		}
	}
	return true
}

func sortedProperties(props map[string]string) []Property {
	out := make([]Property, 0, len(props))
	for name, value := range props {
		out = append(out, Property{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PropertyMap returns the group's properties as a map
func (g *Experiments) PropertyMap() map[string]string {
	out := make(map[string]string, len(g.Properties))
	for _, p := range g.Properties {
		out[p.Name] = p.Value
	}
	return out
}

// FindExperiment returns the named experiment, creating it when missing
func (g *Experiments) FindExperiment(name string) *Experiment {
	for _, e := range g.Experiments {
		if e.Name == name {
			return e
		}
	}
	e := &Experiment{Name: name}
	g.Experiments = append(g.Experiments, e)
	return e
}

// FindMeasure returns the named measure, creating it when missing. A rerun
// updates the existing entry instead of adding a second one.
func (e *Experiment) FindMeasure(name string) *Measure {
	for _, m := range e.Measures {
		if m.Name == name {
			return m
		}
	}
	m := &Measure{Name: name}
	e.Measures = append(e.Measures, m)
	return m
}
