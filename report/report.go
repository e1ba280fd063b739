// Package report renders experiment outcomes, the results document and the
// run history as terminal tables.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"github.com/rssalg/rssalg/history"
	"github.com/rssalg/rssalg/results"
	"github.com/rssalg/rssalg/stats"
)

// Undefined is printed for values that could not be computed
const Undefined = "n/a"

// FormatValue prints a measure with at most one decimal, rounding half to
// even ("###.#")
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return decimal.NewFromFloat(v).RoundBank(1).String()
}

// FormatMacro prints "mean +/- stddev", or only the mean when the deviation
// is undefined
func FormatMacro(mean, stdDev float64) string {
	if math.IsNaN(stdDev) {
		return FormatValue(mean)
	}
	return FormatValue(mean) + " +/- " + FormatValue(stdDev)
}

// Summaries renders the aggregates of one experiment
func Summaries(w io.Writer, experiment string, summaries []stats.Summary) error {
	data := pterm.TableData{{"Measure", "Micro averaged", "Macro averaged"}}
	for _, s := range summaries {
		data = append(data, []string{s.Measure, FormatValue(s.Micro), FormatMacro(s.Mean, s.StdDev)})
	}
	if _, err := fmt.Fprintln(w, pterm.Bold.Sprint(experiment)); err != nil {
		return err
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

// Document renders every experiment group of a results document. Groups are
// preceded by their identifying properties.
func Document(w io.Writer, doc *results.Document) error {
	if len(doc.Groups) == 0 {
		_, err := fmt.Fprintln(w, "No results recorded.")
		return err
	}
	for i, g := range doc.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := Group(w, g); err != nil {
			return err
		}
	}
	return nil
}

// Group renders one experiment group
func Group(w io.Writer, g *results.Experiments) error {
	props := g.PropertyMap()
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if props[name] == "" {
			continue
		}
		fmt.Fprintf(w, "%s = %s\n", pterm.Gray(name), props[name])
	}

	data := pterm.TableData{{"Experiment", "Measure", "Micro averaged", "Macro averaged"}}
	for _, e := range g.Experiments {
		for _, m := range e.Measures {
			data = append(data, []string{e.Name, m.Name, FormatValue(m.MicroAveraged), FormatMacro(m.MacroAveraged, m.StdDev)})
		}
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

// History renders the run ledger, one row per run and measure
func History(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	data := pterm.TableData{{"Started", "Run", "Experiment", "Folds", "Splits", "Measure", "Micro", "Macro"}}
	for _, r := range runs {
		started := r.StartedAt.Local().Format("2006-01-02 15:04")
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		if len(r.Measures) == 0 {
			data = append(data, []string{started, id, r.Experiment, fmt.Sprint(r.Folds), fmt.Sprint(r.Splits), "", "", ""})
			continue
		}
		for _, m := range r.Measures {
			std := math.NaN()
			if m.StdDev != nil {
				std = *m.StdDev
			}
			data = append(data, []string{started, id, r.Experiment, fmt.Sprint(r.Folds), fmt.Sprint(r.Splits),
				m.Measure, FormatValue(m.MicroAveraged), FormatMacro(m.MacroAveraged, std)})
		}
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}
