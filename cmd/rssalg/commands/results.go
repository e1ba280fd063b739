package commands

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/rssalg/rssalg/report"
	"github.com/rssalg/rssalg/results"
)

// ResultsCmd inspects the Results.xml document of a result folder
var ResultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect stored experiment results",
	Long: `Inspect the Results.xml document of a result folder.

Examples:
  rssalg results show ./results
  rssalg results show ./results --format yaml`,
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <result_folder>",
	Short: "Show every experiment group and its measures",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsShow,
}

func init() {
	ResultsCmd.AddCommand(resultsShowCmd)
	resultsShowCmd.Flags().StringP("format", "f", FormatTable, "Output format: table, json or yaml")
}

// groupView is the JSON/YAML form of an experiment group. Undefined standard
// deviations are omitted since neither format has a portable NaN.
type groupView struct {
	Properties  map[string]string `json:"properties" yaml:"properties"`
	Experiments []experimentView  `json:"experiments" yaml:"experiments"`
}

type experimentView struct {
	Name     string        `json:"name" yaml:"name"`
	Measures []measureView `json:"measures" yaml:"measures"`
}

type measureView struct {
	Name          string   `json:"name" yaml:"name"`
	MicroAveraged float64  `json:"micro_averaged" yaml:"micro_averaged"`
	MacroAveraged float64  `json:"macro_averaged" yaml:"macro_averaged"`
	StdDev        *float64 `json:"std_dev,omitempty" yaml:"std_dev,omitempty"`
}

func runResultsShow(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	doc, err := results.Load(results.Path(args[0]))
	if err != nil {
		return err
	}
	if format == FormatTable {
		return report.Document(cmd.OutOrStdout(), doc)
	}
	return encode(cmd.OutOrStdout(), format, documentView(doc))
}

func documentView(doc *results.Document) []groupView {
	groups := make([]groupView, 0, len(doc.Groups))
	for _, g := range doc.Groups {
		gv := groupView{Properties: g.PropertyMap()}
		for _, e := range g.Experiments {
			ev := experimentView{Name: e.Name}
			for _, m := range e.Measures {
				mv := measureView{Name: m.Name, MicroAveraged: m.MicroAveraged, MacroAveraged: m.MacroAveraged}
				if !math.IsNaN(m.StdDev) {
					std := m.StdDev
					mv.StdDev = &std
				}
				ev.Measures = append(ev.Measures, mv)
			}
			gv.Experiments = append(gv.Experiments, ev)
		}
		groups = append(groups, gv)
	}
	return groups
}
