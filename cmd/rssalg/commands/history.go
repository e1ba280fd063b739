package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rssalg/rssalg/db"
	"github.com/rssalg/rssalg/history"
	"github.com/rssalg/rssalg/logger"
	"github.com/rssalg/rssalg/report"
)

// HistoryCmd lists the runs recorded with recordHistory=true
var HistoryCmd = &cobra.Command{
	Use:   "history <result_folder>",
	Short: "List recorded experiment runs",
	Long: `List the runs recorded in <result_folder>/history.db, newest first.

Examples:
  rssalg history ./results
  rssalg history ./results --experiment L_Random --limit 5
  rssalg history ./results --folds --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

var (
	historyExperimentFlag string
	historyLimitFlag      int
	historyFoldsFlag      bool
)

func init() {
	HistoryCmd.Flags().StringVarP(&historyExperimentFlag, "experiment", "e", "", "Only show runs of this experiment")
	HistoryCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 20, "Number of runs to show")
	HistoryCmd.Flags().BoolVar(&historyFoldsFlag, "folds", false, "Include per-fold values (json/yaml only)")
	HistoryCmd.Flags().StringP("format", "f", FormatTable, "Output format: table, json or yaml")
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	path := history.Path(args[0])
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if format == FormatTable {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return err
		}
		return encode(cmd.OutOrStdout(), format, []history.Run{})
	}

	database, err := db.OpenWithMigrations(path, logger.ComponentLogger("db"))
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	tracker := history.NewTracker(database)
	runs, err := tracker.List(cmd.Context(), historyExperimentFlag, historyLimitFlag)
	if err != nil {
		return err
	}

	if format == FormatTable {
		return report.History(cmd.OutOrStdout(), runs)
	}
	if historyFoldsFlag {
		for i := range runs {
			if runs[i].FoldValues, err = tracker.FoldValues(cmd.Context(), runs[i].ID); err != nil {
				return err
			}
		}
	}
	if runs == nil {
		runs = []history.Run{}
	}
	return encode(cmd.OutOrStdout(), format, runs)
}
