package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rssalg/rssalg/cv"
	"github.com/rssalg/rssalg/dataset"
	"github.com/rssalg/rssalg/logger"
	"github.com/rssalg/rssalg/settings"
)

// FoldsCmd prepares the cross-validation folds without running an algorithm
var FoldsCmd = &cobra.Command{
	Use:   "folds <properties_folder> <experiment_properties>",
	Short: "Build the cross-validation folds",
	Long: `Build fold_0 ... fold_{k-1} in the result folder from dataFile.

With loadPresetExperiment set the existing folds are only counted; --rebuild
ignores the setting and builds them again.

Examples:
  rssalg folds ./properties experiment_L.properties
  rssalg folds ./properties experiment_L.properties --rebuild`,
	Args: cobra.ExactArgs(2),
	RunE: runFolds,
}

var foldsRebuildFlag bool

func init() {
	FoldsCmd.Flags().BoolVar(&foldsRebuildFlag, "rebuild", false, "Rebuild the folds even when loadPresetExperiment is set")
}

func runFolds(cmd *cobra.Command, args []string) error {
	s, err := settings.Load(args[0], args[1])
	if err != nil {
		return err
	}
	if foldsRebuildFlag {
		s.Dataset.LoadPresetExperiment = false
	}

	store := dataset.NewFoldStore(s.Dataset.ResultFolder)
	n, err := cv.PrepareExperiment(cmd.Context(), s, store, logger.ComponentLogger("folds"))
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return encode(cmd.OutOrStdout(), FormatJSON, map[string]interface{}{
			"folds":  n,
			"folder": store.Root,
			"preset": s.Dataset.LoadPresetExperiment,
		})
	}
	pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("%d folds in %s", n, store.Root)
	return nil
}
