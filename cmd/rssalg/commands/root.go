package commands

import (
	"github.com/spf13/cobra"

	"github.com/rssalg/rssalg/errors"
	"github.com/rssalg/rssalg/logger"
)

// NewRootCmd builds the rssalg command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rssalg <properties_folder> <experiment_properties>",
		Short: "rssalg - cross-validation driver for co-training experiments",
		Long: `rssalg - cross-validation driver for co-training experiments.

Reads data.properties, cv.properties, co-training.properties, GA.properties and
the given experiment file from <properties_folder>, builds (or reuses) the
cross-validation folds, runs the configured algorithm on every fold and split
and merges the micro and macro averaged measures into Results.xml.

Available commands:
  folds    - Build the cross-validation folds only
  results  - Inspect Results.xml
  history  - List recorded runs
  settings - Inspect the effective configuration
  version  - Show version information

A properties folder named like one of these commands is taken as the command;
pass it with a path prefix instead, e.g. rssalg ./results experiment.properties

Examples:
  rssalg ./properties experiment_L.properties        # Run an experiment
  rssalg -v ./properties experiment_L.properties     # ... with info logging
  rssalg --json ./properties experiment_L.properties # ... as JSON events
  rssalg results show ./results                      # Show stored results`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize global logger before any command runs
			if err := logger.Initialize(jsonOutput(cmd), verbosity(cmd)); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			return nil
		},
		RunE: RunRoot,
	}

	// Add global flags
	root.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	root.PersistentFlags().Bool("json", false, "Emit JSON progress events and JSON output")

	// Add commands
	root.AddCommand(FoldsCmd)
	root.AddCommand(ResultsCmd)
	root.AddCommand(HistoryCmd)
	root.AddCommand(SettingsCmd)
	root.AddCommand(VersionCmd)

	return root
}
