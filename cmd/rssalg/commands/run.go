package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rssalg/rssalg/algorithm"
	"github.com/rssalg/rssalg/classification"
	"github.com/rssalg/rssalg/cv"
	"github.com/rssalg/rssalg/dataset"
	"github.com/rssalg/rssalg/db"
	"github.com/rssalg/rssalg/errors"
	"github.com/rssalg/rssalg/experiment"
	"github.com/rssalg/rssalg/history"
	"github.com/rssalg/rssalg/logger"
	"github.com/rssalg/rssalg/progress"
	"github.com/rssalg/rssalg/report"
	"github.com/rssalg/rssalg/settings"
	"github.com/rssalg/rssalg/splitter"
)

// GUINotice is printed when rssalg is started without arguments
const GUINotice = "The graphical interface is not part of rssalg. Run an experiment headless:"

// RunRoot handles `rssalg <properties_folder> <experiment_properties>`.
// Any other argument count prints usage and exits cleanly.
func RunRoot(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 2:
		out, err := RunExperiment(cmd.Context(), args[0], args[1], newEmitter(cmd))
		if err != nil {
			return err
		}
		return printOutcome(cmd, out)
	case 0:
		fmt.Fprintln(cmd.OutOrStdout(), GUINotice)
	}
	return cmd.Usage()
}

// RunExperiment loads the configuration from folder, prepares or reuses the
// folds and runs the configured algorithm over them
func RunExperiment(ctx context.Context, folder, experimentFile string, emitter progress.Emitter) (*experiment.Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.ComponentLogger("experiment")

	s, err := settings.Load(folder, experimentFile)
	if err != nil {
		return nil, err
	}
	alg, err := algorithm.New(s.Experiment.Algorithm, s)
	if err != nil {
		return nil, err
	}
	sp, err := splitter.New(s.Experiment.Splitter)
	if err != nil {
		return nil, err
	}
	measures, err := classification.ParseMeasures(s.Experiment.Measures)
	if err != nil {
		return nil, err
	}

	store := dataset.NewFoldStore(s.Dataset.ResultFolder)
	emitter.EmitStage("folds", "Preparing folds in "+store.Root)
	noFolds, err := cv.PrepareExperiment(ctx, s, store, logger.ComponentLogger("folds"))
	if err != nil {
		return nil, err
	}
	emitter.EmitProgress(noFolds, map[string]interface{}{"type": "folds"})

	var tracker *history.Tracker
	if s.Experiment.RecordHistory {
		database, err := db.OpenWithMigrations(history.Path(s.Dataset.ResultFolder), logger.ComponentLogger("db"))
		if err != nil {
			log.Warnw("Run history disabled", logger.FieldError, err.Error())
		} else {
			defer closeDatabase(database)
			tracker = history.NewTracker(database)
		}
	}

	runner := experiment.NewRunner(experiment.Config{
		Settings:  s,
		Algorithm: alg,
		Splitter:  sp,
		Measures:  measures,
		Store:     store,
		Folds:     noFolds,
		History:   tracker,
		Emitter:   emitter,
		Logger:    logger.ComponentLogger("runner"),
	})
	return runner.Run(ctx)
}

func closeDatabase(database *sql.DB) {
	if err := database.Close(); err != nil {
		logger.Warnw("Failed to close history database", logger.FieldError, err.Error())
	}
}

func printOutcome(cmd *cobra.Command, out *experiment.Outcome) error {
	if jsonOutput(cmd) {
		return nil
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	if err := report.Summaries(w, out.Experiment, out.Summaries); err != nil {
		return err
	}
	for _, warning := range out.Warnings {
		pterm.Warning.WithWriter(cmd.ErrOrStderr()).Println(warning)
	}
	return nil
}

// FatalMessage is the single line shown to the user for err; the full chain
// belongs in the log
func FatalMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return "interrupted, no results were written"
	}
	return errors.UserMessage(err)
}
