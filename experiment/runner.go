// Package experiment runs a cross-validation experiment: every fold, and
// within it every split, is handed to the configured algorithm; the measures
// are pooled into micro-averaged values and tabulated per fold for the
// macro-averaged mean and standard deviation, then merged into Results.xml.
package experiment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rssalg/rssalg/algorithm"
	"github.com/rssalg/rssalg/classification"
	"github.com/rssalg/rssalg/dataset"
	"github.com/rssalg/rssalg/errors"
	"github.com/rssalg/rssalg/history"
	"github.com/rssalg/rssalg/logger"
	"github.com/rssalg/rssalg/progress"
	"github.com/rssalg/rssalg/results"
	"github.com/rssalg/rssalg/settings"
	"github.com/rssalg/rssalg/splitter"
	"github.com/rssalg/rssalg/stats"
)

// Config wires a runner. Algorithm, Measures and Store are required; the
// rest is optional.
type Config struct {
	Settings  *settings.Settings
	Algorithm algorithm.Algorithm
	Splitter  splitter.Splitter // nil runs every split on the stored views
	Measures  []classification.Measure
	Store     *dataset.FoldStore
	Folds     int              // 0 asks the store
	History   *history.Tracker // nil disables the run ledger
	Emitter   progress.Emitter
	Logger    *zap.SugaredLogger
}

// Outcome is what a completed run produced
type Outcome struct {
	RunID      string
	Experiment string
	Algorithm  string
	Splitter   string
	Folds      int
	Splits     int
	Summaries  []stats.Summary
	FoldValues []history.FoldValue
	Micro      *classification.Result
	StartedAt  time.Time
	Duration   time.Duration
	Warnings   []string
}

// Runner drives the fold and split loop
type Runner struct {
	cfg     Config
	log     *zap.SugaredLogger
	emitter progress.Emitter
}

// NewRunner creates a runner. A nil logger uses the "runner" component
// logger; a nil emitter discards progress.
func NewRunner(cfg Config) *Runner {
	log := cfg.Logger
	if log == nil {
		log = logger.ComponentLogger("runner")
	}
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = progress.NopEmitter{}
	}
	return &Runner{cfg: cfg, log: log, emitter: emitter}
}

// ExperimentName builds the name results are stored under:
// <algorithm>[_<splitter>][_<optimization measure>_optimized]
func ExperimentName(s *settings.Settings, alg algorithm.Algorithm, sp splitter.Splitter) string {
	name := alg.Name()
	if sp != nil {
		name += "_" + sp.Name()
	}
	if algorithm.Optimized(alg.Name()) {
		name += "_" + s.GA.OptimizationMeasure + "_optimized"
	}
	return name
}

// EffectiveSplits returns the number of splits run per fold
func EffectiveSplits(s *settings.Settings, alg algorithm.Algorithm) int {
	if algorithm.SplitInsensitive(alg.Name()) {
		return 1
	}
	return s.Experiment.NoSplits
}

// Run executes the experiment and stores its measures. Any failure while
// loading folds, splitting, running the algorithm or computing measures
// aborts the run before Results.xml is touched.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	s := r.cfg.Settings
	alg := r.cfg.Algorithm
	sp := r.cfg.Splitter

	noSplits := EffectiveSplits(s, alg)
	if noSplits != s.Experiment.NoSplits {
		r.log.Debugw("Split count forced to 1",
			logger.FieldAlgorithm, alg.Name(),
			"configured", s.Experiment.NoSplits,
		)
	}
	if sp == nil && noSplits > 1 {
		return nil, errors.WithHint(
			errors.Mark(errors.ErrSplitterRequired, errors.ErrInvalidConfig),
			"set splitter in the experiment properties or use noSplits = 1",
		)
	}
	if len(r.cfg.Measures) == 0 {
		return nil, errors.NewConfigError("no measures configured")
	}

	resultsPath := results.Path(s.Dataset.ResultFolder)
	doc, err := results.Load(resultsPath)
	if err != nil {
		return nil, err
	}

	noFolds := r.cfg.Folds
	if noFolds == 0 {
		if noFolds, err = r.cfg.Store.Count(); err != nil {
			return nil, err
		}
	}
	if noFolds == 0 {
		return nil, errors.Newf("no folds found in %s", r.cfg.Store.Root)
	}

	splitMean := s.Experiment.MacroAveraging == settings.MacroSplitMean
	if noSplits > 1 && !splitMean {
		r.log.Warnw("Macro-averaged values use only the last split of each fold",
			"noSplits", noSplits,
			"macroAveraging", s.Experiment.MacroAveraging,
		)
	}

	out := &Outcome{
		RunID:      uuid.NewString(),
		Experiment: ExperimentName(s, alg, sp),
		Algorithm:  alg.Name(),
		Folds:      noFolds,
		Splits:     noSplits,
		Micro:      classification.NewResult(nil),
		StartedAt:  time.Now(),
	}
	if sp != nil {
		out.Splitter = sp.Name()
	}
	log := logger.ChildLogger(r.log, logger.FieldRunID, out.RunID, logger.FieldExperiment, out.Experiment)
	log.Infow("Starting cross-validation", logger.FieldCount, noFolds, "splits", noSplits)
	r.emitter.EmitStage("cross-validation", fmt.Sprintf("Starting cross-validation for %s experiment", alg.Name()))

	table := stats.NewTable(noFolds, splitMean)
	for fold := 0; fold < noFolds; fold++ {
		if err := r.runFold(ctx, log, fold, noSplits, out, table); err != nil {
			r.emitter.EmitError(fmt.Sprintf("fold %d", fold), err)
			return nil, err
		}
	}

	for _, m := range r.cfg.Measures {
		micro, err := m.Compute(out.Micro)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot compute micro-averaged %s", m.Name())
		}
		summary, err := table.Summarize(m.Name(), micro)
		if errors.Is(err, stats.ErrInsufficientFolds) {
			log.Warnw("Standard deviation undefined", logger.FieldMeasure, m.Name(), logger.FieldCount, noFolds)
		} else if err != nil {
			return nil, errors.Wrapf(err, "cannot macro-average %s", m.Name())
		}
		out.Summaries = append(out.Summaries, summary)
	}

	group := doc.FindExperimentsByProperties(s.Properties())
	exp := group.FindExperiment(out.Experiment)
	for _, summary := range out.Summaries {
		m := exp.FindMeasure(summary.Measure)
		m.MicroAveraged = summary.Micro
		m.MacroAveraged = summary.Mean
		m.StdDev = summary.StdDev
	}
	if err := doc.Save(resultsPath); err != nil {
		return nil, err
	}
	out.Duration = time.Since(out.StartedAt)

	if s.Experiment.RecordHistory && r.cfg.History != nil {
		if err := r.cfg.History.Record(ctx, historyRun(s, out)); err != nil {
			out.warn(log, "failed to record run history", err)
		}
	}

	log.Infow("Experiment finished", logger.FieldDurationMS, out.Duration.Milliseconds())
	r.emitter.EmitComplete(map[string]interface{}{
		"experiment": out.Experiment,
		"folds":      noFolds,
		"splits":     noSplits,
		"results":    resultsPath,
	})
	return out, nil
}

func (r *Runner) runFold(ctx context.Context, log *zap.SugaredLogger, fold, noSplits int, out *Outcome, table *stats.Table) error {
	s := r.cfg.Settings
	alg := r.cfg.Algorithm
	sp := r.cfg.Splitter
	record := s.Experiment.WriteClassifiers

	r.emitter.EmitStage(fmt.Sprintf("fold %d", fold), "Reading "+r.cfg.Store.FoldDir(fold))
	data, err := r.cfg.Store.Load(fold, s.Dataset.NoViews)
	if err != nil {
		return errors.Wrapf(err, "cannot load fold %d", fold)
	}

	var classifiers, classifiersTest *algorithm.ClassifierEnsembleList
	if record {
		classifiers = algorithm.NewClassifierEnsembleList()
		classifiersTest = algorithm.NewClassifierEnsembleList()
	}

	for split := 0; split < noSplits; split++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		work := data.Clone()

		if sp != nil {
			rng := splitter.SplitRandom(s.Random(), split)
			if err := sp.Split(s.Dataset.NoViews, work, rng, split); err != nil {
				return errors.Wrapf(err, "error creating %s split", sp.Name())
			}
		}

		result, err := alg.Run(ctx, work, fold, split, record)
		if err != nil {
			return errors.Wrapf(err, "%s failed on fold %d split %d", alg.Name(), fold, split)
		}
		if result == nil {
			return errors.Newf("%s returned no result on fold %d split %d", alg.Name(), fold, split)
		}
		out.Micro.Merge(result)

		if record {
			classifiers.Add(alg.Classifiers())
			classifiersTest.Add(alg.ClassifiersTestData())
		}

		for _, m := range r.cfg.Measures {
			value, err := m.Compute(result)
			if err != nil {
				return errors.Wrapf(err, "cannot compute %s on fold %d split %d", m.Name(), fold, split)
			}
			if err := table.Set(m.Name(), fold, value); err != nil {
				return err
			}
			out.FoldValues = append(out.FoldValues, history.FoldValue{Measure: m.Name(), Fold: fold, Split: split, Value: value})
			r.emitter.EmitMeasure(fold, split, m.Name(), value)
		}
		log.Debugw("Split finished",
			logger.FieldFold, fold,
			logger.FieldSplit, split,
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}

	if record {
		r.writeClassifiers(log, fold, classifiers, classifiersTest, out)
	}
	return nil
}

// ClassifierFileNames returns the training-side and test-side classifier
// file names of an experiment
func ClassifierFileNames(alg algorithm.Algorithm, sp splitter.Splitter) (train, test string) {
	suffix := alg.Name()
	if sp != nil {
		suffix += "_" + sp.Name()
	}
	return "classifiers_" + suffix + ".xml", "classifiers_test_" + suffix + ".xml"
}

// writeClassifiers stores the fold's ensembles. Failures are reported as
// warnings; the measures of the run are unaffected.
func (r *Runner) writeClassifiers(log *zap.SugaredLogger, fold int, train, test *algorithm.ClassifierEnsembleList, out *Outcome) {
	trainName, testName := ClassifierFileNames(r.cfg.Algorithm, r.cfg.Splitter)
	dir := r.cfg.Store.FoldDir(fold)

	for _, f := range []struct {
		name string
		list *algorithm.ClassifierEnsembleList
	}{
		{trainName, train},
		{testName, test},
	} {
		if f.list.Len() == 0 {
			continue
		}
		path := filepath.Join(dir, f.name)
		if err := writeEnsembleFile(path, f.list); err != nil {
			out.warn(logger.ChildLogger(log, logger.FieldFold, fold), "error writing classifier statistics file", err)
			continue
		}
		log.Debugw("Wrote classifiers", logger.FieldPath, path, logger.FieldCount, f.list.Len())
	}
}

func writeEnsembleFile(path string, list *algorithm.ClassifierEnsembleList) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()
	return list.WriteXML(file)
}

func (o *Outcome) warn(log *zap.SugaredLogger, msg string, err error) {
	log.Warnw(msg, logger.FieldError, err.Error())
	o.Warnings = append(o.Warnings, msg+": "+errors.UserMessage(err))
}

func historyRun(s *settings.Settings, out *Outcome) *history.Run {
	run := &history.Run{
		ID:             out.RunID,
		Experiment:     out.Experiment,
		Algorithm:      out.Algorithm,
		Splitter:       out.Splitter,
		ResultFolder:   s.Dataset.ResultFolder,
		Folds:          out.Folds,
		Splits:         out.Splits,
		MacroAveraging: s.Experiment.MacroAveraging,
		Properties:     s.Properties(),
		StartedAt:      out.StartedAt,
		Duration:       out.Duration,
		FoldValues:     out.FoldValues,
	}
	for _, summary := range out.Summaries {
		rec := history.MeasureRecord{
			Measure:       summary.Measure,
			MicroAveraged: summary.Micro,
			MacroAveraged: summary.Mean,
		}
		if summary.HasStdDev() {
			std := summary.StdDev
			rec.StdDev = &std
		}
		run.Measures = append(run.Measures, rec)
	}
	return run
}
