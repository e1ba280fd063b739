// Package history keeps a ledger of completed cross-validation runs in the
// result folder. Results.xml only holds the latest aggregate per experiment;
// the ledger keeps every run together with its raw per-fold values.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/rssalg/rssalg/errors"
)

// FileName is the ledger database inside the result folder
const FileName = "history.db"

// Path returns the ledger location for a result folder
func Path(resultFolder string) string {
	return filepath.Join(resultFolder, FileName)
}

// Run is one completed experiment run
type Run struct {
	ID             string            `json:"id" yaml:"id"`
	Experiment     string            `json:"experiment" yaml:"experiment"`
	Algorithm      string            `json:"algorithm" yaml:"algorithm"`
	Splitter       string            `json:"splitter,omitempty" yaml:"splitter,omitempty"`
	ResultFolder   string            `json:"result_folder" yaml:"result_folder"`
	Folds          int               `json:"folds" yaml:"folds"`
	Splits         int               `json:"splits" yaml:"splits"`
	MacroAveraging string            `json:"macro_averaging" yaml:"macro_averaging"`
	Properties     map[string]string `json:"properties" yaml:"properties"`
	StartedAt      time.Time         `json:"started_at" yaml:"started_at"`
	Duration       time.Duration     `json:"duration" yaml:"duration"`
	Measures       []MeasureRecord   `json:"measures" yaml:"measures"`
	FoldValues     []FoldValue       `json:"fold_values,omitempty" yaml:"fold_values,omitempty"`
}

// MeasureRecord is the aggregate of one measure. StdDev is nil when undefined.
type MeasureRecord struct {
	Measure       string   `json:"measure" yaml:"measure"`
	MicroAveraged float64  `json:"micro_averaged" yaml:"micro_averaged"`
	MacroAveraged float64  `json:"macro_averaged" yaml:"macro_averaged"`
	StdDev        *float64 `json:"std_dev,omitempty" yaml:"std_dev,omitempty"`
}

// FoldValue is a measure's value on one fold and split
type FoldValue struct {
	Measure string  `json:"measure" yaml:"measure"`
	Fold    int     `json:"fold" yaml:"fold"`
	Split   int     `json:"split" yaml:"split"`
	Value   float64 `json:"value" yaml:"value"`
}

// Tracker records runs in the ledger
type Tracker struct {
	db *sql.DB
}

// NewTracker creates a tracker over an open, migrated database
func NewTracker(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

// Record stores a run with its measures and fold values in one transaction.
// A run without an ID gets a new one.
func (t *Tracker) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	props, err := json.Marshal(run.Properties)
	if err != nil {
		return errors.Wrap(err, "failed to encode run properties")
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin history transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, experiment, algorithm, splitter, result_folder, folds, splits,
			macro_averaging, properties, started_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Experiment, run.Algorithm, run.Splitter, run.ResultFolder,
		run.Folds, run.Splits, run.MacroAveraging, string(props),
		run.StartedAt.UTC(), run.Duration.Milliseconds(),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to record run %s", run.ID)
	}

	for _, m := range run.Measures {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_measures (run_id, measure, micro_averaged, macro_averaged, std_dev)
			VALUES (?, ?, ?, ?, ?)`,
			run.ID, m.Measure, m.MicroAveraged, m.MacroAveraged, m.StdDev,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to record measure %s", m.Measure)
		}
	}

	for _, v := range run.FoldValues {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO fold_measures (run_id, measure, fold, split, value)
			VALUES (?, ?, ?, ?, ?)`,
			run.ID, v.Measure, v.Fold, v.Split, v.Value,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to record %s on fold %d split %d", v.Measure, v.Fold, v.Split)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit history")
	}
	return nil
}

// List returns the most recent runs first, with their aggregated measures.
// Fold values are not loaded. experiment filters by name when not empty.
func (t *Tracker) List(ctx context.Context, experiment string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, experiment, algorithm, splitter, result_folder, folds, splits,
			macro_averaging, properties, started_at, duration_ms
		FROM runs
		WHERE (? = '' OR experiment = ?)
		ORDER BY started_at DESC
		LIMIT ?`, experiment, experiment, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var props string
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Experiment, &r.Algorithm, &r.Splitter, &r.ResultFolder,
			&r.Folds, &r.Splits, &r.MacroAveraging, &props, &r.StartedAt, &durationMS); err != nil {
			return nil, errors.Wrap(err, "failed to scan run")
		}
		if err := json.Unmarshal([]byte(props), &r.Properties); err != nil {
			return nil, errors.Wrapf(err, "run %s has invalid properties", r.ID)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read runs")
	}

	for i := range runs {
		measures, err := t.measures(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Measures = measures
	}
	return runs, nil
}

func (t *Tracker) measures(ctx context.Context, runID string) ([]MeasureRecord, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT measure, micro_averaged, macro_averaged, std_dev
		FROM run_measures
		WHERE run_id = ?
		ORDER BY measure`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query measures of run %s", runID)
	}
	defer rows.Close()

	var out []MeasureRecord
	for rows.Next() {
		var m MeasureRecord
		var std sql.NullFloat64
		if err := rows.Scan(&m.Measure, &m.MicroAveraged, &m.MacroAveraged, &std); err != nil {
			return nil, errors.Wrap(err, "failed to scan measure")
		}
		if std.Valid {
			v := std.Float64
			m.StdDev = &v
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FoldValues returns the raw per-fold values of a run
func (t *Tracker) FoldValues(ctx context.Context, runID string) ([]FoldValue, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT measure, fold, split, value
		FROM fold_measures
		WHERE run_id = ?
		ORDER BY measure, fold, split`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query fold values of run %s", runID)
	}
	defer rows.Close()

	var out []FoldValue
	for rows.Next() {
		var v FoldValue
		if err := rows.Scan(&v.Measure, &v.Fold, &v.Split, &v.Value); err != nil {
			return nil, errors.Wrap(err, "failed to scan fold value")
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
