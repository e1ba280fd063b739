package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across rssalg.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Experiment coordinates
	FieldRunID      = "run_id"
	FieldExperiment = "experiment"
	FieldAlgorithm  = "algorithm"
	FieldSplitter   = "splitter"
	FieldFold       = "fold"
	FieldSplit      = "split"
	FieldMeasure    = "measure"
	FieldValue      = "value"

	// Components
	FieldComponent = "component"
	FieldCategory  = "category"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"
	FieldSize  = "size"

	// Files and paths
	FieldPath = "path"
	FieldFile = "file"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	n, err := cv.PrepareExperiment(ctx, s, store, logger.ComponentLogger("folds"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	foldLogger := logger.ChildLogger(base, logger.FieldFold, i)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
