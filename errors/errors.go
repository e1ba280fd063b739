// Package errors provides error handling for rssalg.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := loadFold(i); err != nil {
//	    return errors.Wrapf(err, "cannot load fold %d", i)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "set loadPresetExperiment=false to rebuild the folds")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapOnce     = crdb.UnwrapOnce
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// Sentinel errors for the experiment pipeline.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrInvalidConfig indicates a property file holds an unusable value
	ErrInvalidConfig = New("invalid configuration")

	// ErrSplitterRequired indicates a multi-split experiment without a feature splitter
	ErrSplitterRequired = New("splitter not specified, cannot run multiple splits experiment")

	// ErrFoldNotFound indicates a fold directory is missing from the result folder
	ErrFoldNotFound = New("fold not found")

	// ErrUnknownAlgorithm indicates no algorithm is registered under the configured name
	ErrUnknownAlgorithm = New("unknown algorithm")

	// ErrUnknownSplitter indicates no splitter is registered under the configured name
	ErrUnknownSplitter = New("unknown splitter")

	// ErrUnknownMeasure indicates a measure name could not be parsed
	ErrUnknownMeasure = New("unknown measure")

	// ErrInsufficientFolds indicates a sample standard deviation over fewer than two folds
	ErrInsufficientFolds = New("sample standard deviation needs at least two folds")
)

// IsConfigError checks if an error is or wraps ErrInvalidConfig
func IsConfigError(err error) bool {
	return err != nil && Is(err, ErrInvalidConfig)
}

// NewConfigError creates an invalid-configuration error with a formatted message
func NewConfigError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidConfig)
}

// Mark tags err so that errors.Is(err, reference) holds without altering its message.
var Mark = crdb.Mark

// UserMessage returns the message of the innermost cause of err.
//
// The command line prints this single line to the user; the full chain,
// including every wrapping layer and stack, stays available through
// Verbose for logs.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return UnwrapAll(err).Error()
}

// Verbose renders the whole causal chain with stack traces.
func Verbose(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", err)
}
