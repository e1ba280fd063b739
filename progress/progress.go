// Package progress reports the advance of a cross-validation run to the
// terminal or as JSON events.
//
// Implementations include:
// - CLIEmitter: Pretty-printed terminal output using pterm
// - JSONEmitter: Structured JSON events, one per line
// - NopEmitter: Discards everything (tests, library use)
package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"

	"github.com/rssalg/rssalg/report"
)

// Emitter receives progress updates during a run
type Emitter interface {
	// EmitStage announces the start of a processing stage
	EmitStage(stage string, message string)

	// EmitMeasure announces a measure's value on one fold and split
	EmitMeasure(fold, split int, measure string, value float64)

	// EmitProgress announces completed work with optional metadata
	EmitProgress(count int, metadata map[string]interface{})

	// EmitComplete announces successful completion with summary
	EmitComplete(summary map[string]interface{})

	// EmitError announces an error during processing
	EmitError(stage string, err error)

	// EmitInfo emits general informational message
	EmitInfo(message string)
}

// Event is a structured JSON progress event
type Event struct {
	Type      string                 `json:"type"` // "stage", "measure", "progress", "complete", "error", "info"
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// CLIEmitter outputs pretty-printed progress to the terminal using pterm
type CLIEmitter struct {
	w         io.Writer
	verbosity int
}

// NewCLIEmitter creates a terminal emitter writing to stdout
func NewCLIEmitter(verbosity int) *CLIEmitter {
	return NewCLIEmitterTo(os.Stdout, verbosity)
}

// NewCLIEmitterTo creates a terminal emitter writing to w
func NewCLIEmitterTo(w io.Writer, verbosity int) *CLIEmitter {
	return &CLIEmitter{w: w, verbosity: verbosity}
}

// EmitStage prints a stage announcement
func (e *CLIEmitter) EmitStage(stage string, message string) {
	fmt.Fprintf(e.w, "%s: %s\n", pterm.LightCyan(stage), message)
}

// EmitMeasure prints one measure value, indented under its fold
func (e *CLIEmitter) EmitMeasure(fold, split int, measure string, value float64) {
	fmt.Fprintf(e.w, "  fold %d split %d  %s = %s\n", fold, split, measure, pterm.Green(report.FormatValue(value)))
}

// EmitProgress prints a progress count
func (e *CLIEmitter) EmitProgress(count int, metadata map[string]interface{}) {
	if itemType, ok := metadata["type"].(string); ok {
		fmt.Fprintf(e.w, "Processed %s %s\n", pterm.Green(fmt.Sprintf("%d", count)), itemType)
	} else {
		fmt.Fprintf(e.w, "Processed %s items\n", pterm.Green(fmt.Sprintf("%d", count)))
	}
}

// EmitComplete prints completion summary
func (e *CLIEmitter) EmitComplete(summary map[string]interface{}) {
	pterm.Success.WithWriter(e.w).Println("Experiment finished.")
	if e.verbosity >= 1 {
		for key, value := range summary {
			fmt.Fprintf(e.w, "  %s: %v\n", key, value)
		}
	}
}

// EmitError prints an error
func (e *CLIEmitter) EmitError(stage string, err error) {
	pterm.Error.WithWriter(e.w).Printf("Error in %s: %v\n", stage, err)
}

// EmitInfo prints informational message at verbosity 1 and above
func (e *CLIEmitter) EmitInfo(message string) {
	if e.verbosity >= 1 {
		pterm.Info.WithWriter(e.w).Println(message)
	}
}

// JSONEmitter outputs one JSON event per line
type JSONEmitter struct {
	encoder *json.Encoder
}

// NewJSONEmitter creates a JSON emitter writing to stdout
func NewJSONEmitter() *JSONEmitter {
	return NewJSONEmitterTo(os.Stdout)
}

// NewJSONEmitterTo creates a JSON emitter writing to w
func NewJSONEmitterTo(w io.Writer) *JSONEmitter {
	return &JSONEmitter{encoder: json.NewEncoder(w)}
}

func (e *JSONEmitter) emit(eventType string, data map[string]interface{}) {
	e.encoder.Encode(Event{Type: eventType, Timestamp: time.Now(), Data: data})
}

// EmitStage emits a stage event
func (e *JSONEmitter) EmitStage(stage string, message string) {
	e.emit("stage", map[string]interface{}{"stage": stage, "message": message})
}

// EmitMeasure emits a measure event
func (e *JSONEmitter) EmitMeasure(fold, split int, measure string, value float64) {
	e.emit("measure", map[string]interface{}{
		"fold":    fold,
		"split":   split,
		"measure": measure,
		"value":   value,
	})
}

// EmitProgress emits a progress event; metadata is merged into the data
func (e *JSONEmitter) EmitProgress(count int, metadata map[string]interface{}) {
	data := map[string]interface{}{"count": count}
	for k, v := range metadata {
		data[k] = v
	}
	e.emit("progress", data)
}

// EmitComplete emits a completion event
func (e *JSONEmitter) EmitComplete(summary map[string]interface{}) {
	e.emit("complete", summary)
}

// EmitError emits an error event
func (e *JSONEmitter) EmitError(stage string, err error) {
	e.emit("error", map[string]interface{}{"stage": stage, "error": err.Error()})
}

// EmitInfo emits an info event
func (e *JSONEmitter) EmitInfo(message string) {
	e.emit("info", map[string]interface{}{"message": message})
}

// NopEmitter discards all progress
type NopEmitter struct{}

func (NopEmitter) EmitStage(string, string)                 {}
func (NopEmitter) EmitMeasure(int, int, string, float64)    {}
func (NopEmitter) EmitProgress(int, map[string]interface{}) {}
func (NopEmitter) EmitComplete(map[string]interface{})      {}
func (NopEmitter) EmitError(string, error)                  {}
func (NopEmitter) EmitInfo(string)                          {}
