package progress

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	pterm.DisableStyling()
}

var (
	_ Emitter = (*CLIEmitter)(nil)
	_ Emitter = (*JSONEmitter)(nil)
	_ Emitter = NopEmitter{}
)

func TestCLIEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := NewCLIEmitterTo(&buf, 0)

	e.EmitStage("fold 1", "Reading fold_1")
	e.EmitMeasure(1, 0, "Accuracy", 81.25)
	e.EmitProgress(3, map[string]interface{}{"type": "folds"})
	e.EmitError("split", errors.New("boom"))
	e.EmitComplete(map[string]interface{}{"folds": 3})

	out := buf.String()
	assert.Contains(t, out, "fold 1: Reading fold_1")
	assert.Contains(t, out, "fold 1 split 0  Accuracy = 81.2")
	assert.Contains(t, out, "Processed 3 folds")
	assert.Contains(t, out, "Error in split: boom")
	assert.Contains(t, out, "Experiment finished.")
	assert.NotContains(t, out, "folds: 3", "summary details need verbosity")
}

func TestCLIEmitterVerbosity(t *testing.T) {
	var quiet, verbose bytes.Buffer

	NewCLIEmitterTo(&quiet, 0).EmitInfo("hidden")
	NewCLIEmitterTo(&verbose, 1).EmitInfo("shown")

	assert.Empty(t, quiet.String())
	assert.Contains(t, verbose.String(), "shown")
}

func TestJSONEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := NewJSONEmitterTo(&buf)

	e.EmitStage("prepare", "Creating folds")
	e.EmitMeasure(2, 1, "Accuracy", 75)
	e.EmitProgress(5, map[string]interface{}{"type": "folds"})
	e.EmitError("load", errors.New("fold_2 is missing"))

	var events []Event
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var ev Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.Len(t, events, 4)

	assert.Equal(t, "stage", events[0].Type)
	assert.Equal(t, "Creating folds", events[0].Data["message"])

	assert.Equal(t, "measure", events[1].Type)
	assert.Equal(t, float64(2), events[1].Data["fold"])
	assert.Equal(t, "Accuracy", events[1].Data["measure"])
	assert.Equal(t, float64(75), events[1].Data["value"])

	assert.Equal(t, float64(5), events[2].Data["count"])
	assert.Equal(t, "folds", events[2].Data["type"])

	assert.Equal(t, "error", events[3].Type)
	assert.Equal(t, "fold_2 is missing", events[3].Data["error"])
	assert.False(t, events[3].Timestamp.IsZero())
}
