package logger

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// stripANSI removes ANSI color codes from a string for testing
func stripANSI(str string) string {
	ansiRegex := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return ansiRegex.ReplaceAllString(str, "")
}

// The console encoder must never silently drop experiment coordinates.
func TestMinimalEncoderKeepsFields(t *testing.T) {
	encoder := newMinimalEncoder()

	entry := zapcore.Entry{
		Level:      zapcore.WarnLevel,
		Time:       time.Date(2026, 1, 2, 13, 4, 35, 0, time.UTC),
		LoggerName: "runner",
		Message:    "Cannot write classifier file",
	}

	tests := []struct {
		field    zapcore.Field
		mustFind string
	}{
		{zap.Int(FieldFold, 2), "fold=2"},
		{zap.Int(FieldSplit, 0), "split=0"},
		{zap.String(FieldAlgorithm, "L"), "algorithm=L"},
		{zap.Float64(FieldValue, 0.8), "value=0.8"},
		{zap.Bool("recorded", true), "recorded=true"},
		{zap.Error(errors.New("disk full")), "error=disk full"},
	}

	var fields []zapcore.Field
	for _, tt := range tests {
		fields = append(fields, tt.field)
	}

	buf, err := encoder.EncodeEntry(entry, fields)
	require.NoError(t, err)
	output := stripANSI(buf.String())

	assert.Contains(t, output, "13:04:35")
	assert.Contains(t, output, "WARN")
	assert.Contains(t, output, "runner")
	assert.Contains(t, output, "Cannot write classifier file")
	for _, tt := range tests {
		assert.Contains(t, output, tt.mustFind)
	}
}

func TestMinimalEncoderInfoHasNoLevel(t *testing.T) {
	encoder := newMinimalEncoder()

	buf, err := encoder.EncodeEntry(zapcore.Entry{
		Level:   zapcore.InfoLevel,
		Time:    time.Now(),
		Message: "Reading fold",
	}, nil)
	require.NoError(t, err)

	output := stripANSI(buf.String())
	assert.NotContains(t, output, "INFO")
	assert.Contains(t, output, "Reading fold\n")
}

func TestMinimalEncoderWithContext(t *testing.T) {
	encoder := newMinimalEncoder()
	zap.Int(FieldFold, 3).AddTo(encoder)

	clone := encoder.Clone()
	buf, err := clone.EncodeEntry(zapcore.Entry{
		Level:   zapcore.InfoLevel,
		Time:    time.Now(),
		Message: "Split finished",
	}, []zapcore.Field{zap.Int(FieldSplit, 1)})
	require.NoError(t, err)

	output := stripANSI(buf.String())
	assert.Contains(t, output, "fold=3")
	assert.Contains(t, output, "split=1")
}
