package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
		wantLevel  zapcore.Level
	}{
		{
			name:       "JSON output mode",
			jsonOutput: true,
			verbosity:  VerbosityInfo,
			wantLevel:  zapcore.InfoLevel,
		},
		{
			name:       "Console output mode",
			jsonOutput: false,
			verbosity:  VerbosityUser,
			wantLevel:  zapcore.WarnLevel,
		},
		{
			name:       "Console debug mode",
			jsonOutput: false,
			verbosity:  VerbosityDebug,
			wantLevel:  zapcore.DebugLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			if err := Initialize(tt.jsonOutput, tt.verbosity); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}

			if Logger == nil {
				t.Fatal("Initialize() did not set global Logger")
			}
			if JSONOutput != tt.jsonOutput {
				t.Errorf("Initialize() JSONOutput = %v, want %v", JSONOutput, tt.jsonOutput)
			}
			if !Logger.Desugar().Core().Enabled(tt.wantLevel) {
				t.Errorf("level %v should be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && Logger.Desugar().Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level %v should be disabled", tt.wantLevel-1)
			}

			Logger.Sync()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{7, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		if got := VerbosityToLevel(tt.verbosity); got != tt.want {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestLevelName(t *testing.T) {
	if got := LevelName(VerbosityInfo); got != "Info (-v)" {
		t.Errorf("LevelName(1) = %q", got)
	}
	if got := LevelName(5); got != "Debug (-vv+)" {
		t.Errorf("LevelName(5) = %q", got)
	}
}

func TestHelpersWithNilLogger(t *testing.T) {
	Logger = nil
	defer func() { Logger = zap.NewNop().Sugar() }()

	// Must not panic
	Infow("message", FieldFold, 1)
	Warnw("message")
	Errorw("message")
	Debugw("message")
	Cleanup()
}
