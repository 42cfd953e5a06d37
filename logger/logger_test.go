package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNopLoggerBeforeInitialize(t *testing.T) {
	// Must not panic even though Initialize was never called.
	Logger.Infow("registration", "capability", "Clone")
}

func TestVerbosityToLevel(t *testing.T) {
	cases := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{0, zapcore.WarnLevel},
		{1, zapcore.InfoLevel},
		{2, zapcore.DebugLevel},
		{3, zapcore.DebugLevel},
		{7, zapcore.DebugLevel},
	}
	for _, c := range cases {
		if got := VerbosityToLevel(c.verbosity); got != c.want {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", c.verbosity, got, c.want)
		}
	}
}

func TestInitializeJSON(t *testing.T) {
	if err := Initialize(true); err != nil {
		t.Fatalf("Initialize(true) returned error: %v", err)
	}
	if !JSONOutput {
		t.Error("JSONOutput should be true after Initialize(true)")
	}
	Logger.Debugw("suppressed at info level")
}
