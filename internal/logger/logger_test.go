package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies flag values map onto zap levels and unknown values are rejected.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	_, ok := ParseLogLevel("loud")
	require.False(t, ok)
}

// TestContextHelpers checks the context carries a named logger with attached fields.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewConsole(&buf, zapcore.DebugLevel))
	ctx = WithName(ctx, "tauri-release")
	ctx = WithKV(ctx, "run_id", "abc")
	ctx = WithFields(ctx, zap.String("step", "build"))

	InfoKV(ctx, "Step started", "index", 1)

	out := buf.String()
	require.Contains(t, out, "tauri-release")
	require.Contains(t, out, "Step started")
	require.Contains(t, out, `"run_id": "abc"`)
	require.Contains(t, out, `"step": "build"`)
}

// TestFromContext_FallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}
