package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, os.WriteFile(path, []byte("previous line\n"), 0o600))

	logger, closeFn, err := NewLogger(Config{Component: "convert", Level: "info", File: path})
	require.NoError(t, err)

	logger.Debug("hidden")
	TableSuccess(logger, "clients", 3, 1500*time.Millisecond)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path) //nolint:gosec // test fixture
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2, "log is appended, debug is filtered")
	assert.Equal(t, "previous line", lines[0])
	assert.Contains(t, lines[1], "INFO table written")
	assert.Contains(t, lines[1], `"table": "clients"`)
	assert.Contains(t, lines[1], `"duration": "1.5s"`)
	assert.Contains(t, lines[1], `"component": "convert"`)
	assert.Contains(t, lines[1], `"run_id"`)
}

func TestNewLoggerErrors(t *testing.T) {
	t.Parallel()

	_, _, err := NewLogger(Config{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")})
	assert.Error(t, err)

	_, _, err = NewLogger(Config{File: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestRunIDIsPerLogger(t *testing.T) {
	t.Parallel()

	var a, b strings.Builder
	New(zapcore.AddSync(&a), zapcore.InfoLevel).Info("x")
	New(zapcore.AddSync(&b), zapcore.InfoLevel).Info("x")
	assert.Contains(t, a.String(), `"run_id"`)
	assert.NotEqual(t, runIDOf(t, a.String()), runIDOf(t, b.String()))
}

func runIDOf(t *testing.T, line string) string {
	t.Helper()

	_, rest, ok := strings.Cut(line, `"run_id": "`)
	require.True(t, ok)
	id, _, ok := strings.Cut(rest, `"`)
	require.True(t, ok)
	return id
}

func TestEventHelpers(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	ConversionStart(logger, "convert", "in.xlsx", "out.db")
	RunSummary(logger, "out.db", 2, 10, time.Second)
	Failure(logger, "convert_sheet", errors.New("boom"))
	Warning(logger, "database file has an unusual extension", zap.String("path", "x.data"))

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, "conversion started", entries[0].Message)
	assert.Equal(t, "in.xlsx", entries[0].ContextMap()["source"])

	assert.Equal(t, int64(2), entries[1].ContextMap()["tables"])
	assert.Equal(t, int64(10), entries[1].ContextMap()["rows"])

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "convert_sheet", entries[2].ContextMap()["context"])
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])

	assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
}
