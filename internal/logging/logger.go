// Package logging builds the run log sheetdb appends to.
package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config defines the knobs for building the run logger.
type Config struct {
	// Component identifies the command that is running (e.g., "convert").
	Component string
	// Level controls the minimum severity ("debug", "info", "warn", "error").
	Level string
	// File is the log file. Lines are appended; the file is created when
	// missing.
	File string
}

// NewLogger builds a logger that appends one line per event to cfg.File.
// Every entry carries a run_id unique to this logger. The returned function
// flushes and closes the file.
func NewLogger(cfg Config) (*zap.Logger, func() error, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level == "" {
		level.SetLevel(zapcore.InfoLevel)
	} else if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // log path comes from configuration
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := New(zapcore.AddSync(file), level)
	if cfg.Component != "" {
		logger = logger.With(zap.String("component", cfg.Component))
	}

	closeFn := func() error {
		_ = logger.Sync()
		return file.Close()
	}
	return logger, closeFn, nil
}

// New builds the run logger on an arbitrary sink.
func New(sink zapcore.WriteSyncer, level zapcore.LevelEnabler) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), sink, level)
	return zap.New(core).With(zap.String("run_id", uuid.NewString()))
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "message",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout("[2006-01-02 15:04:05]"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// ConversionStart records the start of a run.
func ConversionStart(logger *zap.Logger, direction, source, destination string) {
	logger.Info("conversion started",
		zap.String("direction", direction),
		zap.String("source", source),
		zap.String("destination", destination))
}

// TableSuccess records one table written.
func TableSuccess(logger *zap.Logger, table string, rows int, d time.Duration) {
	logger.Info("table written",
		zap.String("table", table),
		zap.Int("rows", rows),
		zap.Duration("duration", d))
}

// RunSummary records the totals of a finished run.
func RunSummary(logger *zap.Logger, destination string, tables, rows int, d time.Duration) {
	logger.Info("conversion finished",
		zap.String("destination", destination),
		zap.Int("tables", tables),
		zap.Int("rows", rows),
		zap.Duration("duration", d))
}

// Failure records an error together with where it happened.
func Failure(logger *zap.Logger, context string, err error) {
	logger.Error("operation failed", zap.String("context", context), zap.Error(err))
}

// Warning records a condition the run continued past.
func Warning(logger *zap.Logger, message string, fields ...zap.Field) {
	logger.Warn(message, fields...)
}
