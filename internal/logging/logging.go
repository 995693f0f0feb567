// Package logging builds the process logger. The TUI owns the terminal, so
// logs go to a file under the state directory.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file inside the state directory.
const FileName = "ieum.log"

// New returns a JSON logger appending to dir/ieum.log at level.
func New(dir, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{filepath.Join(dir, FileName)}
	cfg.ErrorOutputPaths = []string{filepath.Join(dir, FileName)}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// NewOrNop is New, falling back to a no-op logger.
func NewOrNop(dir, level string) *zap.Logger {
	logger, err := New(dir, level)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
