// Package cglog wraps a zap.Logger for claudegrep's --verbose progress
// output (§4.4.1, §4.4.4 "An I/O error on one task is logged if
// verbose"), grounded on the zap.NewProductionConfig /
// zap.NewAtomicLevelAt wiring in codenerd's cmd/nerd.
package cglog

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the small subset of *zap.Logger claudegrep uses. Its
// methods are no-ops on a nil *Logger, and AsEngineLogf lets
// internal/engine's Options.Logf stay a plain function.
type Logger struct {
	z *zap.Logger
}

// New builds a Logger. Debug-level output is enabled only when verbose
// is true; otherwise the logger stays at Info and above.
func New(verbose bool) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "" // progress lines don't need a timestamp prefix
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("cglog: build logger: %w", err)
	}
	return &Logger{z: z}, nil
}

// Sync flushes any buffered log entries; call before process exit.
func (l *Logger) Sync() {
	if l == nil || l.z == nil {
		return
	}
	_ = l.z.Sync()
}

// Progressf emits a debug-level progress line (engine task dispatch,
// per-file scan failures) — visible only under --verbose.
func (l *Logger) Progressf(format string, args ...any) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Sugar().Debugf(format, args...)
}

// Warnf emits a warn-level line, always visible, for conditions the
// search continues past (§7 "logged if verbose, skipped otherwise" for
// I/O errors, but surfaced regardless for config/setup problems).
func (l *Logger) Warnf(format string, args ...any) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Sugar().Warnf(format, args...)
}

// AsEngineLogf adapts Progressf to the func(string, ...any) shape
// expected by engine.Options.Logf.
func (l *Logger) AsEngineLogf() func(string, ...any) {
	return l.Progressf
}
