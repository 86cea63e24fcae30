package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the shared logger. It discards everything until Init is called.
var Log *zap.Logger = zap.NewNop()

// Init installs a production logger at info level
func Init() {
	if err := InitWithLevel("info", false); err != nil {
		Log = zap.NewNop()
	}
}

// InitWithLevel installs a logger at the given level ("debug", "info", "warn", "error").
// Development mode switches to the human readable console encoder.
func InitWithLevel(level string, development bool) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Log = l
	return nil
}

// Sync flushes buffered log entries
func Sync() {
	_ = Log.Sync()
}
