// Package logger builds the zap logger used across the CLI.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelForVerbosity maps the repeatable -v count to a log level:
// 0 info, so the saved output path is always reported; 1 and above debug.
func LevelForVerbosity(v int) zapcore.Level {
	if v <= 0 {
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

// New returns a console logger writing to stderr at the level picked by verbosity.
func New(verbosity int) *zap.Logger {
	return NewWithWriter(os.Stderr, verbosity)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, verbosity int) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(LevelForVerbosity(verbosity)),
	)
	opts := []zap.Option{zap.ErrorOutput(zapcore.AddSync(w))}
	if verbosity >= 2 {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...)
}
