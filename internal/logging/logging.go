// Package logging builds the application logger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select the logger's verbosity and destination.
type Options struct {
	// Level is one of info, warn, error or none.
	Level string
	// Verbose lowers the level to debug regardless of Level.
	Verbose bool
	// File receives the logs when set; otherwise they go to stderr.
	File string
	// Quiet disables the stderr fallback, for front ends that own the terminal.
	Quiet bool
}

// New returns the logger described by opts and a func that flushes and
// closes its output.
func New(opts Options) (*zap.Logger, func(), error) {
	level, enabled, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if opts.Verbose {
		level, enabled = zapcore.DebugLevel, true
	}
	if !enabled || (opts.File == "" && opts.Quiet) {
		return zap.NewNop(), func() {}, nil
	}

	var (
		sink      zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
		closeSink                     = func() {}
	)
	if opts.File != "" {
		sink, closeSink, err = zap.Open(opts.File)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), sink, level)

	logger := zap.New(core).Named("portkill")
	return logger, func() {
		_ = logger.Sync()
		closeSink()
	}, nil
}

func parseLevel(name string) (zapcore.Level, bool, error) {
	switch name {
	case "", "info":
		return zapcore.InfoLevel, true, nil
	case "warn":
		return zapcore.WarnLevel, true, nil
	case "error":
		return zapcore.ErrorLevel, true, nil
	case "none":
		return zapcore.InfoLevel, false, nil
	default:
		return zapcore.InfoLevel, false, fmt.Errorf("unknown log level %q", name)
	}
}
