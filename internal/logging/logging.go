// Package logging sets up the application wide structured loggers.
package logging

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var structuredLogger *slog.Logger

// Init initializes the logging system. Structured JSON output goes to
// stdout and becomes the process default logger.
func Init() {
	structuredHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	structuredLogger = slog.New(structuredHandler)

	slog.SetDefault(structuredLogger)
}

// SetLevel sets the minimum logging level for the default structured logger.
func SetLevel(level slog.Level) {
	structuredHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	structuredLogger = slog.New(structuredHandler)
	slog.SetDefault(structuredLogger)
}

// NewFileLogger creates a service-scoped slog.Logger writing JSON to a
// rotating log file. The returned close function flushes and closes the
// underlying file.
func NewFileLogger(path, service string, level slog.Leveler) (*slog.Logger, func() error, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	}

	handler := slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("service", service)

	return logger, rotator.Close, nil
}
