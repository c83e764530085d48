// ============================================================================
// sparo - Sparse checkout helper
// ============================================================================
//
// Package:     logging
// Description: Factory functions for the diagnostic logger
// Created:     2026-10-17
// License:     MIT
// ============================================================================

// Package logging builds the logrus logger used for diagnostics.
//
// Diagnostics are separate from user-facing output: commands write to the
// terminal, components log through a logrus.FieldLogger that is quiet
// (warn) unless configured otherwise.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name, added as the "service" field
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: "text" or "json" (default: text)
	Format string

	// Output writer (default: os.Stderr)
	Output io.Writer

	// Additional outputs besides Output
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "warn",
		Format:      "text",
	}
}

// NewLogger creates a logger with the service field preset
func NewLogger(cfg LoggerConfig) *logrus.Entry {
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	logger := logrus.New()
	logger.SetOutput(output)
	logger.SetLevel(ParseLevel(cfg.Level))

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.ServiceName == "" {
		return logrus.NewEntry(logger)
	}
	return logger.WithField("service", cfg.ServiceName)
}

// NewSimpleLogger creates a logger with the default configuration
func NewSimpleLogger(serviceName string) *logrus.Entry {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// Discard returns a logger that drops everything
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// ParseLevel converts a level name to a logrus.Level.
// Unknown names fall back to warn.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.WarnLevel
	}
}
