// Package logging builds the charmbracelet/log loggers used across the service.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns the root logger. An unknown level falls back to info.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       log.TextFormatter,
		ReportTimestamp: true,
		Prefix:          "tasks-service",
	})
}

// Discard is a logger for tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
