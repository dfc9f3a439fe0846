// Package logging builds the process-wide zerolog root logger. The
// logger is handed to constructors explicitly rather than used through
// package-level globals, so tests can run each component with a
// silent logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing human-readable output to stderr and,
// when logFile is non-empty, JSON lines to that file as well.
func New(level, logFile string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", level, err)
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	var out io.Writer = console

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("open log file %s: %w", logFile, err)
		}
		out = zerolog.MultiLevelWriter(console, f)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
