// Package logging builds the shared charmbracelet/log logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New builds a logger at the given level. When file is non-empty the log
// is appended there; otherwise it goes to stderr. Pass quiet to silence
// everything below Error, which the TUI does while it owns the terminal.
func New(level, file string, quiet bool) (*log.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closer := func() {}
	if file != "" {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closer = func() { f.Close() }
	}

	lvl := ParseLevel(level)
	if quiet && file == "" && lvl < log.ErrorLevel {
		lvl = log.ErrorLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       log.TextFormatter,
		ReportTimestamp: file != "",
		Prefix:          "todoc",
	})
	return logger, closer, nil
}

// ParseLevel maps a config string to a log level, defaulting to warn.
func ParseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning", "":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	}
	return log.WarnLevel
}
