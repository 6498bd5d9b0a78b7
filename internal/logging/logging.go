// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Format selects the handler used for log output.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// New builds a logger writing to w (stderr when nil). Without debug only
// warnings and errors are emitted, so regular command output stays clean.
func New(w io.Writer, debug bool, f Format) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch f {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup installs a text logger as the slog default and returns it.
func Setup(debug bool, w io.Writer) *slog.Logger {
	l := New(w, debug, FormatText)
	slog.SetDefault(l)
	return l
}

// SetupJSON installs a JSON logger as the slog default and returns it.
func SetupJSON(debug bool, w io.Writer) *slog.Logger {
	l := New(w, debug, FormatJSON)
	slog.SetDefault(l)
	return l
}
