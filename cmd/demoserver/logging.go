package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// newLogHandler picks a human-readable handler for terminals and JSON for
// everything else (container log collectors).
func newLogHandler(w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(newLogHandler(os.Stderr, level)))
}
