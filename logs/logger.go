// Package logs builds the process-wide slog logger: a text handler on
// stderr fanned out with the systemd journal when available.
package logs

import (
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

var level = new(slog.LevelVar)

// SetDebug switches the log level between debug and info.
func SetDebug(debug bool) {
	if debug {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// New returns a logger writing to stderr and, best effort, to the
// systemd journal. Journal setup failures are ignored; the terminal
// handler always works.
func New() *slog.Logger {
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}

	if journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{}); err == nil {
		handlers = append(handlers, journalHandler)
	}

	return slog.New(slogmulti.Fanout(handlers...))
}
