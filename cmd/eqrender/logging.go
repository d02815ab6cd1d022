package main

import (
	"io"
	"log/slog"
)

// newLogger returns a text logger writing to w. debug lowers the level so
// per-block and config details show up.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
