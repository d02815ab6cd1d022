package config

import "log/slog"

// GetLogger returns the package logger scoped to the config module. It is
// fetched on every call so it follows slog.SetDefault.
func GetLogger() *slog.Logger {
	return slog.Default().With("module", "config")
}
