// Package telemetry provides structured logging and metrics instrumentation
// for the enclave service, built on slog and OpenTelemetry with a Prometheus
// exporter.
package telemetry

import (
	"log/slog"
	"os"
)

// NewLogger builds a JSON structured logger at the level named by levelName,
// defaulting to info for anything unrecognized.
func NewLogger(levelName string) *slog.Logger {
	var level slog.Level
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler)
}
