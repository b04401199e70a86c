// Package logging provides structured logging for locsync using zerolog.
// A run logs human-readable lines to the console and JSON lines to a
// rotating file; both come from one logger that is built once in the CLI and
// passed to every component.
//
// Example usage:
//
//	logger, closer := logging.NewLoggerFromConfig(&logging.Config{Level: "info", Dir: "/var/log/locsync"})
//	defer closer.Close()
//
//	ctx := logging.WithLogger(context.Background(), &logger)
//	logging.FromContext(ctx).Info().Str("attribute", "Location").Msg("Starting sync")
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Nop logger for discarding output.
var Nop = zerolog.Nop()

// NewConsole creates a new console logger for human-readable output.
func NewConsole(noColor bool) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: parseTimeFormat("datetime"),
		NoColor:    noColor,
	}).With().Timestamp().Logger()
}
