// Package main provides the entry point for the locsync CLI tool.
package main

import (
	"context"
	"os"

	"github.com/agentstation/locsync/cmd/locsync/app"
	"github.com/agentstation/locsync/pkg/constants"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.ContextWithSignals(context.Background())
	runErr := application.Execute(ctx, os.Args[1:])
	cancel()

	// Fresh context: the signal context may already be cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()

	if runErr != nil {
		application.Logger().Error().Err(runErr).Msg("locsync failed")
	}
	if shutdownErr := application.Shutdown(shutdownCtx); shutdownErr != nil {
		_, _ = os.Stderr.WriteString("shutdown: " + shutdownErr.Error() + "\n")
	}
	if runErr != nil {
		shutdownCancel()
		os.Exit(1)
	}
}
