// Package sync provides the sync command implementation.
package sync

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/locsync/internal/cmd/application"
	"github.com/agentstation/locsync/internal/cmd/output"
)

// NewCommand creates the sync command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Replace the attribute's allowed values with the ServiceNow locations",
		Args:    cobra.NoArgs,
		Long: `Sync reads the location names from ServiceNow, sanitizes them and compares
them with the allowed values of the Infoblox extensible attribute.

When the two differ the whole list is replaced in one write and read back to
verify it. A value that is removed is cleared from every Infoblox object that
carries it, so set sync.min_values to refuse suspiciously small lists.

The command exits 1 when the run fails.`,
		Example: `  locsync sync                       # Run a sync
  locsync sync -o json               # Print the run result as JSON
  locsync sync --config prod.yaml    # Use a specific config file`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, cmd.OutOrStdout())
		},
	}
}

// Execute performs one sync and prints its result.
func Execute(ctx context.Context, app application.Application, w io.Writer) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	r, err := app.Reconciler(ctx, application.ScopeSync)
	if err != nil {
		app.Report(ctx, nil, err)
		return err
	}

	result, runErr := r.Run(ctx)
	app.Report(ctx, result, runErr)

	if result != nil {
		if err := output.WriteResult(w, output.DetectFormat(string(format)), result, output.ResultData(result)); err != nil {
			app.Logger().Warn().Err(err).Msg("Failed to print result")
		}
	}
	return runErr
}
