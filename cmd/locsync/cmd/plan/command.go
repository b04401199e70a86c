// Package plan provides the plan command implementation.
package plan

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/locsync/internal/cmd/application"
	"github.com/agentstation/locsync/internal/cmd/output"
	"github.com/agentstation/locsync/pkg/reconciler"
)

// NewCommand creates the plan command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "plan",
		GroupID: "core",
		Short:   "Show what a sync would change without writing",
		Args:    cobra.NoArgs,
		Long: `Plan runs a sync up to the comparison and prints the values that would be
added (+) and removed (-). Nothing is written to Infoblox.

With --format wide the table also lists names dropped by sanitization
collisions (!).`,
		Example: `  locsync plan             # Table of pending changes
  locsync plan -o wide     # Include sanitization collisions
  locsync plan -o yaml     # Full result as YAML`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, cmd.OutOrStdout())
		},
	}
}

// Execute performs a dry run and prints the changeset.
func Execute(ctx context.Context, app application.Application, w io.Writer) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	r, err := app.Reconciler(ctx, application.ScopeSync, reconciler.WithDryRun(true))
	if err != nil {
		return err
	}

	result, runErr := r.Run(ctx)
	if runErr != nil {
		return runErr
	}

	format = output.DetectFormat(string(format))
	if err := output.WriteResult(w, format, result, output.ChangesData(result, format == output.FormatWide)); err != nil {
		return err
	}
	if !format.IsStructured() {
		_, _ = fmt.Fprintln(w, result.Summary())
	}
	return nil
}
