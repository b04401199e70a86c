// Package flush provides the flush command implementation.
package flush

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/locsync/internal/cmd/application"
	"github.com/agentstation/locsync/internal/cmd/output"
	"github.com/agentstation/locsync/pkg/errors"
)

// Flags holds the flush command flags.
type Flags struct {
	Yes         bool
	Placeholder string
}

// NewCommand creates the flush command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "flush",
		GroupID: "management",
		Short:   "Replace every allowed value with a single placeholder",
		Args:    cobra.NoArgs,
		Long: `Flush replaces the attribute's allowed values with one placeholder value
(sync.placeholder, default CLEARED). Infoblox then clears the attribute from
every object that carried one of the removed values.

The ServiceNow settings are not needed. A snapshot is taken first when a
snapshot sink is configured.`,
		Example: `  locsync flush --yes
  locsync flush --yes --placeholder UNSET`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "confirm the flush")
	cmd.Flags().StringVar(&flags.Placeholder, "placeholder", "", "placeholder value (default from sync.placeholder)")

	return cmd
}

// Execute flushes the attribute.
func Execute(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	if !flags.Yes {
		return errors.NewValidationError("yes", false, "flush removes the attribute from every object; pass --yes to confirm")
	}
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	placeholder := flags.Placeholder
	if placeholder == "" {
		placeholder = app.Config().Sync.Placeholder
	}

	r, err := app.Reconciler(ctx, application.ScopeTarget)
	if err != nil {
		return err
	}

	result, runErr := r.Flush(ctx, placeholder)
	if result != nil {
		if err := output.WriteResult(w, output.DetectFormat(string(format)), result, output.ResultData(result)); err != nil {
			app.Logger().Warn().Err(err).Msg("Failed to print result")
		}
	}
	return runErr
}
