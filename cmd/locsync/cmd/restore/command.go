// Package restore provides the restore command implementation.
package restore

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/locsync/internal/cmd/application"
	"github.com/agentstation/locsync/internal/cmd/output"
	"github.com/agentstation/locsync/internal/snapshot"
	"github.com/agentstation/locsync/pkg/errors"
)

// Flags holds the restore command flags.
type Flags struct {
	Yes bool
}

// NewCommand creates the restore command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "restore <snapshot.yaml>",
		GroupID: "management",
		Short:   "Replace the allowed values with a saved snapshot",
		Args:    cobra.ExactArgs(1),
		Long: `Restore replaces the attribute's allowed values with the list saved in a
snapshot file. Snapshots are written before every write when snapshot.dir or
snapshot.s3_bucket is set; objects from S3 must be downloaded first.

The snapshot must be for the configured attribute.`,
		Example: `  locsync restore snapshots/snapshot-Location-20250314-092653.yaml --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd.Context(), app, args[0], flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "confirm the restore")

	return cmd
}

// Execute restores the snapshot at path.
func Execute(ctx context.Context, app application.Application, path string, flags *Flags, w io.Writer) error {
	if !flags.Yes {
		return errors.NewValidationError("yes", false, "restore replaces every allowed value; pass --yes to confirm")
	}
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	snap, err := snapshot.Load(path)
	if err != nil {
		return err
	}
	if want := app.Config().Infoblox.Attribute; snap.Attribute != want {
		return errors.NewValidationError("snapshot.attribute", snap.Attribute, "snapshot is for a different attribute than "+want)
	}

	app.Logger().Info().
		Str("path", path).
		Str("run_id", snap.RunID).
		Time("taken_at", snap.TakenAt).
		Int("count", len(snap.Values)).
		Msg("Loaded snapshot")

	r, err := app.Reconciler(ctx, application.ScopeTarget)
	if err != nil {
		return err
	}

	result, runErr := r.Restore(ctx, snap.Values)
	if result != nil {
		if err := output.WriteResult(w, output.DetectFormat(string(format)), result, output.ResultData(result)); err != nil {
			app.Logger().Warn().Err(err).Msg("Failed to print result")
		}
	}
	return runErr
}
