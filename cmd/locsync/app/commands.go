package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/locsync/cmd/locsync/cmd/flush"
	"github.com/agentstation/locsync/cmd/locsync/cmd/plan"
	"github.com/agentstation/locsync/cmd/locsync/cmd/restore"
	synccmd "github.com/agentstation/locsync/cmd/locsync/cmd/sync"
)

// CreateSyncCommand creates the sync command with app dependencies.
func (a *App) CreateSyncCommand() *cobra.Command {
	return synccmd.NewCommand(a)
}

// CreatePlanCommand creates the plan command with app dependencies.
func (a *App) CreatePlanCommand() *cobra.Command {
	return plan.NewCommand(a)
}

// CreateFlushCommand creates the flush command with app dependencies.
func (a *App) CreateFlushCommand() *cobra.Command {
	return flush.NewCommand(a)
}

// CreateRestoreCommand creates the restore command with app dependencies.
func (a *App) CreateRestoreCommand() *cobra.Command {
	return restore.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("locsync %s\n", a.version)
			if a.flags.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
