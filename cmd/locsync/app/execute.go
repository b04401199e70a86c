package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/locsync/internal/cmd/output"
	"github.com/agentstation/locsync/internal/config"
)

// Execute runs the locsync CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "locsync",
		Short:   "Keep the Infoblox Location attribute in step with ServiceNow",
		Version: a.version,
		Long: `locsync copies the location names held in ServiceNow (cmn_location) into the
allowed values of an Infoblox extensible attribute.

Settings come from a YAML file (--config, ./locsync.yaml, ./config.yaml or
~/.locsync.yaml), .env and .env.local files, LOCSYNC_* environment variables
and the SERVICENOW_API_* / INFOBLOX_API_* variables.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	rootCmd.SetOut(a.out)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	rootCmd.PersistentFlags().StringVar(&a.flags.ConfigFile, "config", "", "config file (default is ./locsync.yaml or $HOME/.locsync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.flags.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.flags.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.flags.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.flags.Format, "format", "o", "", "output format: table, json, yaml, wide")
	rootCmd.PersistentFlags().StringVar(&a.flags.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("locsync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs. It loads the configuration
// and rebuilds the logger from it and the parsed flags.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	a.flags.Verbose = mustGetBool(cmd, "verbose")
	a.flags.Quiet = mustGetBool(cmd, "quiet")
	a.flags.NoColor = mustGetBool(cmd, "no-color")
	a.flags.Format = mustGetString(cmd, "format")
	a.flags.LogLevel = mustGetString(cmd, "log-level")

	if _, err := output.ParseFormat(a.flags.Format); err != nil {
		return err
	}

	if !a.configInjected {
		cfg, err := config.Load(config.Options{File: a.flags.ConfigFile})
		if err != nil {
			return err
		}
		a.config = cfg
	}

	if !a.loggerInjected {
		if err := a.Shutdown(cmd.Context()); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close previous log file")
		}
		logger, closer := NewLogger(a.config, a.flags)
		a.logger = &logger
		a.logCloser = closer
	}

	if a.config.File != "" {
		a.logger.Debug().Str("file", a.config.File).Msg("Loaded config file")
	}
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(a.CreateSyncCommand())
	rootCmd.AddCommand(a.CreatePlanCommand())

	// Management commands
	rootCmd.AddCommand(a.CreateFlushCommand())
	rootCmd.AddCommand(a.CreateRestoreCommand())

	// Utility commands
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
