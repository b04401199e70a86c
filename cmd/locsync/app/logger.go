package app

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/rs/zerolog"

	"github.com/agentstation/locsync/internal/config"
	"github.com/agentstation/locsync/pkg/logging"
)

// NewLogger creates the run logger from the configuration and flags. The
// closer flushes the rotating log file, if one is configured.
//
// Log level precedence (highest to lowest):
//  1. --log-level flag (explicit always wins)
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. log.level from LOCSYNC_LOG_LEVEL, LOG_LEVEL or the config file
//  5. Default (info)
func NewLogger(cfg *config.Config, flags *Flags) (zerolog.Logger, io.Closer) {
	level := determineLogLevel(cfg.Log.Level, flags)

	logConfig := cfg.Logging()
	logConfig.Level = level
	logConfig.NoColor = logConfig.NoColor || flags.NoColor
	logConfig.AddCaller = level == "debug" || level == "trace"

	return logging.NewLoggerFromConfig(logConfig)
}

// determineLogLevel determines the log level using clear precedence rules.
func determineLogLevel(configured string, flags *Flags) string {
	if flags.LogLevel != "" {
		validated := validateLogLevel(flags.LogLevel)
		if validated != flags.LogLevel {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", flags.LogLevel, validated)
		}
		return validated
	}

	if flags.Verbose && flags.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if flags.Verbose {
		return "debug"
	}
	if flags.Quiet {
		return "warn"
	}

	if configured != "" {
		return validateLogLevel(configured)
	}
	return "info"
}

// validateLogLevel validates a log level string and returns a valid level.
// If the input is invalid, returns "info" as a safe default.
func validateLogLevel(level string) string {
	if slices.Contains([]string{"trace", "debug", "info", "warn", "error"}, level) {
		return level
	}
	if level == "warning" {
		return "warn"
	}
	return "info"
}
