// Package app provides the application context and dependency management
// for the locsync CLI. It loads the configuration once, builds the logger
// from it and hands both to every command.
package app

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/locsync/internal/config"
	"github.com/agentstation/locsync/internal/metrics"
	"github.com/agentstation/locsync/pkg/logging"
)

// Flags holds the global command-line flags.
type Flags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	NoColor    bool
	Format     string
	LogLevel   string
}

// App represents the locsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	flags *Flags

	// config is loaded in setupCommand unless injected with WithConfig.
	config         *config.Config
	configInjected bool

	logger         *zerolog.Logger
	loggerInjected bool
	logCloser      io.Closer

	metrics *metrics.Recorder
	out     io.Writer
}

// New creates a new App instance with the given version information.
// Configuration is read when a command runs, after flags are parsed.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	logger := logging.NewConsole(os.Getenv("NO_COLOR") != "")
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		flags:   &Flags{},
		logger:  &logger,
		metrics: metrics.NewRecorder(),
		out:     os.Stdout,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration. It is nil before a command
// has been set up unless one was injected.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format flag value.
func (a *App) OutputFormat() string {
	return a.flags.Format
}

// Metrics returns the run metrics recorder.
func (a *App) Metrics() *metrics.Recorder {
	return a.metrics
}

// Shutdown flushes and closes the log file.
func (a *App) Shutdown(_ context.Context) error {
	if a.logCloser == nil {
		return nil
	}
	err := a.logCloser.Close()
	a.logCloser = nil
	return err
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a configuration instead of loading one.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.config = cfg
		a.configInjected = cfg != nil
		return nil
	}
}

// WithLogger sets a custom logger; flags no longer rebuild it.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.loggerInjected = logger != nil
		return nil
	}
}

// WithOutput sets where command results are printed.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
