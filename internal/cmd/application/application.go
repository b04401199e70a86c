// Package application provides the interface between the locsync App and its
// commands.
//
// Commands accept an Application rather than the concrete App so they can be
// tested with Mock:
//
//	mock := &application.Mock{
//	    ReconcilerFunc: func(context.Context, application.Scope, ...reconciler.Option) (application.Reconciler, error) {
//	        return fake, nil
//	    },
//	}
//	cmd := sync.NewCommand(mock)
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/locsync/internal/config"
	"github.com/agentstation/locsync/pkg/reconciler"
)

// Scope selects which systems a command talks to.
type Scope int

const (
	// ScopeSync needs the source and the target.
	ScopeSync Scope = iota
	// ScopeTarget needs only the target (flush, restore).
	ScopeTarget
)

// Reconciler is the part of *reconciler.Reconciler the commands drive.
type Reconciler interface {
	Run(ctx context.Context) (*reconciler.Result, error)
	Flush(ctx context.Context, placeholder string) (*reconciler.Result, error)
	Restore(ctx context.Context, values []string) (*reconciler.Result, error)
}

// Application provides what commands need from the App.
type Application interface {
	// Config returns the loaded configuration.
	Config() *config.Config

	// Logger returns the configured logger.
	Logger() *zerolog.Logger

	// Reconciler validates the configuration for scope and builds a
	// reconciler wired to the configured clients and snapshot sinks.
	Reconciler(ctx context.Context, scope Scope, opts ...reconciler.Option) (Reconciler, error)

	// Report exports metrics for a finished run. Export failures are logged,
	// never returned.
	Report(ctx context.Context, result *reconciler.Result, err error)

	// OutputFormat returns the --format flag value.
	OutputFormat() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
