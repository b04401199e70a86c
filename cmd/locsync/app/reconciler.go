package app

import (
	"context"

	"github.com/agentstation/locsync/internal/cmd/application"
	"github.com/agentstation/locsync/internal/infoblox"
	"github.com/agentstation/locsync/internal/servicenow"
	"github.com/agentstation/locsync/internal/snapshot"
	"github.com/agentstation/locsync/pkg/errors"
	"github.com/agentstation/locsync/pkg/reconciler"
)

// Reconciler validates the configuration for scope and wires a reconciler to
// the configured clients and snapshot sinks. opts are applied last.
func (a *App) Reconciler(ctx context.Context, scope application.Scope, opts ...reconciler.Option) (application.Reconciler, error) {
	cfg := a.config
	if cfg == nil {
		return nil, errors.NewConfigError("app", "configuration not loaded", nil)
	}

	validate := cfg.Validate
	if scope == application.ScopeTarget {
		validate = cfg.ValidateTarget
	}
	if err := validate(); err != nil {
		return nil, err
	}

	target, err := infoblox.NewClient(cfg.InfobloxClient(), cfg.Transport(cfg.Infoblox.Proxy, a.logger))
	if err != nil {
		return nil, err
	}

	// A nil interface, not a nil *servicenow.Client, when the source is unused.
	var source reconciler.Source
	if scope == application.ScopeSync {
		sn, err := servicenow.NewClient(cfg.ServiceNowClient(), cfg.Transport(cfg.ServiceNow.Proxy, a.logger))
		if err != nil {
			return nil, err
		}
		source = sn
	}

	base := []reconciler.Option{
		reconciler.WithLogger(a.logger),
		reconciler.WithAttribute(cfg.Infoblox.Attribute),
		reconciler.WithMaxLength(cfg.Sync.MaxLength),
		reconciler.WithMinValues(cfg.Sync.MinValues),
	}

	sink, err := a.snapshotSink(ctx)
	if err != nil {
		return nil, err
	}
	if sink != nil {
		base = append(base, reconciler.WithSnapshot(sink))
	}

	rec, err := reconciler.New(source, target, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// snapshotSink returns the configured sinks, or nil when none is set.
func (a *App) snapshotSink(ctx context.Context) (reconciler.SnapshotSink, error) {
	var sinks snapshot.MultiSink

	if dir := a.config.Snapshot.Dir; dir != "" {
		sinks = append(sinks, snapshot.NewFileSink(dir))
	}
	if s3cfg, ok := a.config.S3(); ok {
		s3Sink, err := snapshot.NewS3Sink(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s3Sink)
	}

	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}

// Report records a finished run and exports the metrics. A failed export is
// logged; it never changes the outcome of the run.
func (a *App) Report(ctx context.Context, result *reconciler.Result, err error) {
	a.metrics.Observe(result, err)

	if a.config == nil {
		return
	}
	m := a.config.Metrics

	if m.Textfile != "" {
		if werr := a.metrics.WriteTextfile(m.Textfile); werr != nil {
			a.logger.Warn().Err(werr).Str("path", m.Textfile).Msg("Failed to write metrics textfile")
		}
	}

	if m.PushgatewayURL != "" {
		// Metrics of an interrupted run are still pushed.
		if perr := a.metrics.Push(context.WithoutCancel(ctx), m.PushgatewayURL, m.Job); perr != nil {
			a.logger.Warn().Err(perr).Str("url", m.PushgatewayURL).Msg("Failed to push metrics")
		}
	}
}
