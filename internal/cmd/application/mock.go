package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/locsync/internal/config"
	"github.com/agentstation/locsync/pkg/reconciler"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ConfigFunc       func() *config.Config
	LoggerFunc       func() *zerolog.Logger
	ReconcilerFunc   func(ctx context.Context, scope Scope, opts ...reconciler.Option) (Reconciler, error)
	ReportFunc       func(ctx context.Context, result *reconciler.Result, err error)
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Config returns config using the mock function or an empty Config.
func (m *Mock) Config() *config.Config {
	if m.ConfigFunc != nil {
		return m.ConfigFunc()
	}
	return &config.Config{}
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// Reconciler returns a reconciler using the mock function or nil.
func (m *Mock) Reconciler(ctx context.Context, scope Scope, opts ...reconciler.Option) (Reconciler, error) {
	if m.ReconcilerFunc != nil {
		return m.ReconcilerFunc(ctx, scope, opts...)
	}
	return nil, nil
}

// Report calls the mock function if set.
func (m *Mock) Report(ctx context.Context, result *reconciler.Result, err error) {
	if m.ReportFunc != nil {
		m.ReportFunc(ctx, result, err)
	}
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns build date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builder using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}

// ReconcilerMock provides a mock implementation of Reconciler for testing.
// Calls records the method names in order.
type ReconcilerMock struct {
	RunFunc     func(ctx context.Context) (*reconciler.Result, error)
	FlushFunc   func(ctx context.Context, placeholder string) (*reconciler.Result, error)
	RestoreFunc func(ctx context.Context, values []string) (*reconciler.Result, error)
	Calls       []string
}

// Run returns a result using the mock function or a done result.
func (m *ReconcilerMock) Run(ctx context.Context) (*reconciler.Result, error) {
	m.Calls = append(m.Calls, "Run")
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return &reconciler.Result{State: reconciler.StateDone}, nil
}

// Flush returns a result using the mock function or a done result.
func (m *ReconcilerMock) Flush(ctx context.Context, placeholder string) (*reconciler.Result, error) {
	m.Calls = append(m.Calls, "Flush")
	if m.FlushFunc != nil {
		return m.FlushFunc(ctx, placeholder)
	}
	return &reconciler.Result{State: reconciler.StateDone}, nil
}

// Restore returns a result using the mock function or a done result.
func (m *ReconcilerMock) Restore(ctx context.Context, values []string) (*reconciler.Result, error) {
	m.Calls = append(m.Calls, "Restore")
	if m.RestoreFunc != nil {
		return m.RestoreFunc(ctx, values)
	}
	return &reconciler.Result{State: reconciler.StateDone}, nil
}
