package reconciler

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/locsync/pkg/constants"
	"github.com/agentstation/locsync/pkg/errors"
	"github.com/agentstation/locsync/pkg/logging"
	"github.com/agentstation/locsync/pkg/sanitize"
)

// options configures a reconciler.
type options struct {
	logger    *zerolog.Logger
	attribute string
	maxLength int
	minValues int
	dryRun    bool
	snapshot  SnapshotSink
}

func defaultOptions() *options {
	return &options{
		logger:    &logging.Nop,
		attribute: constants.DefaultAttributeName,
		maxLength: sanitize.DefaultMaxLength,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithLogger sets the logger every run step logs through.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger != nil {
			o.logger = logger
		}
		return nil
	}
}

// WithAttribute sets the name of the extensible attribute to manage.
func WithAttribute(name string) Option {
	return func(o *options) error {
		if name == "" {
			return &errors.ValidationError{
				Field:   "attribute",
				Message: "cannot be empty",
			}
		}
		o.attribute = name
		return nil
	}
}

// WithMaxLength sets the longest allowed value, in characters.
func WithMaxLength(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return &errors.ValidationError{
				Field:   "max_length",
				Value:   n,
				Message: "must be positive",
			}
		}
		o.maxLength = n
		return nil
	}
}

// WithMinValues refuses to write when the desired set has fewer than n
// values. Zero lets an empty source clear the attribute.
func WithMinValues(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{
				Field:   "min_values",
				Value:   n,
				Message: "cannot be negative",
			}
		}
		o.minValues = n
		return nil
	}
}

// WithDryRun stops every run after the comparison.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithSnapshot saves the allowed values about to be replaced before each write.
func WithSnapshot(sink SnapshotSink) Option {
	return func(o *options) error {
		o.snapshot = sink
		return nil
	}
}
