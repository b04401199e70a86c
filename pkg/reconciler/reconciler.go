// Package reconciler keeps the allowed values of one Infoblox extensible
// attribute equal to the location names held in ServiceNow.
//
// A run reads the source, then the target, sanitizes the source names into
// the desired set, and replaces the target's list in a single write only when
// the two differ. The write is re-read to verify it took effect.
package reconciler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/locsync/internal/infoblox"
	"github.com/agentstation/locsync/pkg/differ"
	"github.com/agentstation/locsync/pkg/errors"
	"github.com/agentstation/locsync/pkg/logging"
	"github.com/agentstation/locsync/pkg/sanitize"
)

// Source provides the authoritative location names.
type Source interface {
	FetchLocations(ctx context.Context) (differ.Set, error)
}

// Target holds the attribute whose allowed values are reconciled.
type Target interface {
	GetAttributeDefinition(ctx context.Context, name string) (*infoblox.AttributeDefinition, error)
	SetAllowedValues(ctx context.Context, ref string, values differ.Set) error
}

// Snapshot is the allowed-value list of an attribute at a point in time.
type Snapshot struct {
	Attribute string    `json:"attribute" yaml:"attribute"`
	Ref       string    `json:"ref" yaml:"ref"`
	RunID     string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	TakenAt   time.Time `json:"taken_at" yaml:"taken_at"`
	Values    []string  `json:"values" yaml:"values"`
}

// SnapshotSink stores snapshots and reports where each one went.
type SnapshotSink interface {
	Save(ctx context.Context, s Snapshot) (location string, err error)
}

// Reconciler runs the sync state machine.
type Reconciler struct {
	source Source
	target Target
	opts   *options
}

// New creates a Reconciler. source may be nil when only Flush or Restore
// are used.
func New(source Source, target Target, opts ...Option) (*Reconciler, error) {
	if target == nil {
		return nil, &errors.ValidationError{Field: "target", Message: "cannot be nil"}
	}

	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Reconciler{
		source: source,
		target: target,
		opts:   options,
	}, nil
}

// run carries the per-run state shared by the steps.
type run struct {
	ctx    context.Context
	logger *zerolog.Logger
	result *Result
}

func (r *Reconciler) begin(ctx context.Context) *run {
	runID := uuid.NewString()
	ctx = logging.WithLogger(ctx, r.opts.logger)
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithField(ctx, "attribute", r.opts.attribute)

	return &run{
		ctx:    ctx,
		logger: logging.FromContext(ctx),
		result: newResult(runID, r.opts.attribute, r.opts.dryRun),
	}
}

func (rn *run) transition(state State) {
	rn.logger.Debug().
		Str("from", string(rn.result.State)).
		Str("to", string(state)).
		Msg("State transition")
	rn.result.State = state
}

func (rn *run) fail(err error) (*Result, error) {
	rn.result.FailedIn = rn.result.State
	rn.result.State = StateFailed
	rn.result.Duration = time.Since(rn.result.StartedAt)
	rn.logger.Error().
		Err(err).
		Str("failed_in", string(rn.result.FailedIn)).
		Msg("Sync failed")
	return rn.result, err
}

func (rn *run) done() (*Result, error) {
	rn.transition(StateDone)
	rn.result.Duration = time.Since(rn.result.StartedAt)
	rn.logger.Info().
		Int("added", rn.result.Added()).
		Int("removed", rn.result.Removed()).
		Int("collisions", len(rn.result.Collisions)).
		Int("truncated", rn.result.Truncated).
		Bool("written", rn.result.Written).
		Bool("verified", rn.result.Verified).
		Dur("duration", rn.result.Duration).
		Msg(rn.result.Summary())
	return rn.result, nil
}

// Run performs one sync. The returned Result is never nil; on failure its
// State is StateFailed and the error carries the cause.
func (r *Reconciler) Run(ctx context.Context) (*Result, error) {
	rn := r.begin(ctx)
	rn.logger.Info().Bool("dry_run", r.opts.dryRun).Msg("Starting sync")

	if r.source == nil {
		return rn.fail(errors.NewConfigError("reconciler", "no source configured", nil))
	}

	// The source is read first so that a source failure never reaches the target.
	raw, err := r.source.FetchLocations(rn.ctx)
	if err != nil {
		return rn.fail(err)
	}
	rn.result.SourceCount = raw.Len()
	rn.logger.Info().Int("count", raw.Len()).Msg("Fetched source locations")

	def, err := r.target.GetAttributeDefinition(rn.ctx, r.opts.attribute)
	if err != nil {
		return rn.fail(err)
	}
	rn.result.CurrentCount = def.Values.Len()
	rn.logger.Info().Int("count", def.Values.Len()).Msg("Fetched current allowed values")

	desired := r.desiredSet(rn, raw)
	return r.apply(rn, def, desired)
}

// desiredSet sanitizes raw names in sorted order. When two names sanitize to
// the same value the first one wins and a collision is recorded for the other.
func (r *Reconciler) desiredSet(rn *run, raw differ.Set) differ.Set {
	desired := differ.NewSet()
	firstSeen := make(map[string]string, raw.Len())

	for _, name := range raw.Sorted() {
		value := sanitize.Value(name, r.opts.maxLength)
		if value == "" {
			continue
		}
		if sanitize.Truncated(name, r.opts.maxLength) {
			rn.result.Truncated++
			rn.logger.Warn().
				Str("raw", name).
				Str("sanitized", value).
				Int("max_length", r.opts.maxLength).
				Msg("Location name truncated")
		}

		if first, ok := firstSeen[value]; ok {
			rn.result.Collisions = append(rn.result.Collisions, Collision{
				Sanitized: value,
				First:     first,
				Second:    name,
			})
			rn.logger.Warn().
				Str("sanitized", value).
				Str("first", first).
				Str("second", name).
				Msg("Sanitization collision")
			continue
		}
		firstSeen[value] = name
		desired.Add(value)
	}

	rn.result.DesiredCount = desired.Len()
	return desired
}

// apply compares, writes and verifies. It is shared by Run, Flush and Restore.
func (r *Reconciler) apply(rn *run, def *infoblox.AttributeDefinition, desired differ.Set) (*Result, error) {
	rn.result.DesiredCount = desired.Len()

	rn.transition(StateComparing)
	cs := differ.Compare(def.Values, desired)
	rn.result.Changeset = cs

	if !cs.HasChanges() {
		rn.transition(StateNoChange)
		return rn.done()
	}

	for _, v := range cs.Removed {
		rn.logger.Info().Str("value", v).Msg("Removing value")
	}
	for _, v := range cs.Added {
		rn.logger.Info().Str("value", v).Msg("Adding value")
	}

	if desired.Len() < r.opts.minValues {
		unsafe := &errors.UnsafeWriteError{
			Attribute: r.opts.attribute,
			Desired:   desired.Len(),
			Minimum:   r.opts.minValues,
		}
		if !r.opts.dryRun {
			return rn.fail(unsafe)
		}
		rn.result.Refused = true
		rn.logger.Warn().Err(unsafe).Msg("A sync would refuse this write")
	}

	if r.opts.dryRun {
		return rn.done()
	}
	if desired.Len() == 0 {
		rn.logger.Warn().
			Int("removed", cs.Summary.Removed).
			Msg("Desired set is empty; every allowed value will be removed")
	}

	if r.opts.snapshot != nil {
		location, err := r.opts.snapshot.Save(rn.ctx, Snapshot{
			Attribute: r.opts.attribute,
			Ref:       def.Ref,
			RunID:     rn.result.RunID,
			TakenAt:   time.Now().UTC(),
			Values:    def.Values.Sorted(),
		})
		if err != nil {
			return rn.fail(err)
		}
		rn.result.Snapshot = location
		rn.logger.Info().Str("location", location).Msg("Saved snapshot of current values")
	}

	rn.transition(StateUpdating)
	if err := r.target.SetAllowedValues(rn.ctx, def.Ref, desired); err != nil {
		return rn.fail(err)
	}
	rn.result.Written = true

	rn.transition(StateVerifying)
	after, err := r.target.GetAttributeDefinition(rn.ctx, r.opts.attribute)
	if err != nil {
		return rn.fail(err)
	}
	if after.Values.Equal(desired) {
		rn.result.Verified = true
	} else {
		drift := differ.Compare(desired, after.Values)
		rn.logger.Warn().
			Strs("missing", drift.Removed).
			Strs("unexpected", drift.Added).
			Msg("Verification mismatch; allowed values differ from what was written")
	}

	return rn.done()
}
