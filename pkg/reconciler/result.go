package reconciler

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/locsync/pkg/differ"
)

// State is a step of a run.
type State string

// Run states. Failed is reachable from every other state.
const (
	StateFetching  State = "fetching"
	StateComparing State = "comparing"
	StateNoChange  State = "no_change"
	StateUpdating  State = "updating"
	StateVerifying State = "verifying"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

// Collision records two distinct source names that sanitize to one value.
// Only First contributes to the desired set; Second is dropped.
type Collision struct {
	Sanitized string `json:"sanitized" yaml:"sanitized"`
	First     string `json:"first" yaml:"first"`
	Second    string `json:"second" yaml:"second"`
}

// Result represents the outcome of a run.
type Result struct {
	RunID     string `json:"run_id" yaml:"run_id"`
	State     State  `json:"state" yaml:"state"`
	Attribute string `json:"attribute" yaml:"attribute"`

	// FailedIn is the state the run was in when it failed.
	FailedIn State `json:"failed_in,omitempty" yaml:"failed_in,omitempty"`

	SourceCount  int `json:"source_count" yaml:"source_count"`
	CurrentCount int `json:"current_count" yaml:"current_count"`
	DesiredCount int `json:"desired_count" yaml:"desired_count"`

	Changeset  *differ.Changeset `json:"changeset,omitempty" yaml:"changeset,omitempty"`
	Collisions []Collision       `json:"collisions" yaml:"collisions"`
	Truncated  int               `json:"truncated" yaml:"truncated"`

	DryRun   bool   `json:"dry_run" yaml:"dry_run"`
	Written  bool   `json:"written" yaml:"written"`
	Verified bool   `json:"verified" yaml:"verified"`
	Snapshot string `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`

	// Refused is set on a dry run whose real write would fail the min-values
	// check.
	Refused bool `json:"refused,omitempty" yaml:"refused,omitempty"`

	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

func newResult(runID, attribute string, dryRun bool) *Result {
	return &Result{
		RunID:      runID,
		State:      StateFetching,
		Attribute:  attribute,
		Collisions: []Collision{},
		DryRun:     dryRun,
		StartedAt:  time.Now(),
	}
}

// Added returns the number of values the run adds (or would add).
func (r *Result) Added() int {
	if r.Changeset == nil {
		return 0
	}
	return r.Changeset.Summary.Added
}

// Removed returns the number of values the run removes (or would remove).
func (r *Result) Removed() int {
	if r.Changeset == nil {
		return 0
	}
	return r.Changeset.Summary.Removed
}

// IsSuccess returns true if the run reached Done.
func (r *Result) IsSuccess() bool {
	return r.State == StateDone
}

// HasChanges returns true if the desired set differs from the current one.
func (r *Result) HasChanges() bool {
	return r.Changeset != nil && r.Changeset.HasChanges()
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	counts := fmt.Sprintf("added=%d removed=%d collisions=%d", r.Added(), r.Removed(), len(r.Collisions))

	var b strings.Builder
	switch {
	case r.State == StateFailed:
		fmt.Fprintf(&b, "Sync of %s failed while %s (%s)", r.Attribute, r.FailedIn, counts)
	case r.DryRun && r.HasChanges():
		fmt.Fprintf(&b, "Dry run for %s: would apply %s", r.Attribute, counts)
		if r.Refused {
			fmt.Fprintf(&b, ", but a sync would refuse to write %d values", r.DesiredCount)
		}
	case !r.HasChanges():
		fmt.Fprintf(&b, "%s already up to date (%d values, collisions=%d)", r.Attribute, r.DesiredCount, len(r.Collisions))
	default:
		fmt.Fprintf(&b, "Updated %s: %s", r.Attribute, counts)
		if r.Written && !r.Verified {
			b.WriteString(", verification mismatch")
		}
	}
	return b.String()
}
