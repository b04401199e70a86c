package differ

import "fmt"

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a value becomes allowed.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeRemove indicates a value stops being allowed. Infoblox clears
	// it from every object that carries it.
	ChangeTypeRemove ChangeType = "remove"
)

// Change is a single value entering or leaving the allowed list.
type Change struct {
	Type  ChangeType `json:"type" yaml:"type"`
	Value string     `json:"value" yaml:"value"`
}

// Changeset represents the difference between two allowed-value lists.
type Changeset struct {
	Added     []string         `json:"added" yaml:"added"`
	Removed   []string         `json:"removed" yaml:"removed"`
	Unchanged []string         `json:"-" yaml:"-"`
	Summary   ChangesetSummary `json:"summary" yaml:"summary"`
}

// ChangesetSummary provides summary statistics for a changeset.
type ChangesetSummary struct {
	Added     int `json:"added" yaml:"added"`
	Removed   int `json:"removed" yaml:"removed"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Total     int `json:"total" yaml:"total"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.Total > 0
}

// Changes flattens the changeset, removals first.
func (c *Changeset) Changes() []Change {
	out := make([]Change, 0, len(c.Added)+len(c.Removed))
	for _, v := range c.Removed {
		out = append(out, Change{Type: ChangeTypeRemove, Value: v})
	}
	for _, v := range c.Added {
		out = append(out, Change{Type: ChangeTypeAdd, Value: v})
	}
	return out
}

// String returns a one-line summary.
func (c *Changeset) String() string {
	if !c.HasChanges() {
		return "no changes"
	}
	return fmt.Sprintf("%d added, %d removed, %d unchanged", c.Summary.Added, c.Summary.Removed, c.Summary.Unchanged)
}
