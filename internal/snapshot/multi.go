package snapshot

import (
	"context"
	"strings"

	"github.com/agentstation/locsync/pkg/reconciler"
)

// MultiSink saves every snapshot to all of its sinks in order. The first
// failure stops it, so a write never proceeds with a backup missing.
type MultiSink []reconciler.SnapshotSink

// Save implements reconciler.SnapshotSink. The locations are joined with ", ".
func (m MultiSink) Save(ctx context.Context, s Snapshot) (string, error) {
	locations := make([]string, 0, len(m))
	for _, sink := range m {
		loc, err := sink.Save(ctx, s)
		if err != nil {
			return strings.Join(locations, ", "), err
		}
		locations = append(locations, loc)
	}
	return strings.Join(locations, ", "), nil
}
