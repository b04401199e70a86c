package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/locsync/internal/infoblox"
	"github.com/agentstation/locsync/pkg/differ"
	"github.com/agentstation/locsync/pkg/errors"
)

const testRef = "extensibleattributedef/ZG5z:Location"

type fakeSource struct {
	names []string
	err   error
	calls int
}

func (f *fakeSource) FetchLocations(_ context.Context) (differ.Set, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return differ.NewSet(f.names...), nil
}

// fakeTarget stores allowed values in memory and records every call.
type fakeTarget struct {
	values   differ.Set
	readErr  error
	writeErr error

	// verifyErr fails reads after a write.
	verifyErr error
	// drift is added by the "server" after each write.
	drift string

	reads  int
	writes [][]string
}

func newFakeTarget(values ...string) *fakeTarget {
	return &fakeTarget{values: differ.NewSet(values...)}
}

func (f *fakeTarget) GetAttributeDefinition(_ context.Context, name string) (*infoblox.AttributeDefinition, error) {
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.writes) > 0 && f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &infoblox.AttributeDefinition{
		Ref:    testRef,
		Name:   name,
		Type:   "ENUM",
		Values: differ.NewSet(f.values.Sorted()...),
	}, nil
}

func (f *fakeTarget) SetAllowedValues(_ context.Context, ref string, values differ.Set) error {
	if ref != testRef {
		return fmt.Errorf("unexpected ref %q", ref)
	}
	f.writes = append(f.writes, values.Sorted())
	if f.writeErr != nil {
		return f.writeErr
	}
	f.values = differ.NewSet(values.Sorted()...)
	if f.drift != "" {
		f.values.Add(f.drift)
	}
	return nil
}

type fakeSink struct {
	saved []Snapshot
	err   error
}

func (f *fakeSink) Save(_ context.Context, s Snapshot) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, s)
	return fmt.Sprintf("mem://%s-%s", s.Attribute, s.TakenAt.Format(time.RFC3339)), nil
}

var (
	errSourceAuth = errors.NewAuthenticationError(errors.SystemSource, "basic", "credentials rejected", nil)
	errTargetDown = errors.NewUnavailableError(errors.SystemTarget, "read attribute", fmt.Errorf("connection refused"))
)
