// Package snapshot stores the allowed values of an attribute before they are
// replaced, so a bad sync can be undone with `locsync restore`.
package snapshot

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/locsync/pkg/constants"
	"github.com/agentstation/locsync/pkg/errors"
	"github.com/agentstation/locsync/pkg/reconciler"
)

// Snapshot is the document written by every sink.
type Snapshot = reconciler.Snapshot

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Name returns the file or object name for s: snapshot-<attribute>-<UTC time>.yaml.
func Name(s Snapshot) string {
	attr := strings.Trim(unsafeChars.ReplaceAllString(s.Attribute, "_"), "_")
	if attr == "" {
		attr = "attribute"
	}
	return "snapshot-" + attr + "-" + s.TakenAt.UTC().Format(constants.TimeFormatFilename) + ".yaml"
}

// Encode renders s as YAML.
func Encode(s Snapshot) ([]byte, error) {
	data, err := yaml.MarshalWithOptions(s, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return nil, errors.WrapParse("yaml", Name(s), err)
	}
	return data, nil
}

// Decode parses a YAML snapshot.
func Decode(data []byte, name string) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict()).Decode(&s); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	if s.Attribute == "" {
		return nil, errors.NewParseError("yaml", name, "missing attribute", nil)
	}
	if s.Values == nil {
		s.Values = []string{}
	}
	return &s, nil
}

// Load reads a snapshot file written by FileSink (or downloaded from S3).
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Decode(data, path)
}
