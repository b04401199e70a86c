package differ

import (
	"slices"
	"strings"
)

// Set is a set of enum values compared by exact string match.
type Set map[string]struct{}

// NewSet returns a set holding values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v and reports whether it was new.
func (s Set) Add(v string) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}

// Has reports whether v is in the set.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of values.
func (s Set) Len() int {
	return len(s)
}

// Equal reports whether both sets hold exactly the same values.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// Sorted returns the values ordered by their "/"-separated path segments,
// so "CZ/Brno" sorts before "CZ/Brno/Campus" and before "CZ/Prague".
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.SortFunc(out, ComparePaths)
	return out
}

// ComparePaths orders two location paths segment by segment.
func ComparePaths(a, b string) int {
	if c := slices.Compare(strings.Split(a, "/"), strings.Split(b, "/")); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
