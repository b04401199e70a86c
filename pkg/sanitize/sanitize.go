// Package sanitize turns raw location names into values Infoblox accepts
// for an enumerated extensible attribute.
package sanitize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agentstation/locsync/pkg/constants"
)

// DefaultMaxLength is the longest enum value Infoblox stores.
const DefaultMaxLength = constants.EnumMaxLength

// Value trims surrounding whitespace and cuts raw to at most maxLen
// characters. Whitespace exposed by the cut is trimmed as well, so
// Value(Value(x)) == Value(x). A maxLen of zero or less uses DefaultMaxLength.
//
// Length is counted in runes. Invalid UTF-8 bytes are preserved and count as
// one character each.
func Value(raw string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	s := strings.TrimSpace(raw)
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	n := 0
	for i := range s {
		if n == maxLen {
			s = s[:i]
			break
		}
		n++
	}

	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// Truncated reports whether Value has to cut raw to fit maxLen.
func Truncated(raw string, maxLen int) bool {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	return utf8.RuneCountInString(strings.TrimSpace(raw)) > maxLen
}
