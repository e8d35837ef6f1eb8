// Package normalize turns raw user input into a validated lowercase hostname.
package normalize

import (
	"strings"

	"geotrace/internal/domain"
)

// Recognized scheme prefixes, checked in priority order; at most one is
// stripped.
var schemes = []string{"https://", "http://", "ftp://"}

const minLength = 3

// Domain normalizes a raw user-supplied domain: trims whitespace, lowercases,
// strips one leading scheme, and truncates at the first path, query or
// fragment separator so only the authority component remains. Idempotent for
// valid input.
func Domain(raw string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(raw))

	for _, s := range schemes {
		if strings.HasPrefix(d, s) {
			d = d[len(s):]
			break
		}
	}

	// Drop leading www. labels; repeated so normalization stays idempotent
	// even for inputs like www.www.example.com.
	for strings.HasPrefix(d, "www.") {
		d = d[len("www."):]
	}

	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}

	if d == "" {
		return "", &domain.ValidationError{Input: raw, Reason: "empty after normalization"}
	}
	if len(d) < minLength {
		return "", &domain.ValidationError{Input: raw, Reason: "too short"}
	}
	return d, nil
}
