// internal/domain/slug.go
package domain

import (
	"regexp"
	"strings"
)

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces = regexp.MustCompile(`\s+`)
	slugDashes = regexp.MustCompile(`-+`)
)

// Slugify normalizes a free-text identifier into a lowercase, dash-separated
// key: trim, lowercase, strip everything outside letters/digits/spaces/dashes,
// collapse whitespace runs to a single dash, collapse repeated dashes.
// Usernames and group IDs are slugified once at the boundary so every lookup
// afterwards is a plain equality check. Idempotent.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
