// internal/domain/slug_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Lowercase", "Alice", "alice"},
		{"TrimsWhitespace", "  bob  ", "bob"},
		{"SpacesBecomeDashes", "Jane Doe", "jane-doe"},
		{"WhitespaceRunCollapses", "jane \t doe", "jane-doe"},
		{"StripsPunctuation", "O'Brien!", "obrien"},
		{"KeepsDigitsAndDashes", "flat-4b", "flat-4b"},
		{"CollapsesDashRuns", "a--b---c", "a-b-c"},
		{"TrimsLeadingTrailingDashes", "-alice-", "alice"},
		{"MixedCaseWithSymbols", "The Smiths @ Home", "the-smiths-home"},
		{"Empty", "", ""},
		{"OnlySymbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

// Applying Slugify to an already-normalized value must be a no-op, since
// identifiers pass through the boundary more than once.
func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{"Alice", "  Jane Doe ", "flat-4b", "a--b", "O'Brien!"}
	for _, input := range inputs {
		once := Slugify(input)
		assert.Equal(t, once, Slugify(once), "input %q", input)
	}
}
