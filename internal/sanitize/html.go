package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes.
// Provider text (place names, editorial summaries, addresses) is plain text
// for every consumer, so nothing richer is allowed through.
var StrictPolicy = bluemonday.StrictPolicy()

// Text strips all HTML tags and returns plain text.
func Text(input string) string {
	return StrictPolicy.Sanitize(input)
}

// Summary strips HTML, decodes entities the policy escaped and collapses
// runs of whitespace. Use for: editorial summaries shown as descriptions.
func Summary(input string) string {
	plain := html.UnescapeString(StrictPolicy.Sanitize(input))
	return strings.Join(strings.Fields(plain), " ")
}

// TextSlice sanitizes each string in a slice, removing all HTML.
func TextSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	sanitized := make([]string, len(inputs))
	for i, input := range inputs {
		sanitized[i] = Text(input)
	}
	return sanitized
}
