package normalize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxDescriptionLength is the rune limit on stored descriptions.
const MaxDescriptionLength = 500

var strictPolicy = bluemonday.StrictPolicy()

// PlainText strips markup from an upstream HTML fragment, decodes entities
// and collapses runs of whitespace.
func PlainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	// keep adjacent block elements from gluing their words together
	spaced := strings.ReplaceAll(fragment, "<", " <")
	stripped := html.UnescapeString(strictPolicy.Sanitize(spaced))
	return strings.Join(strings.Fields(stripped), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Description produces the stored description for a raw upstream body.
func Description(fragment string) string {
	return Truncate(PlainText(fragment), MaxDescriptionLength)
}
