// Package whitelist decides whether a job title passes a user's keyword
// filter.
package whitelist

import (
	"regexp"
	"strings"

	"github.com/golang-cafe/remotehq/internal/settings"
)

// Matcher is a compiled whitelist. Build one per fetch pass and share it
// across adapters; it is safe for concurrent use.
type Matcher struct {
	mode    settings.Mode
	exact   map[string]struct{}
	phrases []*regexp.Regexp
}

func New(s settings.Settings) *Matcher {
	m := &Matcher{mode: s.HarvestingMode, exact: make(map[string]struct{}, len(s.WhitelistedTitles))}
	for _, entry := range s.WhitelistedTitles {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if m.mode == settings.ModeExact {
			m.exact[entry] = struct{}{}
			continue
		}
		m.phrases = append(m.phrases, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(entry)+`\b`))
	}
	return m
}

// Match reports whether title passes the whitelist. An empty whitelist
// matches nothing.
func (m *Matcher) Match(title string) bool {
	if m.mode == settings.ModeExact {
		_, ok := m.exact[strings.ToLower(strings.TrimSpace(title))]
		return ok
	}
	for _, re := range m.phrases {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}

// Len is the number of usable whitelist entries.
func (m *Matcher) Len() int {
	if m.mode == settings.ModeExact {
		return len(m.exact)
	}
	return len(m.phrases)
}

// IsJobWhitelisted is a one-shot Match for callers holding only settings.
func IsJobWhitelisted(title string, s settings.Settings) bool {
	return New(s).Match(title)
}
