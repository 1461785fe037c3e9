package settings

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxWhitelistedTitles = 200
	MaxTitleLength       = 100
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks an update and returns it with the title list canonicalised:
// trimmed, lower-cased and de-duplicated, first occurrence wins.
func (u Update) Validate() (Update, error) {
	if u.WhitelistedTitles == nil && u.HarvestingMode == nil {
		return u, ValidationError{Field: "settings", Message: "nothing to update"}
	}
	if u.HarvestingMode != nil {
		if *u.HarvestingMode != ModeExact && *u.HarvestingMode != ModeFuzzy {
			return u, ValidationError{Field: "harvestingMode", Message: `must be "exact" or "fuzzy"`}
		}
	}
	if u.WhitelistedTitles != nil {
		titles, err := canonicalTitles(*u.WhitelistedTitles)
		if err != nil {
			return u, err
		}
		u.WhitelistedTitles = &titles
	}
	return u, nil
}

func canonicalTitles(in []string) ([]string, error) {
	if len(in) > MaxWhitelistedTitles {
		return nil, ValidationError{
			Field:   "whitelistedTitles",
			Message: fmt.Sprintf("at most %d entries allowed", MaxWhitelistedTitles),
		}
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for i, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			return nil, ValidationError{Field: "whitelistedTitles", Message: fmt.Sprintf("entry %d is empty", i)}
		}
		if utf8.RuneCountInString(t) > MaxTitleLength {
			return nil, ValidationError{
				Field:   "whitelistedTitles",
				Message: fmt.Sprintf("entry %d is longer than %d characters", i, MaxTitleLength),
			}
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// Apply returns s with the validated update applied.
func (s Settings) Apply(u Update) Settings {
	if u.WhitelistedTitles != nil {
		s.WhitelistedTitles = *u.WhitelistedTitles
	}
	if u.HarvestingMode != nil {
		s.HarvestingMode = *u.HarvestingMode
	}
	return s
}
