package normalize

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/golang-cafe/remotehq/internal/job"
)

// DetectLevel infers a seniority level from a job title. The first match in
// priority order wins; an empty level means none was found.
func DetectLevel(title string) job.Level {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "principal"):
		return job.LevelPrincipal
	case strings.Contains(lower, "staff"):
		return job.LevelStaff
	case strings.Contains(lower, "lead"):
		return job.LevelLead
	case strings.Contains(lower, "senior"), strings.Contains(lower, "sr."), strings.Contains(lower, "sr "):
		return job.LevelSenior
	case strings.Contains(lower, "junior"), strings.Contains(lower, "jr."), strings.Contains(lower, "jr "):
		return job.LevelJunior
	case strings.Contains(lower, "mid-level"), strings.Contains(lower, "mid level"), strings.Contains(lower, "midweight"):
		return job.LevelMid
	case strings.Contains(lower, "intern"):
		return job.LevelIntern
	case strings.Contains(lower, "director"):
		return job.LevelDirector
	case strings.Contains(lower, "manager"):
		return job.LevelManager
	}
	return ""
}

// RawLevel holds an upstream seniority field whatever JSON shape it arrived
// in: strings are kept, arrays are joined with ", " and anything else keeps
// its JSON text.
type RawLevel string

func (l *RawLevel) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = RawLevel(s)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				parts = append(parts, s)
				continue
			}
			parts = append(parts, string(item))
		}
		*l = RawLevel(strings.Join(parts, ", "))
	default:
		*l = RawLevel(b)
	}
	return nil
}

var levelCleaner = strings.NewReplacer("{", "", "}", "", `"`, "", "[", "", "]", "")

// MaxLevelLength is the rune limit on a raw level kept verbatim.
const MaxLevelLength = 100

// Level resolves a job's level from the upstream's own level field, falling
// back to the title. An unrecognised non-empty raw level is kept, cut to
// MaxLevelLength runes.
func Level(raw RawLevel, title string) job.Level {
	cleaned := strings.TrimSpace(levelCleaner.Replace(string(raw)))
	if cleaned == "" {
		return DetectLevel(title)
	}
	lower := strings.ToLower(cleaned)
	switch {
	case strings.Contains(lower, "principal"):
		return job.LevelPrincipal
	case strings.Contains(lower, "staff"):
		return job.LevelStaff
	case strings.Contains(lower, "lead"):
		return job.LevelLead
	case strings.Contains(lower, "senior"), strings.Contains(lower, "sr"):
		return job.LevelSenior
	case strings.Contains(lower, "mid"):
		return job.LevelMid
	case strings.Contains(lower, "junior"), strings.Contains(lower, "jr"), strings.Contains(lower, "entry"):
		return job.LevelJunior
	case strings.Contains(lower, "intern"):
		return job.LevelIntern
	case strings.Contains(lower, "director"):
		return job.LevelDirector
	case strings.Contains(lower, "manager"):
		return job.LevelManager
	case strings.Contains(lower, "executive"):
		return job.LevelExecutive
	case lower == "any":
		return DetectLevel(title)
	}
	if detected := DetectLevel(title); detected != "" {
		return detected
	}
	return job.Level(strings.TrimSpace(Truncate(cleaned, MaxLevelLength)))
}
