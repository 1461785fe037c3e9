package source

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FlexString accepts a JSON string or number. Upstreams disagree on whether
// ids are numeric.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(b)
	return nil
}

func (s FlexString) String() string {
	return strings.TrimSpace(string(s))
}

// FlexNumber accepts a JSON number or a numeric string. Anything that does
// not parse is zero.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = 0
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*n = FlexNumber(f)
	}
	return nil
}

// FlexList accepts a JSON array of strings or a single comma separated string.
type FlexList []string

func (l *FlexList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*l = nil
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var items []string
	if b[0] == '[' {
		var raw []FlexString
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		for _, r := range raw {
			items = append(items, r.String())
		}
	} else {
		var s FlexString
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		items = strings.Split(s.String(), ",")
	}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}

func (l FlexList) Join() string {
	return strings.Join(l, ", ")
}

// SalaryRange formats a numeric range as "$100,000 - $150,000". Both bounds
// must be positive.
func SalaryRange(min, max FlexNumber) string {
	if min <= 0 || max <= 0 {
		return ""
	}
	return "$" + humanize.Comma(int64(min)) + " - $" + humanize.Comma(int64(max))
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// ParseTime parses the date formats seen across upstreams. It returns nil
// when s is empty or unrecognised.
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
