// Package normalize maps the loosely typed fields upstream job sources send
// into the canonical enumerations stored with every job. Nothing here does I/O.
package normalize

import (
	"strings"

	"github.com/golang-cafe/remotehq/internal/job"
)

// LocationType maps a raw location string onto the allowed location types.
// ok is false when the text names anything else (a country, "onsite", a
// city...) and the job must be dropped.
func LocationType(raw string) (loc job.LocationType, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case lower == "":
		return job.LocationRemote, true
	case strings.Contains(lower, "anywhere"):
		return job.LocationAnywhere, true
	case strings.Contains(lower, "worldwide"), strings.Contains(lower, "world"):
		return job.LocationWorldwide, true
	case strings.Contains(lower, "global"):
		return job.LocationGlobal, true
	case strings.Contains(lower, "apac"), strings.Contains(lower, "asia"):
		return job.LocationRemoteAPAC, true
	case strings.Contains(lower, "remote"):
		return job.LocationRemote, true
	}
	return "", false
}
