package fetchlog

import (
	"time"

	"github.com/golang-cafe/remotehq/internal/job"
)

// Entry records one adapter run. Entries are append-only.
type Entry struct {
	ID        int        `json:"id"`
	Source    job.Source `json:"source"`
	JobsFound int        `json:"jobsFound"`
	JobsAdded int        `json:"jobsAdded"`
	Success   bool       `json:"success"`
	Error     string     `json:"error,omitempty"`
	FetchedAt time.Time  `json:"fetchedAt"`
}
