// Package source holds one adapter per upstream job board. Each adapter
// fetches its upstream, maps the raw records to Candidates and runs them
// through Normalize, which yields either a canonical job.Job or an explicit
// Rejection.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/normalize"
	"github.com/golang-cafe/remotehq/internal/whitelist"
)

// MaxCandidates is how many upstream records a single adapter normalizes per pass.
const MaxCandidates = 100

const UnknownCompany = "Unknown"

type Adapter interface {
	Name() job.Source
	Fetch(ctx context.Context, matcher *whitelist.Matcher) ([]Outcome, error)
}

// Candidate is an upstream record mapped onto common field names but not yet
// normalized.
type Candidate struct {
	ExternalID  string
	Title       string
	Company     string
	CompanyLogo string
	Location    string
	Level       normalize.RawLevel
	Tags        []string
	URL         string
	Salary      string
	PostedDate  *time.Time
	Description string
	JobType     string
}

type Reason string

const (
	ReasonLocation  Reason = "location"
	ReasonWhitelist Reason = "whitelist"
	ReasonInvalid   Reason = "invalid"
)

type Rejection struct {
	ExternalID string
	Title      string
	Reason     Reason
}

// Outcome is the result of normalizing one Candidate. Exactly one of Job and
// Rejection is meaningful: Rejection is nil for accepted candidates.
type Outcome struct {
	Job       job.Job
	Rejection *Rejection
}

func (o Outcome) Accepted() bool {
	return o.Rejection == nil
}

func reject(c Candidate, reason Reason) Outcome {
	return Outcome{Rejection: &Rejection{ExternalID: c.ExternalID, Title: c.Title, Reason: reason}}
}

// Normalize turns a candidate into a canonical job for src, or rejects it.
// Location is checked before the whitelist.
func Normalize(c Candidate, src job.Source, matcher *whitelist.Matcher) Outcome {
	c.Title = strings.TrimSpace(c.Title)
	c.URL = strings.TrimSpace(c.URL)
	if c.Title == "" || c.URL == "" || c.ExternalID == "" {
		return reject(c, ReasonInvalid)
	}
	loc, ok := normalize.LocationType(c.Location)
	if !ok {
		return reject(c, ReasonLocation)
	}
	if !matcher.Match(c.Title) {
		return reject(c, ReasonWhitelist)
	}

	description := normalize.Description(c.Description)
	tags := normalize.MergeTags(nil, c.Tags)
	if len(tags) == 0 {
		tags = normalize.TechTags(c.Title, description)
	}
	company := strings.TrimSpace(c.Company)
	if company == "" {
		company = UnknownCompany
	}

	return Outcome{Job: job.Job{
		ExternalID:   c.ExternalID,
		Title:        c.Title,
		Company:      company,
		CompanyLogo:  strings.TrimSpace(c.CompanyLogo),
		LocationType: loc,
		Level:        normalize.Level(c.Level, c.Title),
		TechTags:     tags,
		URL:          c.URL,
		Source:       src,
		Salary:       strings.TrimSpace(c.Salary),
		PostedDate:   c.PostedDate,
		Description:  description,
		JobType:      strings.TrimSpace(c.JobType),
	}}
}

// NormalizeAll normalizes at most MaxCandidates candidates.
func NormalizeAll(candidates []Candidate, src job.Source, matcher *whitelist.Matcher) []Outcome {
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	outcomes := make([]Outcome, 0, len(candidates))
	for _, c := range candidates {
		outcomes = append(outcomes, Normalize(c, src, matcher))
	}
	return outcomes
}

// HashedID derives a stable external id from a detail URL for sources that
// publish no native identifier.
func HashedID(tag, url string) string {
	sum := sha256.Sum256([]byte(url))
	return tag + "-" + base64.RawURLEncoding.EncodeToString(sum[:16])
}

// Result is what one adapter run contributed to a fetch pass.
type Result struct {
	Source   job.Source
	Jobs     []job.Job
	Rejected []Rejection
	Err      error
}

// Run executes a single adapter. Errors and panics from the adapter never
// escape: they are logged and reported through Result.Err with no jobs.
func Run(ctx context.Context, a Adapter, matcher *whitelist.Matcher, log zerolog.Logger) (res Result) {
	res.Source = a.Name()
	defer func() {
		if r := recover(); r != nil {
			res = Result{Source: a.Name(), Err: fmt.Errorf("adapter panic: %v", r)}
			log.Error().Err(res.Err).Msg("adapter failed")
		}
	}()

	outcomes, err := a.Fetch(ctx, matcher)
	if err != nil {
		res.Err = errors.Wrapf(err, "%s fetch", a.Name())
		log.Error().Err(res.Err).Msg("adapter failed")
		return res
	}
	for _, o := range outcomes {
		if o.Accepted() {
			res.Jobs = append(res.Jobs, o.Job)
			continue
		}
		res.Rejected = append(res.Rejected, *o.Rejection)
	}
	log.Debug().Int("accepted", len(res.Jobs)).Int("rejected", len(res.Rejected)).Msg("adapter finished")
	return res
}
