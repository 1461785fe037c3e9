package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/normalize"
	"github.com/golang-cafe/remotehq/internal/whitelist"
)

const (
	himalayasBatchSize  = 20
	himalayasMaxBatches = 5
)

var (
	himalayasTechCategory = regexp.MustCompile(`(?i)software|engineer|develop|programming|devops|data|tech|full.?stack|front.?end|back.?end|mobile|cloud|security|sre|platform`)
	himalayasTechTitle    = regexp.MustCompile(`(?i)engineer|developer|programmer|devops|sre|architect|data|software|full.?stack|front.?end|back.?end|platform`)
)

type himalayasJob struct {
	ID                   FlexString         `json:"id"`
	Slug                 string             `json:"slug"`
	Title                string             `json:"title"`
	Excerpt              string             `json:"excerpt"`
	Description          string             `json:"description"`
	CompanyName          string             `json:"companyName"`
	CompanyNameAlt       string             `json:"company_name"`
	CompanyLogo          string             `json:"companyLogo"`
	EmploymentType       string             `json:"employmentType"`
	MinSalary            FlexNumber         `json:"minSalary"`
	MaxSalary            FlexNumber         `json:"maxSalary"`
	Seniority            normalize.RawLevel `json:"seniority"`
	LocationRestrictions FlexList           `json:"locationRestrictions"`
	Categories           FlexList           `json:"categories"`
	ApplicationLink      string             `json:"applicationLink"`
	URL                  string             `json:"url"`
	PubDate              FlexString         `json:"pubDate"`
	PostedDate           FlexString         `json:"postedDate"`
}

// isTech keeps only engineering roles; the Himalayas feed is not
// pre-filtered by category.
func (j himalayasJob) isTech() bool {
	for _, c := range j.Categories {
		if himalayasTechCategory.MatchString(c) {
			return true
		}
	}
	return himalayasTechTitle.MatchString(j.Title)
}

func (j himalayasJob) candidate() Candidate {
	id := firstNonEmpty(j.ID.String(), j.Slug)
	if id == "" {
		id = "him-" + slug.Make(j.CompanyName+" "+j.Title)
	}
	location := "Worldwide"
	if len(j.LocationRestrictions) > 0 {
		location = j.LocationRestrictions.Join()
	}
	ref := firstNonEmpty(j.Slug, j.ID.String())
	url := firstNonEmpty(j.ApplicationLink, j.URL)
	if url == "" && ref != "" {
		url = "https://himalayas.app/jobs/" + ref
	}
	return Candidate{
		ExternalID:  id,
		Title:       j.Title,
		Company:     firstNonEmpty(j.CompanyName, j.CompanyNameAlt),
		CompanyLogo: j.CompanyLogo,
		Location:    location,
		Level:       j.Seniority,
		URL:         url,
		Salary:      SalaryRange(j.MinSalary, j.MaxSalary),
		PostedDate:  himalayasTime(firstNonEmpty(j.PubDate.String(), j.PostedDate.String())),
		Description: firstNonEmpty(j.Excerpt, j.Description),
		JobType:     j.EmploymentType,
	}
}

// himalayasTime handles both unix seconds and formatted dates.
func himalayasTime(s string) *time.Time {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.Unix(secs, 0).UTC()
		return &t
	}
	return ParseTime(s)
}

type Himalayas struct {
	BaseURL string
	// BatchDelay throttles consecutive batch requests.
	BatchDelay time.Duration
	fetcher
}

func NewHimalayas(cfg Config) *Himalayas {
	return &Himalayas{BaseURL: "https://himalayas.app", BatchDelay: 500 * time.Millisecond, fetcher: newFetcher(cfg)}
}

func (h *Himalayas) Name() job.Source { return job.SourceHimalayas }

func (h *Himalayas) Fetch(ctx context.Context, matcher *whitelist.Matcher) ([]Outcome, error) {
	limiter := rate.NewLimiter(rate.Every(h.BatchDelay), 1)
	var candidates []Candidate
	for batch := 0; batch < himalayasMaxBatches; batch++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "himalayas throttle")
		}
		url := fmt.Sprintf("%s/jobs/api?limit=%d&offset=%d", h.BaseURL, himalayasBatchSize, batch*himalayasBatchSize)
		jobs, err := h.batch(ctx, url)
		if err != nil {
			return nil, err
		}
		if len(jobs) == 0 {
			break
		}
		for _, j := range jobs {
			if j.isTech() {
				candidates = append(candidates, j.candidate())
			}
		}
	}
	return NormalizeAll(candidates, h.Name(), matcher), nil
}

// batch decodes either a bare array or an object wrapping it under "jobs".
func (h *Himalayas) batch(ctx context.Context, url string) ([]himalayasJob, error) {
	var raw json.RawMessage
	if err := h.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	var jobs []himalayasJob
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &jobs); err != nil {
			return nil, errors.Wrap(err, "unable to decode himalayas batch")
		}
		return jobs, nil
	}
	var wrapped struct {
		Jobs []himalayasJob `json:"jobs"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.Wrap(err, "unable to decode himalayas batch")
	}
	return wrapped.Jobs, nil
}
