package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/normalize"
	"github.com/golang-cafe/remotehq/internal/whitelist"
)

const (
	museMaxPages  = 5
	museBatchSize = 5
	// MaxDetailLookups bounds the second phase of one pass to the upstream's
	// hourly quota. It applies before the MaxCandidates cap on the output.
	MaxDetailLookups = 500
)

type museNamed struct {
	Name string `json:"name"`
}

type museJob struct {
	ID              FlexString  `json:"id"`
	Name            string      `json:"name"`
	Contents        string      `json:"contents"`
	PublicationDate string      `json:"publication_date"`
	Type            string      `json:"type"`
	Locations       []museNamed `json:"locations"`
	Levels          []museNamed `json:"levels"`
	Refs            struct {
		LandingPage string `json:"landing_page"`
	} `json:"refs"`
	Company struct {
		ID   FlexString `json:"id"`
		Name string     `json:"name"`
	} `json:"company"`
}

type musePage struct {
	Page      int       `json:"page"`
	PageCount int       `json:"page_count"`
	Results   []museJob `json:"results"`
}

func joinNames(named []museNamed) string {
	names := make([]string, 0, len(named))
	for _, n := range named {
		if n.Name != "" {
			names = append(names, n.Name)
		}
	}
	return strings.Join(names, ", ")
}

// TheMuse lists jobs page by page and then looks up the company of every
// listing that arrived without one.
type TheMuse struct {
	BaseURL string
	APIKey  string
	// BatchDelay throttles page requests and detail batches.
	BatchDelay time.Duration
	// Companies caches job id -> company name across passes. Optional.
	Companies *bigcache.BigCache
	log       zerolog.Logger
	fetcher

	maxLookups int
	lookup     func(ctx context.Context, id string) (string, error)
}

func NewTheMuse(cfg Config, companies *bigcache.BigCache, log zerolog.Logger) *TheMuse {
	m := &TheMuse{
		BaseURL:    "https://www.themuse.com",
		APIKey:     cfg.TheMuseAPIKey,
		BatchDelay: 500 * time.Millisecond,
		Companies:  companies,
		log:        log.With().Str("source", string(job.SourceTheMuse)).Logger(),
		fetcher:    newFetcher(cfg),
		maxLookups: MaxDetailLookups,
	}
	m.lookup = m.company
	return m
}

func (m *TheMuse) Name() job.Source { return job.SourceTheMuse }

func (m *TheMuse) Fetch(ctx context.Context, matcher *whitelist.Matcher) ([]Outcome, error) {
	limiter := rate.NewLimiter(rate.Every(m.BatchDelay), 1)
	jobs, err := m.list(ctx, limiter)
	if err != nil {
		return nil, err
	}
	if err := m.resolveCompanies(ctx, limiter, jobs); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(jobs))
	for _, j := range jobs {
		candidates = append(candidates, Candidate{
			ExternalID:  j.ID.String(),
			Title:       j.Name,
			Company:     j.Company.Name,
			Location:    joinNames(j.Locations),
			Level:       normalize.RawLevel(joinNames(j.Levels)),
			URL:         j.Refs.LandingPage,
			PostedDate:  ParseTime(j.PublicationDate),
			Description: j.Contents,
			JobType:     j.Type,
		})
	}
	return NormalizeAll(candidates, m.Name(), matcher), nil
}

func (m *TheMuse) list(ctx context.Context, limiter *rate.Limiter) ([]museJob, error) {
	var jobs []museJob
	for page := 0; page < museMaxPages; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "themuse throttle")
		}
		params := url.Values{}
		params.Set("category", "Software Engineering")
		params.Set("location", "Flexible / Remote")
		params.Set("page", strconv.Itoa(page))
		if m.APIKey != "" {
			params.Set("api_key", m.APIKey)
		}
		var res musePage
		if err := m.getJSON(ctx, m.BaseURL+"/api/public/jobs?"+params.Encode(), &res); err != nil {
			return nil, err
		}
		jobs = append(jobs, res.Results...)
		if len(res.Results) == 0 || page+1 >= res.PageCount {
			break
		}
	}
	return jobs, nil
}

// resolveCompanies fills in missing company names from the cache or from
// the job detail endpoint, museBatchSize lookups at a time. A failed lookup
// leaves the name empty.
func (m *TheMuse) resolveCompanies(ctx context.Context, limiter *rate.Limiter, jobs []museJob) error {
	var pending []int
	for i := range jobs {
		if strings.TrimSpace(jobs[i].Company.Name) != "" {
			continue
		}
		if name, ok := m.cached(jobs[i].ID.String()); ok {
			jobs[i].Company.Name = name
			continue
		}
		if len(pending) < m.maxLookups {
			pending = append(pending, i)
		}
	}

	for start := 0; start < len(pending); start += museBatchSize {
		end := start + museBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		if err := limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "themuse throttle")
		}
		var g errgroup.Group
		g.SetLimit(museBatchSize)
		for _, idx := range pending[start:end] {
			idx := idx
			g.Go(func() error {
				id := jobs[idx].ID.String()
				defer func() {
					if r := recover(); r != nil {
						m.log.Warn().Err(fmt.Errorf("lookup panic: %v", r)).Str("job", id).Msg("company lookup failed")
					}
				}()
				name, err := m.lookup(ctx, id)
				if err != nil {
					m.log.Warn().Err(err).Str("job", id).Msg("company lookup failed")
					return nil
				}
				jobs[idx].Company.Name = name
				m.cache(id, name)
				return nil
			})
		}
		_ = g.Wait()
	}
	return ctx.Err()
}

func (m *TheMuse) company(ctx context.Context, id string) (string, error) {
	detail := m.BaseURL + "/api/public/jobs/" + url.PathEscape(id)
	if m.APIKey != "" {
		detail += "?api_key=" + url.QueryEscape(m.APIKey)
	}
	var res museJob
	if err := m.getJSON(ctx, detail, &res); err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Company.Name), nil
}

func (m *TheMuse) cached(id string) (string, bool) {
	if m.Companies == nil || id == "" {
		return "", false
	}
	b, err := m.Companies.Get("themuse:" + id)
	if err != nil || len(b) == 0 {
		return "", false
	}
	return string(b), true
}

func (m *TheMuse) cache(id, name string) {
	if m.Companies == nil || id == "" || name == "" {
		return
	}
	if err := m.Companies.Set("themuse:"+id, []byte(name)); err != nil {
		m.log.Warn().Err(err).Str("job", id).Msg("unable to cache company")
	}
}
