package source

import (
	"context"

	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/whitelist"
)

type workingNomadsJob struct {
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	CompanyName  string   `json:"company_name"`
	CategoryName string   `json:"category_name"`
	Tags         FlexList `json:"tags"`
	Location     string   `json:"location"`
	PubDate      string   `json:"pub_date"`
}

type WorkingNomads struct {
	BaseURL string
	fetcher
}

func NewWorkingNomads(cfg Config) *WorkingNomads {
	return &WorkingNomads{BaseURL: "https://www.workingnomads.com", fetcher: newFetcher(cfg)}
}

func (w *WorkingNomads) Name() job.Source { return job.SourceWorkingNomads }

func (w *WorkingNomads) Fetch(ctx context.Context, matcher *whitelist.Matcher) ([]Outcome, error) {
	var jobs []workingNomadsJob
	if err := w.getJSON(ctx, w.BaseURL+"/api/exposed_jobs/?category=development", &jobs); err != nil {
		return nil, err
	}
	var candidates []Candidate
	for _, j := range jobs {
		if j.Title == "" || j.URL == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			ExternalID:  HashedID("wn", j.URL),
			Title:       j.Title,
			Company:     j.CompanyName,
			Location:    j.Location,
			Tags:        j.Tags,
			URL:         j.URL,
			PostedDate:  ParseTime(j.PubDate),
			Description: j.Description,
		})
	}
	return NormalizeAll(candidates, w.Name(), matcher), nil
}
