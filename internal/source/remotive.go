package source

import (
	"context"

	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/whitelist"
)

type remotiveResponse struct {
	Jobs []struct {
		ID                        FlexString `json:"id"`
		URL                       string     `json:"url"`
		Title                     string     `json:"title"`
		CompanyName               string     `json:"company_name"`
		CompanyLogo               string     `json:"company_logo"`
		JobType                   string     `json:"job_type"`
		PublicationDate           string     `json:"publication_date"`
		CandidateRequiredLocation string     `json:"candidate_required_location"`
		Salary                    string     `json:"salary"`
		Description               string     `json:"description"`
	} `json:"jobs"`
}

type Remotive struct {
	BaseURL string
	fetcher
}

func NewRemotive(cfg Config) *Remotive {
	return &Remotive{BaseURL: "https://remotive.com", fetcher: newFetcher(cfg)}
}

func (r *Remotive) Name() job.Source { return job.SourceRemotive }

func (r *Remotive) Fetch(ctx context.Context, matcher *whitelist.Matcher) ([]Outcome, error) {
	var res remotiveResponse
	if err := r.getJSON(ctx, r.BaseURL+"/api/remote-jobs?category=software-dev&limit=100", &res); err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(res.Jobs))
	for _, j := range res.Jobs {
		candidates = append(candidates, Candidate{
			ExternalID:  j.ID.String(),
			Title:       j.Title,
			Company:     j.CompanyName,
			CompanyLogo: j.CompanyLogo,
			Location:    j.CandidateRequiredLocation,
			URL:         j.URL,
			Salary:      j.Salary,
			PostedDate:  ParseTime(j.PublicationDate),
			Description: j.Description,
			JobType:     j.JobType,
		})
	}
	return NormalizeAll(candidates, r.Name(), matcher), nil
}
