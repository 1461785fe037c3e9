package source

import (
	"context"

	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/normalize"
	"github.com/golang-cafe/remotehq/internal/whitelist"
)

type jobicyResponse struct {
	Jobs []struct {
		ID              FlexString         `json:"id"`
		URL             string             `json:"url"`
		JobTitle        string             `json:"jobTitle"`
		CompanyName     string             `json:"companyName"`
		CompanyLogo     string             `json:"companyLogo"`
		JobIndustry     FlexList           `json:"jobIndustry"`
		JobType         FlexList           `json:"jobType"`
		JobGeo          string             `json:"jobGeo"`
		JobLevel        normalize.RawLevel `json:"jobLevel"`
		JobExcerpt      string             `json:"jobExcerpt"`
		JobDescription  string             `json:"jobDescription"`
		PubDate         string             `json:"pubDate"`
		AnnualSalaryMin FlexNumber         `json:"annualSalaryMin"`
		AnnualSalaryMax FlexNumber         `json:"annualSalaryMax"`
	} `json:"jobs"`
}

type Jobicy struct {
	BaseURL string
	fetcher
}

func NewJobicy(cfg Config) *Jobicy {
	return &Jobicy{BaseURL: "https://jobicy.com", fetcher: newFetcher(cfg)}
}

func (j *Jobicy) Name() job.Source { return job.SourceJobicy }

func (j *Jobicy) Fetch(ctx context.Context, matcher *whitelist.Matcher) ([]Outcome, error) {
	var res jobicyResponse
	if err := j.getJSON(ctx, j.BaseURL+"/api/v2/remote-jobs?count=50&industry=dev", &res); err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(res.Jobs))
	for _, r := range res.Jobs {
		candidates = append(candidates, Candidate{
			ExternalID:  r.ID.String(),
			Title:       r.JobTitle,
			Company:     r.CompanyName,
			CompanyLogo: r.CompanyLogo,
			Location:    r.JobGeo,
			Level:       r.JobLevel,
			URL:         r.URL,
			Salary:      SalaryRange(r.AnnualSalaryMin, r.AnnualSalaryMax),
			PostedDate:  ParseTime(r.PubDate),
			Description: firstNonEmpty(r.JobDescription, r.JobExcerpt),
			JobType:     r.JobType.Join(),
		})
	}
	return NormalizeAll(candidates, j.Name(), matcher), nil
}
