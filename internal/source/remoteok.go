package source

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/whitelist"
)

type remoteOKJob struct {
	ID          FlexString `json:"id"`
	Date        string     `json:"date"`
	Company     string     `json:"company"`
	CompanyLogo string     `json:"company_logo"`
	Logo        string     `json:"logo"`
	Position    string     `json:"position"`
	Tags        FlexList   `json:"tags"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	SalaryMin   FlexNumber `json:"salary_min"`
	SalaryMax   FlexNumber `json:"salary_max"`
	URL         string     `json:"url"`
}

type RemoteOK struct {
	BaseURL string
	fetcher
}

func NewRemoteOK(cfg Config) *RemoteOK {
	return &RemoteOK{BaseURL: "https://remoteok.com", fetcher: newFetcher(cfg)}
}

func (r *RemoteOK) Name() job.Source { return job.SourceRemoteOK }

func (r *RemoteOK) Fetch(ctx context.Context, matcher *whitelist.Matcher) ([]Outcome, error) {
	var items []json.RawMessage
	if err := r.getJSON(ctx, r.BaseURL+"/api", &items); err != nil {
		return nil, err
	}
	var candidates []Candidate
	// the first element is a legal notice, not a job
	for i := 1; i < len(items); i++ {
		var j remoteOKJob
		if err := json.Unmarshal(items[i], &j); err != nil {
			return nil, errors.Wrap(err, "unable to decode remoteok job")
		}
		if strings.TrimSpace(j.Position) == "" || strings.TrimSpace(j.Company) == "" {
			continue
		}
		url := j.URL
		if url == "" {
			url = r.BaseURL + "/remote-jobs/" + j.ID.String()
		}
		candidates = append(candidates, Candidate{
			ExternalID:  j.ID.String(),
			Title:       j.Position,
			Company:     j.Company,
			CompanyLogo: firstNonEmpty(j.CompanyLogo, j.Logo),
			Location:    j.Location,
			Tags:        j.Tags,
			URL:         url,
			Salary:      SalaryRange(j.SalaryMin, j.SalaryMax),
			PostedDate:  ParseTime(j.Date),
			Description: j.Description,
		})
	}
	return NormalizeAll(candidates, r.Name(), matcher), nil
}
