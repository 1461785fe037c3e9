package source

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/settings"
	"github.com/golang-cafe/remotehq/internal/whitelist"
)

func defaultMatcher() *whitelist.Matcher {
	return whitelist.New(settings.Default())
}

func TestNormalizeAccepts(t *testing.T) {
	out := Normalize(Candidate{
		ExternalID:  "42",
		Title:       "  Senior Go Engineer ",
		Location:    "Worldwide",
		URL:         "https://example.com/42",
		Description: "<p>Kubernetes &amp; Postgres</p>",
	}, job.SourceRemotive, defaultMatcher())

	require.True(t, out.Accepted())
	assert.Equal(t, "Senior Go Engineer", out.Job.Title)
	assert.Equal(t, UnknownCompany, out.Job.Company)
	assert.Equal(t, job.LocationWorldwide, out.Job.LocationType)
	assert.Equal(t, job.LevelSenior, out.Job.Level)
	assert.Equal(t, []string{"Go", "Kubernetes", "PostgreSQL"}, out.Job.TechTags)
	assert.Equal(t, "Kubernetes & Postgres", out.Job.Description)
	assert.Equal(t, job.SourceRemotive, out.Job.Source)
}

func TestNormalizeRejects(t *testing.T) {
	m := defaultMatcher()

	out := Normalize(Candidate{ExternalID: "1", Title: "Backend Engineer", Location: "onsite", URL: "u"}, job.SourceJobicy, m)
	require.False(t, out.Accepted())
	assert.Equal(t, ReasonLocation, out.Rejection.Reason)

	out = Normalize(Candidate{ExternalID: "2", Title: "Account Executive", URL: "u"}, job.SourceJobicy, m)
	require.False(t, out.Accepted())
	assert.Equal(t, ReasonWhitelist, out.Rejection.Reason)
	assert.Equal(t, "2", out.Rejection.ExternalID)

	out = Normalize(Candidate{ExternalID: "3", Title: "Backend Engineer"}, job.SourceJobicy, m)
	require.False(t, out.Accepted())
	assert.Equal(t, ReasonInvalid, out.Rejection.Reason)
}

func TestNormalizePrefersUpstreamTags(t *testing.T) {
	out := Normalize(Candidate{
		ExternalID: "1",
		Title:      "Python Developer",
		URL:        "u",
		Tags:       []string{"golang", "marketing", "k8s"},
	}, job.SourceRemoteOK, defaultMatcher())
	require.True(t, out.Accepted())
	assert.Equal(t, []string{"Go", "Kubernetes"}, out.Job.TechTags)

	out = Normalize(Candidate{
		ExternalID: "1",
		Title:      "Python Developer",
		URL:        "u",
		Tags:       []string{"marketing"},
	}, job.SourceRemoteOK, defaultMatcher())
	assert.Equal(t, []string{"Python"}, out.Job.TechTags)
}

func TestNormalizeAllCaps(t *testing.T) {
	candidates := make([]Candidate, MaxCandidates+20)
	for i := range candidates {
		candidates[i] = Candidate{ExternalID: "x", Title: "Engineer", URL: "u"}
	}
	assert.Len(t, NormalizeAll(candidates, job.SourceRemotive, defaultMatcher()), MaxCandidates)
}

func TestHashedID(t *testing.T) {
	a := HashedID("wwr", "https://weworkremotely.com/remote-jobs/acme-backend-engineer")
	b := HashedID("wwr", "https://weworkremotely.com/remote-jobs/acme-frontend-engineer")
	assert.True(t, strings.HasPrefix(a, "wwr-"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, HashedID("wwr", "https://weworkremotely.com/remote-jobs/acme-backend-engineer"))
	assert.Len(t, a, len("wwr-")+22)
}

type stubAdapter struct {
	outcomes []Outcome
	err      error
	panic    bool
}

func (s stubAdapter) Name() job.Source { return job.SourceRemotive }

func (s stubAdapter) Fetch(context.Context, *whitelist.Matcher) ([]Outcome, error) {
	if s.panic {
		var m map[string]interface{}
		_ = m["jobs"].([]interface{})
	}
	return s.outcomes, s.err
}

func TestRunSplitsOutcomes(t *testing.T) {
	res := Run(context.Background(), stubAdapter{outcomes: []Outcome{
		{Job: job.Job{ExternalID: "1"}},
		{Rejection: &Rejection{ExternalID: "2", Reason: ReasonLocation}},
	}}, defaultMatcher(), zerolog.Nop())

	require.NoError(t, res.Err)
	assert.Equal(t, job.SourceRemotive, res.Source)
	assert.Len(t, res.Jobs, 1)
	assert.Len(t, res.Rejected, 1)
}

func TestRunContainsFailures(t *testing.T) {
	res := Run(context.Background(), stubAdapter{err: errors.New("boom")}, defaultMatcher(), zerolog.Nop())
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "boom")
	assert.Empty(t, res.Jobs)

	res = Run(context.Background(), stubAdapter{panic: true}, defaultMatcher(), zerolog.Nop())
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "panic")
	assert.Empty(t, res.Jobs)
}

func TestFlexTypes(t *testing.T) {
	var v struct {
		ID    FlexString `json:"id"`
		Min   FlexNumber `json:"min"`
		Max   FlexNumber `json:"max"`
		Bad   FlexNumber `json:"bad"`
		Tags  FlexList   `json:"tags"`
		Types FlexList   `json:"types"`
	}
	err := json.Unmarshal([]byte(`{"id":12345,"min":"100,000","max":150000,"bad":"n/a","tags":"go, react ,,","types":["full_time",3]}`), &v)
	require.NoError(t, err)

	assert.Equal(t, "12345", v.ID.String())
	assert.Equal(t, FlexNumber(100000), v.Min)
	assert.Equal(t, FlexNumber(0), v.Bad)
	assert.Equal(t, FlexList{"go", "react"}, v.Tags)
	assert.Equal(t, "full_time, 3", v.Types.Join())
	assert.Equal(t, "$100,000 - $150,000", SalaryRange(v.Min, v.Max))
	assert.Equal(t, "", SalaryRange(v.Min, v.Bad))
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-03-01T10:00:00Z", "2024-03-01T10:00:00", "Fri, 01 Mar 2024 10:00:00 +0000", "2024-03-01"} {
		got := ParseTime(s)
		require.NotNil(t, got, s)
		assert.Equal(t, 2024, got.Year(), s)
	}
	assert.Nil(t, ParseTime(""))
	assert.Nil(t, ParseTime("yesterday"))
}
