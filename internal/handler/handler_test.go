package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-cafe/remotehq/internal/config"
	"github.com/golang-cafe/remotehq/internal/fetchlog"
	"github.com/golang-cafe/remotehq/internal/harvester"
	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/server"
	"github.com/golang-cafe/remotehq/internal/settings"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() server.Server {
	return server.NewServer(config.Config{Env: "dev", JobsPerPage: 10}, nil, mux.NewRouter(), nil, zerolog.Nop())
}

func TestParseJobQueryDefaults(t *testing.T) {
	q, err := parseJobQuery(url.Values{}, 10)
	require.NoError(t, err)
	assert.Equal(t, job.Query{Page: 1, Limit: 10, Sort: job.SortRecent}, q)
}

func TestParseJobQueryClampsLimit(t *testing.T) {
	for raw, want := range map[string]int{
		"0":    1,
		"-3":   1,
		"25":   25,
		"500":  50,
		"junk": 10,
	} {
		q, err := parseJobQuery(url.Values{"limit": {raw}}, 10)
		require.NoError(t, err)
		assert.Equal(t, want, q.Limit, raw)
	}
}

func TestParseJobQueryFilters(t *testing.T) {
	q, err := parseJobQuery(url.Values{
		"page":      {"3"},
		"search":    {"  golang "},
		"level":     {"Senior"},
		"companies": {"Acme, ,Globex,"},
		"lifecycle": {"active"},
		"sort":      {"pay"},
	}, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, "golang", q.Search)
	assert.Equal(t, "Senior", q.Level)
	assert.Equal(t, []string{"Acme", "Globex"}, q.Companies)
	assert.Equal(t, job.LifecycleActive, q.Lifecycle)
	assert.Equal(t, job.SortPay, q.Sort)
}

func TestParseJobQueryRejectsUnknownValues(t *testing.T) {
	_, err := parseJobQuery(url.Values{"sort": {"salary"}}, 10)
	assert.Error(t, err)
	_, err = parseJobQuery(url.Values{"lifecycle": {"archived"}}, 10)
	assert.Error(t, err)
}

type fakeJobRepo struct {
	query    job.Query
	result   job.QueryResult
	setID    int
	setTo    job.Status
	setErr   error
	latest   []job.PersistedJob
	statsErr error
}

func (f *fakeJobRepo) JobsByQuery(q job.Query) (job.QueryResult, error) {
	f.query = q
	return f.result, nil
}

func (f *fakeJobRepo) SetJobStatus(id int, status job.Status) (job.PersistedJob, error) {
	f.setID, f.setTo = id, status
	if f.setErr != nil {
		return job.PersistedJob{}, f.setErr
	}
	return job.PersistedJob{ID: id, Status: status}, nil
}

func (f *fakeJobRepo) LatestJobs(limit int) ([]job.PersistedJob, error) {
	return f.latest, nil
}

func (f *fakeJobRepo) GetStats() (job.Stats, error) {
	return job.Stats{TotalJobs: 3}, f.statsErr
}

type fakeFetchLogs struct{}

func (fakeFetchLogs) Recent(n int) ([]fetchlog.Entry, error) {
	return []fetchlog.Entry{{ID: 1, Source: job.SourceRemotive, Success: true}}, nil
}

func TestListJobsHandler(t *testing.T) {
	repo := &fakeJobRepo{result: job.QueryResult{Jobs: []job.PersistedJob{{ID: 7}}, Total: 1, Page: 1, TotalPages: 1}}
	rec := httptest.NewRecorder()
	ListJobsHandler(newTestServer(), repo)(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?limit=99&search=go", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, repo.query.Limit)
	assert.Equal(t, "go", repo.query.Search)
	var res job.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 7, res.Jobs[0].ID)
}

func TestListJobsHandlerBadSort(t *testing.T) {
	rec := httptest.NewRecorder()
	ListJobsHandler(newTestServer(), &fakeJobRepo{})(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?sort=oldest", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "message")
}

func TestStatsHandlerIncludesRecentFetches(t *testing.T) {
	rec := httptest.NewRecorder()
	StatsHandler(newTestServer(), &fakeJobRepo{}, fakeFetchLogs{})(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var res statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 3, res.TotalJobs)
	require.Len(t, res.RecentFetches, 1)
	assert.Equal(t, job.SourceRemotive, res.RecentFetches[0].Source)
}

func statusRequest(id, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPatch, "/api/jobs/"+id+"/status", strings.NewReader(body))
	return mux.SetURLVars(r, map[string]string{"id": id})
}

func TestUpdateJobStatusHandler(t *testing.T) {
	svr := newTestServer()

	repo := &fakeJobRepo{}
	rec := httptest.NewRecorder()
	UpdateJobStatusHandler(svr, repo)(rec, statusRequest("4", `{"status":"applied"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, repo.setID)
	assert.Equal(t, job.StatusApplied, repo.setTo)

	rec = httptest.NewRecorder()
	UpdateJobStatusHandler(svr, repo)(rec, statusRequest("4", `{"status":null}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, job.StatusNone, repo.setTo)
	assert.Contains(t, rec.Body.String(), `"status":null`)

	rec = httptest.NewRecorder()
	UpdateJobStatusHandler(svr, repo)(rec, statusRequest("4", `{"status":"saved"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	UpdateJobStatusHandler(svr, repo)(rec, statusRequest("abc", `{"status":"applied"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	UpdateJobStatusHandler(svr, &fakeJobRepo{setErr: job.ErrJobNotFound})(rec, statusRequest("9", `{"status":"ignored"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeSettingsRepo struct {
	userID string
	reads  int
	s      settings.Settings
}

func (f *fakeSettingsRepo) GetSettings() (settings.Settings, error) {
	f.reads++
	return f.s, nil
}

func (f *fakeSettingsRepo) UpdateSettings(userID string, u settings.Update) (settings.Settings, error) {
	f.userID = userID
	u, err := u.Validate()
	if err != nil {
		return settings.Settings{}, err
	}
	f.s = f.s.Apply(u)
	return f.s, nil
}

func TestSettingsHandlers(t *testing.T) {
	svr := newTestServer()
	repo := &fakeSettingsRepo{s: settings.Default()}

	rec := httptest.NewRecorder()
	GetSettingsHandler(svr, repo)(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.reads)

	rec = httptest.NewRecorder()
	body := `{"whitelistedTitles":[" Golang ","golang","rust"],"harvestingMode":"exact"}`
	UpdateSettingsHandler(svr, repo)(rec, httptest.NewRequest(http.MethodPatch, "/api/settings", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	var got settings.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"golang", "rust"}, got.WhitelistedTitles)
	assert.Equal(t, settings.ModeExact, got.HarvestingMode)
}

func TestUpdateSettingsHandlerWritesHarvestingSettings(t *testing.T) {
	var buf bytes.Buffer
	svr := server.NewServer(config.Config{Env: "dev", JobsPerPage: 10}, nil, mux.NewRouter(), nil, zerolog.New(&buf))
	repo := &fakeSettingsRepo{userID: "someone", s: settings.Default()}

	rec := httptest.NewRecorder()
	UpdateSettingsHandler(svr, repo)(rec, httptest.NewRequest(http.MethodPatch, "/api/settings", strings.NewReader(`{"harvestingMode":"exact"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, settings.HarvestingUserID, repo.userID)
	assert.Equal(t, settings.ModeExact, repo.s.HarvestingMode)
	assert.Contains(t, buf.String(), "harvesting settings updated")
}

func TestUpdateSettingsHandlerValidation(t *testing.T) {
	svr := newTestServer()
	repo := &fakeSettingsRepo{s: settings.Default()}

	rec := httptest.NewRecorder()
	UpdateSettingsHandler(svr, repo)(rec, httptest.NewRequest(http.MethodPatch, "/api/settings", strings.NewReader(`{"harvestingMode":"loose"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var verr settings.ValidationError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.Equal(t, "harvestingMode", verr.Field)

	rec = httptest.NewRecorder()
	UpdateSettingsHandler(svr, repo)(rec, httptest.NewRequest(http.MethodPatch, "/api/settings", strings.NewReader(`{"unknown":true}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeFetcher struct {
	err error
}

func (f fakeFetcher) FetchAllJobs(ctx context.Context) (harvester.Summary, error) {
	return harvester.Summary{RunID: "run-1", TotalAdded: 2}, f.err
}

func TestFetchJobsHandler(t *testing.T) {
	svr := newTestServer()

	rec := httptest.NewRecorder()
	FetchJobsHandler(svr, fakeFetcher{})(rec, httptest.NewRequest(http.MethodPost, "/api/jobs/fetch", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var s harvester.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 2, s.TotalAdded)

	rec = httptest.NewRecorder()
	FetchJobsHandler(svr, fakeFetcher{err: harvester.ErrFetchInProgress})(rec, httptest.NewRequest(http.MethodPost, "/api/jobs/fetch", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	FetchJobsHandler(svr, fakeFetcher{err: errors.New("settings unavailable")})(rec, httptest.NewRequest(http.MethodPost, "/api/jobs/fetch", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func (f fakeFetcher) Status() harvester.Status {
	return harvester.Status{Running: true, LastTotalAdded: 4}
}

func TestFetchStatusHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	FetchStatusHandler(newTestServer(), fakeFetcher{})(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/fetch/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"running":true,"lastTotalAdded":4}`, rec.Body.String())
}

type staticLines []string

func (s staticLines) Lines() []string { return s }

func TestLogsHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LogsHandler(newTestServer(), staticLines{"a", "b"})(rec, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lines":["a","b"]}`, rec.Body.String())
}

func TestServeRSSFeed(t *testing.T) {
	posted := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeJobRepo{latest: []job.PersistedJob{{
		ID: 1,
		Job: job.Job{
			ExternalID:   "42",
			Title:        "Go Engineer",
			Company:      "Acme",
			LocationType: job.LocationRemote,
			URL:          "https://example.com/42",
			Source:       job.SourceRemotive,
			Salary:       "$100k - $120k",
			PostedDate:   &posted,
		},
	}}}
	rec := httptest.NewRecorder()
	ServeRSSFeed(newTestServer(), repo)(rec, httptest.NewRequest(http.MethodGet, "/feed.rss", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<rss")
	assert.Contains(t, body, "Go Engineer with Acme")
	assert.Contains(t, body, "https://example.com/42")
}
