package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/golang-cafe/remotehq/internal/config"
	"github.com/golang-cafe/remotehq/internal/fetchlog"
	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/server"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const statsFetchLogs = 10

type jobLister interface {
	JobsByQuery(q job.Query) (job.QueryResult, error)
}

type companyLister interface {
	GetCompanies() ([]string, error)
}

type statsGetter interface {
	GetStats() (job.Stats, error)
}

type fetchLogLister interface {
	Recent(n int) ([]fetchlog.Entry, error)
}

type jobStatusSetter interface {
	SetJobStatus(id int, status job.Status) (job.PersistedJob, error)
}

// parseJobQuery reads the job list query string. Unparseable page and limit
// fall back to their defaults; unknown sort and lifecycle values are errors.
func parseJobQuery(v url.Values, defaultLimit int) (job.Query, error) {
	q := job.Query{Page: 1, Limit: defaultLimit, Sort: job.SortRecent}
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p > 1 {
		q.Page = p
	}
	if l, err := strconv.Atoi(v.Get("limit")); err == nil {
		q.Limit = l
	}
	if q.Limit < 1 {
		q.Limit = 1
	}
	if q.Limit > config.MaxJobsPerPage {
		q.Limit = config.MaxJobsPerPage
	}
	q.Search = strings.TrimSpace(v.Get("search"))
	q.Level = strings.TrimSpace(v.Get("level"))
	for _, c := range strings.Split(v.Get("companies"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			q.Companies = append(q.Companies, c)
		}
	}
	if l := v.Get("lifecycle"); l != "" {
		q.Lifecycle = job.LifecycleStatus(l)
		if !q.Lifecycle.Valid() {
			return q, errors.Errorf("unknown lifecycle %q", l)
		}
	}
	if s := v.Get("sort"); s != "" {
		key, err := job.ParseSortKey(s)
		if err != nil {
			return q, err
		}
		q.Sort = key
	}
	return q, nil
}

func ListJobsHandler(svr server.Server, jobRepo jobLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseJobQuery(r.URL.Query(), svr.GetConfig().JobsPerPage)
		if err != nil {
			svr.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		res, err := jobRepo.JobsByQuery(q)
		if err != nil {
			svr.Log(err, "unable to query jobs")
			svr.JSONError(w, http.StatusInternalServerError, "unable to query jobs")
			return
		}
		svr.JSON(w, http.StatusOK, res)
	}
}

func CompaniesHandler(svr server.Server, jobRepo companyLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cached, ok := svr.CacheGet(server.CacheKeyCompanies); ok {
			svr.JSON(w, http.StatusOK, json.RawMessage(cached))
			return
		}
		companies, err := jobRepo.GetCompanies()
		if err != nil {
			svr.Log(err, "unable to retrieve companies")
			svr.JSONError(w, http.StatusInternalServerError, "unable to retrieve companies")
			return
		}
		cacheJSON(svr, server.CacheKeyCompanies, companies)
		svr.JSON(w, http.StatusOK, companies)
	}
}

type statsResponse struct {
	job.Stats
	RecentFetches []fetchlog.Entry `json:"recentFetches"`
}

func StatsHandler(svr server.Server, jobRepo statsGetter, fetchLogRepo fetchLogLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cached, ok := svr.CacheGet(server.CacheKeyStats); ok {
			svr.JSON(w, http.StatusOK, json.RawMessage(cached))
			return
		}
		stats, err := jobRepo.GetStats()
		if err != nil {
			svr.Log(err, "unable to compute stats")
			svr.JSONError(w, http.StatusInternalServerError, "unable to compute stats")
			return
		}
		recent, err := fetchLogRepo.Recent(statsFetchLogs)
		if err != nil {
			svr.Log(err, "unable to retrieve fetch logs")
			svr.JSONError(w, http.StatusInternalServerError, "unable to retrieve fetch logs")
			return
		}
		res := statsResponse{Stats: stats, RecentFetches: recent}
		cacheJSON(svr, server.CacheKeyStats, res)
		svr.JSON(w, http.StatusOK, res)
	}
}

// UpdateJobStatusHandler sets or clears the user's own status on a job.
// A null or missing status clears it.
func UpdateJobStatusHandler(svr server.Server, jobRepo jobStatusSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil || id < 1 {
			svr.JSONError(w, http.StatusBadRequest, "invalid job id")
			return
		}
		req := &struct {
			Status *string `json:"status"`
		}{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSONError(w, http.StatusBadRequest, "request is invalid")
			return
		}
		status := job.StatusNone
		if req.Status != nil {
			status, err = job.ParseStatus(*req.Status)
			if err != nil {
				svr.JSONError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		updated, err := jobRepo.SetJobStatus(id, status)
		if errors.Cause(err) == job.ErrJobNotFound {
			svr.JSONError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			svr.Log(err, "unable to update job status")
			svr.JSONError(w, http.StatusInternalServerError, "unable to update job status")
			return
		}
		svr.JSON(w, http.StatusOK, updated)
	}
}

func cacheJSON(svr server.Server, key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		svr.Log(err, "unable to marshal "+key+" for cache")
		return
	}
	if err := svr.CacheSet(key, b); err != nil {
		svr.Log(err, "unable to cache "+key)
	}
}
