package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-cafe/remotehq/internal/harvester"
	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/server"
	"github.com/gorilla/feeds"
	"github.com/pkg/errors"
)

const feedSize = 50

type latestJobLister interface {
	LatestJobs(limit int) ([]job.PersistedJob, error)
}

type fetchStatusReporter interface {
	Status() harvester.Status
}

type logLines interface {
	Lines() []string
}

// FetchJobsHandler runs one fetch pass synchronously. The pass outlives a
// client disconnect.
func FetchJobsHandler(svr server.Server, h harvester.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := h.FetchAllJobs(context.WithoutCancel(r.Context()))
		if errors.Cause(err) == harvester.ErrFetchInProgress {
			svr.JSONError(w, http.StatusConflict, err.Error())
			return
		}
		if err != nil {
			svr.Log(err, "unable to run fetch pass")
			svr.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, key := range []string{server.CacheKeyCompanies, server.CacheKeyStats} {
			if err := svr.CacheDelete(key); err != nil {
				svr.Log(err, "unable to invalidate "+key)
			}
		}
		svr.JSON(w, http.StatusOK, summary)
	}
}

func FetchStatusHandler(svr server.Server, h fetchStatusReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.JSON(w, http.StatusOK, h.Status())
	}
}

func LogsHandler(svr server.Server, sink logLines) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.JSON(w, http.StatusOK, map[string][]string{"lines": sink.Lines()})
	}
}

func ServeRSSFeed(svr server.Server, jobRepo latestJobLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := jobRepo.LatestJobs(feedSize)
		if err != nil {
			svr.Log(err, "unable to retrieve jobs for RSS Feed")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		feed := &feeds.Feed{
			Title:       "RemoteHQ Jobs",
			Link:        &feeds.Link{Href: "http://" + r.Host},
			Description: "Remote software jobs from every tracked board",
			Created:     time.Now(),
		}
		for _, j := range jobs {
			created := j.CreatedAt
			if j.PostedDate != nil {
				created = *j.PostedDate
			}
			desc := j.Description
			if j.Salary != "" {
				desc += "\n\nSalary: " + j.Salary
			}
			feed.Items = append(feed.Items, &feeds.Item{
				Id:          fmt.Sprintf("%s-%s", j.Source, j.ExternalID),
				Title:       fmt.Sprintf("%s with %s - %s", j.Title, j.Company, j.LocationType),
				Link:        &feeds.Link{Href: j.URL},
				Description: desc,
				Created:     created,
			})
		}
		rssFeed, err := feed.ToRss()
		if err != nil {
			svr.Log(err, "unable to convert rss feed to xml")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		svr.XML(w, http.StatusOK, []byte(rssFeed))
	}
}
