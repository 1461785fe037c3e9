// Package harvester runs fetch passes: every source adapter in turn, followed
// by per-source reconciliation of the stored jobs against what the upstream
// currently lists.
package harvester

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/golang-cafe/remotehq/internal/fetchlog"
	"github.com/golang-cafe/remotehq/internal/job"
	"github.com/golang-cafe/remotehq/internal/settings"
	"github.com/golang-cafe/remotehq/internal/source"
	"github.com/golang-cafe/remotehq/internal/whitelist"
)

// DefaultSourceDelay is the pause between two adapters.
const DefaultSourceDelay = time.Second

var ErrFetchInProgress = errors.New("a fetch pass is already running")

type JobStore interface {
	GetJobsBySource(src job.Source) ([]job.PersistedJob, error)
	InsertJobs(jobs []job.Job) (int, error)
	UpdateJobsLifecycleStatusBulk(ids []int, status job.LifecycleStatus) error
}

type FetchLogStore interface {
	InsertFetchLog(e fetchlog.Entry) (fetchlog.Entry, error)
}

type SettingsStore interface {
	GetSettings() (settings.Settings, error)
}

type SourceResult struct {
	Source   job.Source `json:"source"`
	Found    int        `json:"found"`
	Added    int        `json:"added"`
	Rejected int        `json:"rejected"`
	Error    string     `json:"error,omitempty"`
}

type Summary struct {
	RunID      string         `json:"runId"`
	TotalAdded int            `json:"totalAdded"`
	Sources    []SourceResult `json:"sources"`
}

type Status struct {
	Running        bool       `json:"running"`
	LastRunAt      *time.Time `json:"lastRunAt,omitempty"`
	LastTotalAdded int        `json:"lastTotalAdded"`
}

type Harvester struct {
	adapters []source.Adapter
	jobs     JobStore
	logs     FetchLogStore
	settings SettingsStore
	log      zerolog.Logger
	// SourceDelay is the pause between two adapters. Zero disables it.
	SourceDelay time.Duration

	mu      sync.Mutex
	running bool
	lastRun *time.Time
	lastAdd int
}

func New(adapters []source.Adapter, jobs JobStore, logs FetchLogStore, s SettingsStore, log zerolog.Logger) *Harvester {
	return &Harvester{
		adapters:    adapters,
		jobs:        jobs,
		logs:        logs,
		settings:    s,
		log:         log,
		SourceDelay: DefaultSourceDelay,
	}
}

func (h *Harvester) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Status{Running: h.running, LastRunAt: h.lastRun, LastTotalAdded: h.lastAdd}
}

func (h *Harvester) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return false
	}
	h.running = true
	return true
}

func (h *Harvester) end(totalAdded int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now().UTC()
	h.running = false
	h.lastRun = &now
	h.lastAdd = totalAdded
}

// FetchAllJobs runs one fetch pass over every adapter. Only loading the
// settings can fail the whole pass; per-source failures are reported in the
// summary and the fetch log.
func (h *Harvester) FetchAllJobs(ctx context.Context) (Summary, error) {
	if !h.begin() {
		return Summary{}, ErrFetchInProgress
	}
	summary := Summary{RunID: ksuid.New().String(), Sources: make([]SourceResult, 0, len(h.adapters))}
	defer func() { h.end(summary.TotalAdded) }()

	log := h.log.With().Str("run", summary.RunID).Logger()
	s, err := h.settings.GetSettings()
	if err != nil {
		return summary, errors.Wrap(err, "unable to load harvesting settings")
	}
	matcher := whitelist.New(s)
	log.Info().Int("whitelist", matcher.Len()).Str("mode", string(s.HarvestingMode)).Msg("fetch pass started")

	for i, adapter := range h.adapters {
		if i > 0 && h.SourceDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(h.SourceDelay):
			}
		}
		res := h.harvest(ctx, adapter, matcher, log)
		summary.TotalAdded += res.Added
		summary.Sources = append(summary.Sources, res)
	}

	log.Info().Int("added", summary.TotalAdded).Msg("fetch pass finished")
	return summary, nil
}

// harvest runs one adapter and reconciles its source. It never returns an
// error: failures end up in the SourceResult and a failed fetch log entry.
func (h *Harvester) harvest(ctx context.Context, adapter source.Adapter, matcher *whitelist.Matcher, log zerolog.Logger) SourceResult {
	name := adapter.Name()
	log = log.With().Str("source", string(name)).Logger()
	log.Info().Msg("fetching")

	fetched := source.Run(ctx, adapter, matcher, log)
	if fetched.Err != nil {
		res := SourceResult{Source: name, Error: fetched.Err.Error()}
		h.record(res, log)
		return res
	}
	res, err := h.reconcile(name, fetched)
	if err != nil {
		log.Error().Err(err).Msg("reconciliation failed")
		res = SourceResult{Source: name, Error: err.Error()}
	}
	h.record(res, log)
	if res.Error == "" {
		log.Info().Int("found", res.Found).Int("added", res.Added).Int("rejected", res.Rejected).Msg("fetched")
	}
	return res
}

// reconcile stores new jobs and marks known jobs active or inactive
// depending on whether this fetch still lists them. Known jobs are read
// before inserting so that new rows keep the "new" status.
func (h *Harvester) reconcile(name job.Source, fetched source.Result) (SourceResult, error) {
	res := SourceResult{Source: name, Found: len(fetched.Jobs), Rejected: len(fetched.Rejected)}

	existing, err := h.jobs.GetJobsBySource(name)
	if err != nil {
		return res, err
	}
	added, err := h.jobs.InsertJobs(fetched.Jobs)
	if err != nil {
		return res, err
	}
	res.Added = added

	present := make(map[string]struct{}, len(fetched.Jobs))
	for _, j := range fetched.Jobs {
		present[j.ExternalID] = struct{}{}
	}
	var active, inactive []int
	for _, e := range existing {
		if _, ok := present[e.ExternalID]; ok {
			active = append(active, e.ID)
			continue
		}
		inactive = append(inactive, e.ID)
	}
	if err := h.jobs.UpdateJobsLifecycleStatusBulk(active, job.LifecycleActive); err != nil {
		return res, err
	}
	if err := h.jobs.UpdateJobsLifecycleStatusBulk(inactive, job.LifecycleInactive); err != nil {
		return res, err
	}
	return res, nil
}

func (h *Harvester) record(res SourceResult, log zerolog.Logger) {
	entry := fetchlog.Entry{
		Source:    res.Source,
		JobsFound: res.Found,
		JobsAdded: res.Added,
		Success:   res.Error == "",
		Error:     res.Error,
	}
	if _, err := h.logs.InsertFetchLog(entry); err != nil {
		log.Error().Err(err).Msg("unable to record fetch log")
	}
}
