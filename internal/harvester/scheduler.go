package harvester

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Fetcher is what the scheduler triggers.
type Fetcher interface {
	FetchAllJobs(ctx context.Context) (Summary, error)
}

// Scheduler triggers fetch passes on a cron spec such as "@every 6h". A
// failed or skipped pass is simply retried on the next tick.
type Scheduler struct {
	cron      *cron.Cron
	fetcher   Fetcher
	spec      string
	onStartup bool
	log       zerolog.Logger
}

func NewScheduler(f Fetcher, spec string, onStartup bool, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		fetcher:   f,
		spec:      strings.TrimSpace(spec),
		onStartup: onStartup,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Enabled is false when the spec is empty or "off".
func (s *Scheduler) Enabled() bool {
	return s.spec != "" && !strings.EqualFold(s.spec, "off")
}

// Start registers the fetch job and starts the cron loop. With onStartup set
// a first pass runs right away in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.Enabled() {
		if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
			return errors.Wrapf(err, "invalid fetch schedule %q", s.spec)
		}
		s.cron.Start()
		s.log.Info().Str("spec", s.spec).Msg("scheduled fetching started")
	}
	if s.onStartup {
		go s.run(ctx)
	}
	return nil
}

// Stop stops the cron loop and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduled fetching stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	summary, err := s.fetcher.FetchAllJobs(ctx)
	if err == ErrFetchInProgress {
		s.log.Info().Msg("fetch pass already running, skipping tick")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled fetch failed")
		return
	}
	s.log.Info().Str("run", summary.RunID).Int("added", summary.TotalAdded).Msg("scheduled fetch finished")
}
