package harvester

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls int32
}

func (c *countingFetcher) FetchAllJobs(context.Context) (Summary, error) {
	atomic.AddInt32(&c.calls, 1)
	return Summary{RunID: "test"}, nil
}

func TestSchedulerRunsOnStartup(t *testing.T) {
	f := &countingFetcher{}
	s := NewScheduler(f, "off", true, zerolog.Nop())
	require.False(t, s.Enabled())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&f.calls) == 1 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerTicks(t *testing.T) {
	f := &countingFetcher{}
	s := NewScheduler(f, "@every 1s", false, zerolog.Nop())
	require.True(t, s.Enabled())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&f.calls) >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&countingFetcher{}, "every now and then", false, zerolog.Nop())
	assert.Error(t, s.Start(context.Background()))
}
