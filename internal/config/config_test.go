package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("PORT", "9876")
	t.Setenv("DATABASE_URL", "postgres://localhost/remotehq?sslmode=disable")
	t.Setenv("SESSION_KEY", "c2VjcmV0LXNlc3Npb24ta2V5")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"ENV", "FETCH_SCHEDULE", "FETCH_ON_STARTUP", "SOURCE_DELAY_MS", "HTTP_TIMEOUT_SECONDS", "USER_AGENT", "LOG_BUFFER_SIZE", "JOBS_PER_PAGE", "SENTRY_DSN", "THEMUSE_API_KEY"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9876", cfg.Port)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, []byte("secret-session-key"), cfg.SessionKey)
	assert.Equal(t, "@every 6h", cfg.FetchSchedule)
	assert.False(t, cfg.FetchOnStartup)
	assert.Equal(t, time.Second, cfg.SourceDelay)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "RemoteHQ Job Aggregator", cfg.UserAgent)
	assert.Equal(t, 200, cfg.LogBufferSize)
	assert.Equal(t, 10, cfg.JobsPerPage)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "PROD")
	t.Setenv("FETCH_SCHEDULE", "off")
	t.Setenv("FETCH_ON_STARTUP", "true")
	t.Setenv("SOURCE_DELAY_MS", "2500")
	t.Setenv("JOBS_PER_PAGE", "25")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "off", cfg.FetchSchedule)
	assert.True(t, cfg.FetchOnStartup)
	assert.Equal(t, 2500*time.Millisecond, cfg.SourceDelay)
	assert.Equal(t, 25, cfg.JobsPerPage)
}

func TestLoadConfigErrors(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	_, err := LoadConfig()
	assert.EqualError(t, err, "PORT cannot be empty")

	setRequired(t)
	t.Setenv("SESSION_KEY", "not base64!")
	_, err = LoadConfig()
	assert.Error(t, err)

	setRequired(t)
	t.Setenv("SOURCE_DELAY_MS", "soon")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("SOURCE_DELAY_MS", "")
	t.Setenv("JOBS_PER_PAGE", "500")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestSourceDelayFloor(t *testing.T) {
	setRequired(t)
	for _, v := range []string{"0", "999"} {
		t.Setenv("SOURCE_DELAY_MS", v)
		_, err := LoadConfig()
		assert.EqualError(t, err, "SOURCE_DELAY_MS cannot be lower than 1000", v)
		_, err = LoadCLIConfig()
		assert.EqualError(t, err, "SOURCE_DELAY_MS cannot be lower than 1000", v)
	}

	t.Setenv("SOURCE_DELAY_MS", "1000")
	cfg, err := LoadCLIConfig()
	require.NoError(t, err)
	assert.Equal(t, MinSourceDelay, cfg.SourceDelay)
}
