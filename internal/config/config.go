package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	MaxJobsPerPage = 50
	// MinSourceDelay is the smallest pause allowed between two adapters.
	MinSourceDelay = time.Second
)

type Config struct {
	Port           string
	DatabaseURL    string
	Env            string // either prod or dev, dev binds localhost only
	SessionKey     []byte
	SentryDSN      string
	FetchSchedule  string // robfig/cron spec, "off" disables scheduled fetching
	FetchOnStartup bool
	SourceDelay    time.Duration // pause between two adapters in a fetch pass
	HTTPTimeout    time.Duration // upstream http client timeout
	UserAgent      string
	TheMuseAPIKey  string
	LogBufferSize  int
	JobsPerPage    int // default page size, capped at MaxJobsPerPage
}

func LoadConfig() (Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return Config{}, fmt.Errorf("PORT cannot be empty")
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL cannot be empty")
	}
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = "dev"
	}
	sessionKeyString := os.Getenv("SESSION_KEY")
	if sessionKeyString == "" {
		return Config{}, fmt.Errorf("SESSION_KEY cannot be empty")
	}
	sessionKeyBytes, err := base64.StdEncoding.DecodeString(sessionKeyString)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to decode session key to bytes")
	}
	sentryDSN := os.Getenv("SENTRY_DSN")
	fetchSchedule := strings.TrimSpace(os.Getenv("FETCH_SCHEDULE"))
	if fetchSchedule == "" {
		fetchSchedule = "@every 6h"
	}
	fetchOnStartup := false
	if v := os.Getenv("FETCH_ON_STARTUP"); v != "" {
		fetchOnStartup, err = strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "unable to parse FETCH_ON_STARTUP %q", v)
		}
	}
	sourceDelay, err := sourceDelayFromEnv()
	if err != nil {
		return Config{}, err
	}
	httpTimeoutSeconds, err := intFromEnv("HTTP_TIMEOUT_SECONDS", 30)
	if err != nil {
		return Config{}, err
	}
	userAgent := os.Getenv("USER_AGENT")
	if userAgent == "" {
		userAgent = "RemoteHQ Job Aggregator"
	}
	theMuseAPIKey := os.Getenv("THEMUSE_API_KEY")
	logBufferSize, err := intFromEnv("LOG_BUFFER_SIZE", 200)
	if err != nil {
		return Config{}, err
	}
	jobsPerPage, err := intFromEnv("JOBS_PER_PAGE", 10)
	if err != nil {
		return Config{}, err
	}
	if jobsPerPage < 1 || jobsPerPage > MaxJobsPerPage {
		return Config{}, fmt.Errorf("JOBS_PER_PAGE must be between 1 and %d", MaxJobsPerPage)
	}

	return Config{
		Port:           port,
		DatabaseURL:    databaseURL,
		Env:            env,
		SessionKey:     sessionKeyBytes,
		SentryDSN:      sentryDSN,
		FetchSchedule:  fetchSchedule,
		FetchOnStartup: fetchOnStartup,
		SourceDelay:    sourceDelay,
		HTTPTimeout:    time.Duration(httpTimeoutSeconds) * time.Second,
		UserAgent:      userAgent,
		TheMuseAPIKey:  theMuseAPIKey,
		LogBufferSize:  logBufferSize,
		JobsPerPage:    jobsPerPage,
	}, nil
}

func intFromEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to convert %s to int", key)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s cannot be negative", key)
	}
	return n, nil
}

func sourceDelayFromEnv() (time.Duration, error) {
	ms, err := intFromEnv("SOURCE_DELAY_MS", int(MinSourceDelay/time.Millisecond))
	if err != nil {
		return 0, err
	}
	d := time.Duration(ms) * time.Millisecond
	if d < MinSourceDelay {
		return 0, fmt.Errorf("SOURCE_DELAY_MS cannot be lower than %d", MinSourceDelay/time.Millisecond)
	}
	return d, nil
}

// LoadCLIConfig reads only what the harvest command needs.
func LoadCLIConfig() (Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL cannot be empty")
	}
	httpTimeoutSeconds, err := intFromEnv("HTTP_TIMEOUT_SECONDS", 30)
	if err != nil {
		return Config{}, err
	}
	sourceDelay, err := sourceDelayFromEnv()
	if err != nil {
		return Config{}, err
	}
	userAgent := os.Getenv("USER_AGENT")
	if userAgent == "" {
		userAgent = "RemoteHQ Job Aggregator"
	}
	return Config{
		DatabaseURL:   databaseURL,
		Env:           "dev",
		SourceDelay:   sourceDelay,
		HTTPTimeout:   time.Duration(httpTimeoutSeconds) * time.Second,
		UserAgent:     userAgent,
		TheMuseAPIKey: os.Getenv("THEMUSE_API_KEY"),
		LogBufferSize: 200,
		JobsPerPage:   10,
	}, nil
}
