package source

import (
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultUserAgent = "RemoteHQ Job Aggregator"
	DefaultTimeout   = 30 * time.Second

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodyBytes     = 10 << 20
)

// Config is shared by every adapter.
type Config struct {
	Client        *http.Client
	UserAgent     string
	TheMuseAPIKey string
}

// NewHTTPClient returns the client the adapters share. A non-positive
// timeout means DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (c Config) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (c Config) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

type fetcher struct {
	client    *http.Client
	userAgent string
}

func newFetcher(cfg Config) fetcher {
	return fetcher{client: cfg.httpClient(), userAgent: cfg.userAgent()}
}

func (f fetcher) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to build request for %s", url)
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range header {
		req.Header[k] = v
	}
	res, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to get %s", url)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, errors.Errorf("unexpected status %d from %s", res.StatusCode, url)
	}
	body, err := ioutil.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read body from %s", url)
	}
	return body, nil
}

func (f fetcher) getJSON(ctx context.Context, url string, dst interface{}) error {
	body, err := f.get(ctx, url, http.Header{"Accept": []string{"application/json"}})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrapf(err, "unable to decode response from %s", url)
	}
	return nil
}
