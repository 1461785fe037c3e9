package harvester

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/golang-cafe/remotehq/internal/config"
	"github.com/golang-cafe/remotehq/internal/source"
)

const companyCacheTTL = 24 * time.Hour

// Build wires every source adapter, configured from cfg, into a Harvester.
func Build(cfg config.Config, jobs JobStore, logs FetchLogStore, s SettingsStore, log zerolog.Logger) (*Harvester, error) {
	companies, err := source.NewCompanyCache(companyCacheTTL)
	if err != nil {
		return nil, err
	}
	adapters := source.All(source.Config{
		Client:        source.NewHTTPClient(cfg.HTTPTimeout),
		UserAgent:     cfg.UserAgent,
		TheMuseAPIKey: cfg.TheMuseAPIKey,
	}, companies, log)
	h := New(adapters, jobs, logs, s, log)
	h.SourceDelay = cfg.SourceDelay
	return h, nil
}
