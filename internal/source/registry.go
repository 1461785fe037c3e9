package source

import (
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/rs/zerolog"
)

// All returns one adapter per upstream, in fetch order.
func All(cfg Config, companies *bigcache.BigCache, log zerolog.Logger) []Adapter {
	return []Adapter{
		NewRemotive(cfg),
		NewHimalayas(cfg),
		NewJobicy(cfg),
		NewRemoteOK(cfg),
		NewWeWorkRemotely(cfg),
		NewWorkingNomads(cfg),
		NewDailyRemote(cfg),
		NewTheMuse(cfg, companies, log),
	}
}

// NewCompanyCache builds the cache TheMuse keeps resolved company names in.
func NewCompanyCache(ttl time.Duration) (*bigcache.BigCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 16
	cfg.MaxEntriesInWindow = MaxDetailLookups * 4
	cfg.MaxEntrySize = 64
	cfg.HardMaxCacheSize = 8
	return bigcache.NewBigCache(cfg)
}
