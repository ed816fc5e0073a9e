// Package forecastcache decorates a ForecastProvider with a TTL cache
// so that a digest run over many subscribers at the same spot fetches
// the upstream forecast once.
package forecastcache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thomas-desmond/owltrek/internal/domain/nights"
)

// Store holds cached night forecasts keyed by coordinate.
type Store interface {
	Get(ctx context.Context, key string) (map[string]nights.NightConditions, bool, error)
	Set(ctx context.Context, key string, forecast map[string]nights.NightConditions, ttl time.Duration) error
}

// Provider is a caching nights.ForecastProvider.
type Provider struct {
	next   nights.ForecastProvider
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewProvider wraps next with the given store.
func NewProvider(next nights.ForecastProvider, store Store, ttl time.Duration, logger *slog.Logger) *Provider {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Provider{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "forecastcache"),
	}
}

// NightForecast serves from cache when possible. Cache failures are
// logged and ignored; the upstream result always wins.
func (p *Provider) NightForecast(ctx context.Context, lat, lon float64) (map[string]nights.NightConditions, error) {
	key := cacheKey(lat, lon)

	cached, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Warn("forecast cache read failed", "key", key, "error", err)
	} else if ok {
		return cached, nil
	}

	forecast, err := p.next.NightForecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if err := p.store.Set(ctx, key, forecast, p.ttl); err != nil {
		p.logger.Warn("forecast cache write failed", "key", key, "error", err)
	}
	return forecast, nil
}

// cacheKey buckets coordinates to ~1km so nearby subscribers share an
// upstream fetch.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("forecast:%.2f:%.2f", lat, lon)
}

var _ nights.ForecastProvider = (*Provider)(nil)
