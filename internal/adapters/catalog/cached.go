package catalog

import (
	"context"
	"log/slog"

	"eventparticipation/internal/domain"
	"eventparticipation/internal/metrics"
)

type cachedCatalog struct {
	inner   domain.EventCatalog
	cache   domain.ChargeConfigCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewCachedCatalog serves charge configs from cache and fills it from inner on
// a miss. Cache failures are logged and never fail the lookup.
func NewCachedCatalog(inner domain.EventCatalog, cache domain.ChargeConfigCache, logger *slog.Logger, m *metrics.Metrics) domain.EventCatalog {
	if cache == nil {
		return inner
	}
	return &cachedCatalog{inner: inner, cache: cache, logger: logger, metrics: m}
}

func (c *cachedCatalog) GetChargeConfig(ctx context.Context, eventID string) (*domain.EventChargeConfig, error) {
	cfg, ok, err := c.cache.Get(ctx, eventID)
	switch {
	case err != nil:
		c.metrics.IncrementCacheLookup("error")
		c.logger.WarnContext(ctx, "charge config cache read failed", "event_id", eventID, "err", err)
	case ok:
		c.metrics.IncrementCacheLookup("hit")
		return cfg, nil
	default:
		c.metrics.IncrementCacheLookup("miss")
	}

	cfg, err = c.inner.GetChargeConfig(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, cfg); err != nil {
		c.logger.WarnContext(ctx, "charge config cache write failed", "event_id", eventID, "err", err)
	}
	return cfg, nil
}
