package geozone

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// LayerProvider fetches the zone map layer from the upstream source.
type LayerProvider interface {
	FetchMapLayer(ctx context.Context) (*MapLayer, error)
}

// CacheMetrics receives hit/miss counts for the layer cache. Optional.
type CacheMetrics interface {
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// cachedLayer is one immutable cache generation.
type cachedLayer struct {
	layer     *MapLayer
	fetchedAt time.Time
}

// LayerCacheConfig holds configuration for the map-layer cache.
type LayerCacheConfig struct {
	// Provider fetches the zone layer.
	Provider LayerProvider

	// Logger for cache operations.
	Logger zerolog.Logger

	// TTL is how long a fetched layer stays fresh (default: 30 minutes).
	TTL time.Duration

	// RefreshMaxRetries bounds the backoff retries of one refresh attempt
	// (default: 3). Refresh is the only path with retries; request-path feed
	// calls degrade instead.
	RefreshMaxRetries uint64

	// Metrics receives cache hit/miss counts. Optional.
	Metrics CacheMetrics
}

// LayerCache is a process-wide TTL cache of the zone map layer. Readers see
// an atomic snapshot; refresh swaps in a new generation and a failed refresh
// keeps serving the previous one.
type LayerCache struct {
	provider   LayerProvider
	logger     zerolog.Logger
	ttl        time.Duration
	maxRetries uint64
	metrics    CacheMetrics

	current atomic.Pointer[cachedLayer]

	// refreshMu serializes refreshes so a thundering herd of expired readers
	// triggers a single upstream fetch.
	refreshMu sync.Mutex
}

// NewLayerCache creates a new map-layer cache.
func NewLayerCache(cfg LayerCacheConfig) *LayerCache {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	maxRetries := cfg.RefreshMaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	return &LayerCache{
		provider:   cfg.Provider,
		logger:     cfg.Logger,
		ttl:        ttl,
		maxRetries: maxRetries,
		metrics:    cfg.Metrics,
	}
}

// Zones returns the current zone features, refreshing the layer when the
// cached generation has expired. When refresh fails and a stale generation
// exists, the stale zones are returned with no error.
func (c *LayerCache) Zones(ctx context.Context) ([]Zone, error) {
	if cur := c.current.Load(); cur != nil && time.Since(cur.fetchedAt) < c.ttl {
		c.recordHit()
		return cur.layer.Features, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another reader may have refreshed while we waited.
	if cur := c.current.Load(); cur != nil && time.Since(cur.fetchedAt) < c.ttl {
		c.recordHit()
		return cur.layer.Features, nil
	}

	c.recordMiss()
	layer, err := c.fetchWithBackoff(ctx)
	if err != nil {
		if cur := c.current.Load(); cur != nil {
			c.logger.Warn().
				Err(err).
				Time("fetched_at", cur.fetchedAt).
				Msg("serving stale zone layer after refresh failure")
			return cur.layer.Features, nil
		}
		return nil, ErrLayerUnavailable
	}

	c.current.Store(&cachedLayer{layer: layer, fetchedAt: time.Now()})
	c.logger.Info().
		Int("zones", len(layer.Features)).
		Dur("ttl", c.ttl).
		Msg("zone layer refreshed")

	return layer.Features, nil
}

func (c *LayerCache) recordHit() {
	if c.metrics != nil {
		c.metrics.RecordCacheHit("avalanche-org", "map-layer")
	}
}

func (c *LayerCache) recordMiss() {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss("avalanche-org", "map-layer")
	}
}

// FetchedAt returns when the current generation was fetched, or the zero time
// when nothing is cached yet.
func (c *LayerCache) FetchedAt() time.Time {
	if cur := c.current.Load(); cur != nil {
		return cur.fetchedAt
	}
	return time.Time{}
}

func (c *LayerCache) fetchWithBackoff(ctx context.Context) (*MapLayer, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 0

	var layer *MapLayer
	operation := func() error {
		var err error
		layer, err = c.provider.FetchMapLayer(ctx)
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx))
	if err != nil {
		return nil, err
	}
	return layer, nil
}
