package geozone_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailsafe/trailsafe/internal/geozone"
)

// mockLayerProvider is a mock zone-layer provider for testing.
type mockLayerProvider struct {
	mu        sync.Mutex
	callCount int
	layer     *geozone.MapLayer
	err       error
}

func (m *mockLayerProvider) FetchMapLayer(_ context.Context) (*geozone.MapLayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	return m.layer, nil
}

func (m *mockLayerProvider) getCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *mockLayerProvider) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func testLayer() *geozone.MapLayer {
	return &geozone.MapLayer{
		Type:     "FeatureCollection",
		Features: []geozone.Zone{zone(1, "UAC", 40.0, -111.0, 1.0)},
	}
}

func TestLayerCache_ServesFromCacheWithinTTL(t *testing.T) {
	provider := &mockLayerProvider{layer: testLayer()}
	cache := geozone.NewLayerCache(geozone.LayerCacheConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		TTL:      time.Minute,
	})

	zones, err := cache.Zones(context.Background())
	require.NoError(t, err)
	require.Len(t, zones, 1)

	_, err = cache.Zones(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.getCallCount(), "second read should hit cache")
	assert.False(t, cache.FetchedAt().IsZero())
}

func TestLayerCache_ServesStaleOnRefreshFailure(t *testing.T) {
	provider := &mockLayerProvider{layer: testLayer()}
	cache := geozone.NewLayerCache(geozone.LayerCacheConfig{
		Provider:          provider,
		Logger:            zerolog.Nop(),
		TTL:               time.Nanosecond,
		RefreshMaxRetries: 1,
	})

	zones, err := cache.Zones(context.Background())
	require.NoError(t, err)
	require.Len(t, zones, 1)

	provider.setError(errors.New("upstream down"))
	time.Sleep(time.Millisecond)

	zones, err = cache.Zones(context.Background())
	require.NoError(t, err, "stale layer should be served without error")
	assert.Len(t, zones, 1)
}

func TestLayerCache_ErrorWithoutCachedLayer(t *testing.T) {
	provider := &mockLayerProvider{}
	provider.setError(errors.New("upstream down"))

	cache := geozone.NewLayerCache(geozone.LayerCacheConfig{
		Provider:          provider,
		Logger:            zerolog.Nop(),
		RefreshMaxRetries: 1,
	})

	_, err := cache.Zones(context.Background())
	assert.ErrorIs(t, err, geozone.ErrLayerUnavailable)
	assert.True(t, cache.FetchedAt().IsZero())
}
