package resilience_test

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailsafe/trailsafe/internal/provider/resilience"
)

func TestRegistry_RegisterAndHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	client := resilience.NewClient(resilience.FeedClientConfig("nws"))

	registry.Register("nws", client)

	health := registry.GetHealth("nws")
	require.NotNil(t, health)
	assert.Equal(t, "nws", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.IsHealthy())
	assert.Equal(t, 1, registry.FeedCount())
}

func TestRegistry_UnknownFeed(t *testing.T) {
	registry := resilience.NewRegistry()
	assert.Nil(t, registry.GetHealth("missing"))
}

func TestRegistry_RecordsOutcomes(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("airnow", resilience.NewClient(resilience.FeedClientConfig("airnow")))

	registry.RecordSuccess("airnow")
	registry.RecordFailure("airnow", errors.New("timeout"))

	health := registry.GetHealth("airnow")
	require.NotNil(t, health)
	assert.NotNil(t, health.LastSuccessAt)
	assert.NotNil(t, health.LastFailureAt)
	assert.Equal(t, "timeout", health.LastError)
}

func TestRegistry_GetAllHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("nws", resilience.NewClient(resilience.FeedClientConfig("nws")))
	registry.Register("snotel", resilience.NewClient(resilience.FeedClientConfig("snotel")))

	all := registry.GetAllHealth()
	assert.Len(t, all, 2)
}
