// Package snowpack fetches the nearest SNOTEL station's snow depth and
// snow-water-equivalent for a point.
package snowpack

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Snowpack errors.
var (
	ErrProviderUnavailable = errors.New("snowpack provider unavailable")
)

// Status describes the usability of the snowpack result.
type Status string

const (
	// StatusOK means a nearby station reported depth or SWE.
	StatusOK Status = "ok"

	// StatusNoData means no station near enough reported anything usable.
	StatusNoData Status = "no_data"

	// StatusUnavailable means the feed could not be reached.
	StatusUnavailable Status = "unavailable"
)

// Observation is the nearest-station snowpack measurement.
type Observation struct {
	Status Status `json:"status"`

	DepthIn float64 `json:"depthIn"`
	SWEIn   float64 `json:"sweIn"`

	StationName string  `json:"stationName,omitempty"`
	StationID   string  `json:"stationId,omitempty"`
	ElevationFt float64 `json:"elevationFt,omitempty"`
	DistanceKm  float64 `json:"distanceKm,omitempty"`

	ObservedAt time.Time `json:"observedAt,omitempty"`
}

// Unavailable is the degradation sentinel for a dead feed.
func Unavailable() *Observation {
	return &Observation{Status: StatusUnavailable}
}

// Usable reports whether the observation should feed relevance decisions.
func (o *Observation) Usable() bool {
	return o != nil && o.Status == StatusOK
}

// Snowpack signal tiers used by the avalanche relevance rules.
const (
	// MaterialDepthIn / MaterialSWEIn mark a snowpack deep enough to carry
	// avalanche hazard on its own.
	MaterialDepthIn = 6.0
	MaterialSWEIn   = 1.5

	// MeasurableDepthIn / MeasurableSWEIn mark a real but thinner snowpack.
	MeasurableDepthIn = 2.0
	MeasurableSWEIn   = 0.5

	// LowDepthIn / LowSWEIn bound a snowpack thin enough to dismiss.
	LowDepthIn = 1.0
	LowSWEIn   = 0.25
)

// Tier is the graded snowpack signal.
type Tier string

const (
	TierMaterial   Tier = "material"
	TierMeasurable Tier = "measurable"
	TierLow        Tier = "low"
	TierAmbiguous  Tier = "ambiguous"
)

// Tier grades the observation against the signal thresholds.
func (o *Observation) Tier() Tier {
	switch {
	case o.DepthIn >= MaterialDepthIn || o.SWEIn >= MaterialSWEIn:
		return TierMaterial
	case o.DepthIn >= MeasurableDepthIn || o.SWEIn >= MeasurableSWEIn:
		return TierMeasurable
	case o.DepthIn <= LowDepthIn && o.SWEIn <= LowSWEIn:
		return TierLow
	default:
		return TierAmbiguous
	}
}

// Provider fetches the nearest station observation.
type Provider interface {
	FetchNearest(ctx context.Context, lat, lon float64) (*Observation, error)
}

// ServiceConfig holds configuration for the snowpack service.
type ServiceConfig struct {
	// Provider is the snowpack feed.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service fetches snowpack observations. Feed failures degrade to the
// unavailable sentinel.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new snowpack service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// GetObservation returns the nearest-station snowpack. Never returns an
// error.
func (s *Service) GetObservation(ctx context.Context, lat, lon float64) *Observation {
	obs, err := s.provider.FetchNearest(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).Msg("snowpack feed failed")
		return Unavailable()
	}
	if obs == nil {
		return &Observation{Status: StatusNoData}
	}
	return obs
}
