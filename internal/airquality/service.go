package airquality

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// applicabilityHorizon is how far ahead a selected date can be before
// current AQI stops being meaningful for it.
const applicabilityHorizon = 36 * time.Hour

// Provider fetches the current AQI observation nearest a point.
type Provider interface {
	FetchCurrentAQI(ctx context.Context, lat, lon float64) (*Summary, error)
}

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Provider is the air quality feed.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service fetches current AQI with future-date gating. Feed failures degrade
// to the unavailable sentinel.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// GetSummary returns the AQI summary for the point and selected start.
// Starts beyond the applicability horizon short-circuit to the
// not-applicable status without touching the feed. Never returns an error.
func (s *Service) GetSummary(ctx context.Context, lat, lon float64, start, now time.Time) *Summary {
	if start.Sub(now) > applicabilityHorizon {
		return &Summary{Status: StatusNotApplicableFutureDate}
	}

	summary, err := s.provider.FetchCurrentAQI(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).Msg("air quality feed failed")
		return Unavailable()
	}
	if summary == nil || (summary.Status == StatusOK && summary.AQI <= 0) {
		return &Summary{Status: StatusNoData}
	}
	return summary
}
