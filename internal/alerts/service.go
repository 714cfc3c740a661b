package alerts

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Provider fetches active alerts for a point.
type Provider interface {
	FetchActiveAlerts(ctx context.Context, lat, lon float64) ([]Alert, error)
}

// ServiceConfig holds configuration for the alerts service.
type ServiceConfig struct {
	// Provider is the alerts feed.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service fetches alerts and classifies window relevance. Feed failures
// degrade to the unavailable sentinel.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new alerts service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// GetSummary fetches active alerts and marks whether any overlaps the
// selected travel window [start, start+window). Never returns an error.
func (s *Service) GetSummary(ctx context.Context, lat, lon float64, start time.Time, windowHours int) *Summary {
	raw, err := s.provider.FetchActiveAlerts(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).Msg("alerts feed failed")
		return Unavailable()
	}

	end := start.Add(time.Duration(windowHours) * time.Hour)
	summary := &Summary{Status: StatusOK, Alerts: raw}

	for _, a := range raw {
		if overlapsWindow(a, start, end) {
			summary.SelectedTimeRelevant = true
			break
		}
	}
	if len(raw) > 0 && !summary.SelectedTimeRelevant {
		summary.Status = StatusCurrentOnly
	}
	return summary
}

// overlapsWindow reports whether the alert's validity intersects the window.
// Alerts without timing are treated as current-state only.
func overlapsWindow(a Alert, start, end time.Time) bool {
	if a.Onset.IsZero() && a.Ends.IsZero() {
		return false
	}
	onset := a.Onset
	if onset.IsZero() {
		onset = start
	}
	ends := a.Ends
	if ends.IsZero() {
		ends = end
	}
	return onset.Before(end) && ends.After(start)
}
