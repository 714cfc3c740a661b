// Package rainfall fetches recent precipitation history for a point from the
// Open-Meteo archive, with the recent-forecast endpoint as a fallback anchor
// when the archive lags.
package rainfall

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Rainfall errors.
var (
	ErrProviderUnavailable = errors.New("rainfall provider unavailable")
)

// Status describes the usability of the rainfall result.
type Status string

const (
	// StatusOK means history was anchored to a recent observation.
	StatusOK Status = "ok"

	// StatusNoData means the feed responded without usable totals.
	StatusNoData Status = "no_data"

	// StatusUnavailable means the feed could not be reached.
	StatusUnavailable Status = "unavailable"
)

// Summary is the recent precipitation picture for one request.
type Summary struct {
	Status Status `json:"status"`

	// RainLast24hIn and RainLast72hIn are liquid totals in inches.
	RainLast24hIn float64 `json:"rainLast24hIn"`
	RainLast72hIn float64 `json:"rainLast72hIn"`

	// SnowLast72hIn is snowfall total in inches.
	SnowLast72hIn float64 `json:"snowLast72hIn"`

	// AnchorTime is the newest observation the totals are anchored to; the
	// archive can lag by a day or more.
	AnchorTime time.Time `json:"anchorTime,omitempty"`

	// FallbackMode is true when the totals came from the forecast endpoint's
	// recent hours rather than the archive.
	FallbackMode bool `json:"fallbackMode,omitempty"`
}

// Unavailable is the degradation sentinel for a dead feed.
func Unavailable() *Summary {
	return &Summary{Status: StatusUnavailable}
}

// AnchorAge returns how stale the anchor observation is.
func (s *Summary) AnchorAge(now time.Time) time.Duration {
	if s == nil || s.AnchorTime.IsZero() {
		return 0
	}
	return now.Sub(s.AnchorTime)
}

// Provider fetches precipitation history.
type Provider interface {
	// FetchHistory returns totals for the trailing 72 hours ending near now.
	FetchHistory(ctx context.Context, lat, lon float64) (*Summary, error)
}

// ServiceConfig holds configuration for the rainfall service.
type ServiceConfig struct {
	// Provider is the precipitation history feed.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service fetches rainfall history. Feed failures degrade to the
// unavailable sentinel.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new rainfall service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// GetSummary returns the trailing precipitation totals. Never returns an
// error.
func (s *Service) GetSummary(ctx context.Context, lat, lon float64) *Summary {
	summary, err := s.provider.FetchHistory(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rainfall feed failed")
		return Unavailable()
	}
	if summary == nil {
		return &Summary{Status: StatusNoData}
	}
	return summary
}
