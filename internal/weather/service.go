package weather

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// PrimaryProvider fetches the authoritative hourly forecast.
type PrimaryProvider interface {
	Name() string
	GetHourlyForecast(ctx context.Context, lat, lon float64) (*Snapshot, error)
}

// FallbackProvider fetches a secondary snapshot used for field-level
// substitution when the primary leaves gaps.
type FallbackProvider interface {
	Name() string
	GetFallbackForecast(ctx context.Context, lat, lon float64, date time.Time, startClock int) (*Snapshot, error)
}

// ServiceConfig holds configuration for the weather reconciler.
type ServiceConfig struct {
	// Primary is the authoritative forecast provider.
	Primary PrimaryProvider

	// Fallback fills primary gaps field by field. Optional.
	Fallback FallbackProvider

	// Logger for reconciliation.
	Logger zerolog.Logger
}

// Service reconciles the primary and fallback forecasts into one snapshot.
type Service struct {
	primary  PrimaryProvider
	fallback FallbackProvider
	logger   zerolog.Logger
}

// NewService creates a new weather reconciler.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		primary:  cfg.Primary,
		fallback: cfg.Fallback,
		logger:   cfg.Logger,
	}
}

// GetSnapshot fetches the primary forecast, then substitutes any absent
// field from the fallback provider. A dead primary degrades to the fallback
// snapshot whole; both dead returns ErrProviderUnavailable, which callers
// convert to an unavailable sentinel rather than failing the request.
func (s *Service) GetSnapshot(ctx context.Context, lat, lon float64, date time.Time, startClock int) (*Snapshot, error) {
	snap, primaryErr := s.primary.GetHourlyForecast(ctx, lat, lon)
	if primaryErr != nil {
		s.logger.Warn().Err(primaryErr).Msg("primary weather provider failed")
		snap = nil
	}

	if s.fallback == nil {
		if snap == nil {
			return nil, ErrProviderUnavailable
		}
		return snap, nil
	}

	needsFill := snap == nil || snap.TemperatureF == nil || snap.FeelsLikeF == nil ||
		snap.WindMph == nil || snap.GustMph == nil || snap.PrecipChance == nil ||
		snap.Humidity == nil
	if !needsFill {
		return snap, nil
	}

	fb, fbErr := s.fallback.GetFallbackForecast(ctx, lat, lon, date, startClock)
	if fbErr != nil {
		s.logger.Warn().Err(fbErr).Msg("fallback weather provider failed")
		if snap == nil {
			return nil, ErrProviderUnavailable
		}
		return snap, nil
	}

	if snap == nil {
		s.logger.Info().Str("provider", s.fallback.Name()).Msg("serving fallback-only weather snapshot")
		return fb, nil
	}

	merged := mergeSnapshots(snap, fb, s.fallback.Name())
	return merged, nil
}

// mergeSnapshots substitutes each nil primary field from the fallback,
// attributing substituted fields to the fallback provider. The trend series
// always comes from the primary when it has one; trend shape differs too
// much across providers to splice hour by hour.
func mergeSnapshots(primary, fallback *Snapshot, fallbackName string) *Snapshot {
	out := *primary

	fill := func(dst **float64, src *float64, field string) {
		if *dst == nil && src != nil {
			*dst = src
			out.setSource(field, fallbackName)
		}
	}

	fill(&out.TemperatureF, fallback.TemperatureF, "temperature")
	fill(&out.FeelsLikeF, fallback.FeelsLikeF, "feelsLike")
	fill(&out.WindMph, fallback.WindMph, "wind")
	fill(&out.GustMph, fallback.GustMph, "gust")
	fill(&out.PrecipChance, fallback.PrecipChance, "precipChance")
	fill(&out.Humidity, fallback.Humidity, "humidity")

	if out.Condition == "" && fallback.Condition != "" {
		out.Condition = fallback.Condition
		out.setSource("condition", fallbackName)
	}
	if len(out.Trend) == 0 && len(fallback.Trend) > 0 {
		out.Trend = fallback.Trend
		out.setSource("trend", fallbackName)
	}
	return &out
}
