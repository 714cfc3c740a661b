// Package weather merges hourly forecasts from a primary provider with a
// fallback provider, substituting fallback values field by field wherever
// the primary left a gap, and tracking which source supplied each field.
package weather

import (
	"errors"
	"strings"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrNoDataForLocation   = errors.New("no weather data for location")
)

// TrendHour is one hour of the forecast trend series spanning the travel
// window.
type TrendHour struct {
	Time         time.Time `json:"time"`
	TemperatureF *float64  `json:"temperatureF,omitempty"`
	WindMph      *float64  `json:"windMph,omitempty"`
	GustMph      *float64  `json:"gustMph,omitempty"`
	PrecipChance *float64  `json:"precipChance,omitempty"`
	SnowInches   *float64  `json:"snowInches,omitempty"`
	Condition    string    `json:"condition,omitempty"`
	IsDaytime    *bool     `json:"isDaytime,omitempty"`
}

// Snapshot is the reconciled weather picture for the selected start hour,
// plus the hourly trend across the travel window.
type Snapshot struct {
	TemperatureF *float64 `json:"temperatureF,omitempty"`
	FeelsLikeF   *float64 `json:"feelsLikeF,omitempty"`
	WindMph      *float64 `json:"windMph,omitempty"`
	GustMph      *float64 `json:"gustMph,omitempty"`
	PrecipChance *float64 `json:"precipChance,omitempty"`
	Humidity     *float64 `json:"humidity,omitempty"`
	Condition    string   `json:"condition,omitempty"`
	IsDaytime    *bool    `json:"isDaytime,omitempty"`

	// ElevationFt is the forecast point elevation reported by the primary
	// provider, used for avalanche relevance banding.
	ElevationFt *float64 `json:"elevationFt,omitempty"`

	Trend []TrendHour `json:"trend,omitempty"`

	// Sources maps field name to the provider that supplied it.
	Sources map[string]string `json:"sources,omitempty"`

	// IssuedAt is when the primary forecast was generated.
	IssuedAt time.Time `json:"issuedAt,omitempty"`

	FetchedAt time.Time `json:"fetchedAt,omitempty"`
}

// Available reports whether the snapshot carries any usable data at all.
func (s *Snapshot) Available() bool {
	return s != nil && (s.TemperatureF != nil || len(s.Trend) > 0)
}

// wintryConditionWords mark forecast text as winter precipitation.
var wintryConditionWords = []string{
	"snow", "sleet", "freezing rain", "freezing drizzle", "wintry mix",
	"blizzard", "ice", "graupel",
}

// WintrySignal reports whether the snapshot's text or temperatures point to
// wintry conditions: winter precipitation words, a freezing temperature, or
// near-freezing apparent temperature with precipitation in play.
func (s *Snapshot) WintrySignal() bool {
	if s == nil {
		return false
	}
	cond := strings.ToLower(s.Condition)
	for _, w := range wintryConditionWords {
		if strings.Contains(cond, w) {
			return true
		}
	}
	if s.TemperatureF != nil && *s.TemperatureF <= 32 {
		return true
	}
	if s.FeelsLikeF != nil && *s.FeelsLikeF <= 28 {
		return true
	}
	if s.TemperatureF != nil && *s.TemperatureF <= 36 &&
		s.PrecipChance != nil && *s.PrecipChance >= 40 {
		return true
	}
	return false
}

// ForecastSnowInches sums expected snow accumulation across the trend series.
func (s *Snapshot) ForecastSnowInches() float64 {
	if s == nil {
		return 0
	}
	total := 0.0
	for _, h := range s.Trend {
		if h.SnowInches != nil {
			total += *h.SnowInches
		}
	}
	return total
}

// setSource records which provider supplied a field.
func (s *Snapshot) setSource(field, provider string) {
	if s.Sources == nil {
		s.Sources = make(map[string]string)
	}
	s.Sources[field] = provider
}

// AttributeAll marks every populated field as supplied by the provider.
// Providers call this once after building a snapshot; reconciliation then
// overwrites the attribution of substituted fields.
func (s *Snapshot) AttributeAll(provider string) {
	mark := func(field string, present bool) {
		if present {
			s.setSource(field, provider)
		}
	}
	mark("temperature", s.TemperatureF != nil)
	mark("feelsLike", s.FeelsLikeF != nil)
	mark("wind", s.WindMph != nil)
	mark("gust", s.GustMph != nil)
	mark("precipChance", s.PrecipChance != nil)
	mark("humidity", s.Humidity != nil)
	mark("condition", s.Condition != "")
	mark("trend", len(s.Trend) > 0)
}
