package report

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailsafe/trailsafe/internal/airquality"
	"github.com/trailsafe/trailsafe/internal/alerts"
	"github.com/trailsafe/trailsafe/internal/avalanche"
	"github.com/trailsafe/trailsafe/internal/fanout"
	"github.com/trailsafe/trailsafe/internal/firerisk"
	"github.com/trailsafe/trailsafe/internal/geozone"
	"github.com/trailsafe/trailsafe/internal/rainfall"
	"github.com/trailsafe/trailsafe/internal/scoring"
	"github.com/trailsafe/trailsafe/internal/snowpack"
	"github.com/trailsafe/trailsafe/internal/solar"
	"github.com/trailsafe/trailsafe/internal/terrain"
	"github.com/trailsafe/trailsafe/internal/weather"
)

// WeatherService reconciles the hourly forecast for a point.
type WeatherService interface {
	GetSnapshot(ctx context.Context, lat, lon float64, date time.Time, startClock int) (*weather.Snapshot, error)
}

// AlertService fetches active alerts for a point and window.
type AlertService interface {
	GetSummary(ctx context.Context, lat, lon float64, start time.Time, windowHours int) *alerts.Summary
}

// AirQualityService fetches the current AQI for a point.
type AirQualityService interface {
	GetSummary(ctx context.Context, lat, lon float64, start, now time.Time) *airquality.Summary
}

// RainfallService fetches recent precipitation history.
type RainfallService interface {
	GetSummary(ctx context.Context, lat, lon float64) *rainfall.Summary
}

// SnowpackService fetches the nearest snow-station observation.
type SnowpackService interface {
	GetObservation(ctx context.Context, lat, lon float64) *snowpack.Observation
}

// ZoneSource serves the cached hazard-zone layer.
type ZoneSource interface {
	Zones(ctx context.Context) ([]geozone.Zone, error)
}

// ServiceConfig holds the report service dependencies.
type ServiceConfig struct {
	Weather    WeatherService
	Alerts     AlertService
	AirQuality AirQualityService
	Rainfall   RainfallService
	Snowpack   SnowpackService

	Zones      ZoneSource
	Resolver   *geozone.Resolver
	Aggregator *avalanche.Aggregator

	Engine *scoring.Engine

	Logger zerolog.Logger

	// Clock overrides the evaluation time in tests.
	Clock func() time.Time
}

// Service builds safety reports.
type Service struct {
	weather    WeatherService
	alerts     AlertService
	airQuality AirQualityService
	rainfall   RainfallService
	snowpack   SnowpackService

	zones      ZoneSource
	resolver   *geozone.Resolver
	aggregator *avalanche.Aggregator

	engine *scoring.Engine

	logger zerolog.Logger
	clock  func() time.Time
}

// NewService creates a report service.
func NewService(cfg ServiceConfig) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		weather:    cfg.Weather,
		alerts:     cfg.Alerts,
		airQuality: cfg.AirQuality,
		rainfall:   cfg.Rainfall,
		snowpack:   cfg.Snowpack,
		zones:      cfg.Zones,
		resolver:   cfg.Resolver,
		aggregator: cfg.Aggregator,
		engine:     cfg.Engine,
		logger:     cfg.Logger,
		clock:      clock,
	}
}

// feedResults collects the settled concurrent stages.
type feedResults struct {
	alerts     *alerts.Summary
	airQuality *airquality.Summary
	rainfall   *rainfall.Summary
	snowpack   *snowpack.Observation
	match      geozone.Match
	bulletin   *avalanche.Bulletin
}

// Build assembles the full report. It never returns an error: every
// degraded stage is flagged in PartialData/APIWarning instead, so the
// caller always has something to render.
func (s *Service) Build(ctx context.Context, req Request) *Report {
	now := s.clock()
	start := req.Start()

	var warnings []string

	// Weather first: its elevation and trend gate the avalanche relevance
	// decision, so it cannot join the fan-out below.
	snap, err := s.weather.GetSnapshot(ctx, req.Lat, req.Lon, req.Date, req.StartClock)
	if err != nil {
		s.logger.Warn().Err(err).Float64("lat", req.Lat).Float64("lon", req.Lon).
			Msg("weather stage degraded")
		warnings = append(warnings, "weather data is unavailable")
		snap = nil
	}

	feeds := s.settleFeeds(ctx, req, start, now)

	if feeds.alerts.Status == alerts.StatusUnavailable {
		warnings = append(warnings, "alert feed is unavailable")
	}
	if feeds.airQuality.Status == airquality.StatusUnavailable {
		warnings = append(warnings, "air quality feed is unavailable")
	}
	if feeds.rainfall.Status == rainfall.StatusUnavailable {
		warnings = append(warnings, "rainfall history is unavailable")
	}
	if feeds.snowpack.Status == snowpack.StatusUnavailable {
		warnings = append(warnings, "snowpack stations are unavailable")
	}
	if feeds.bulletin.Coverage == avalanche.CoverageUnavailable {
		warnings = append(warnings, "avalanche zone data is unavailable")
	}

	relevance := avalanche.EvaluateRelevance(avalanche.RelevanceInput{
		Lat:          req.Lat,
		SelectedDate: req.Date,
		ElevationFt:  elevation(snap),
		Weather:      snap,
		Coverage:     feeds.bulletin.Coverage,
		Snowpack:     feeds.snowpack,
	})
	feeds.bulletin.Relevant = relevance.Relevant
	feeds.bulletin.RelevanceReason = relevance.Reason

	fire := firerisk.ClassifyFire(snap, feeds.alerts, feeds.airQuality)
	heat := firerisk.ClassifyHeat(snap)
	ground := terrain.Classify(snap, feeds.snowpack, feeds.rainfall)
	sun := solar.Compute(req.Lat, req.Lon, req.Date)

	safety := s.engine.Score(scoring.Input{
		Weather:           snap,
		Avalanche:         feeds.bulletin,
		Alerts:            feeds.alerts,
		AirQuality:        feeds.airQuality,
		FireRisk:          &fire,
		HeatRisk:          &heat,
		Rainfall:          feeds.rainfall,
		VisibilityRisk:    visibilityRisk(snap),
		SelectedDate:      req.Date,
		StartClock:        req.StartClock,
		TravelWindowHours: req.TravelWindowHours,
		Solar:             sun,
		Now:               now,
	})

	return &Report{
		Lat:               req.Lat,
		Lon:               req.Lon,
		Date:              req.Date.Format("2006-01-02"),
		Start:             start,
		TravelWindowHours: req.TravelWindowHours,
		Safety:            &safety,
		Weather:           snap,
		Zone:              zoneMatch(feeds.match),
		Avalanche:         feeds.bulletin,
		Alerts:            feeds.alerts,
		AirQuality:        feeds.airQuality,
		Rainfall:          feeds.rainfall,
		Snowpack:          feeds.snowpack,
		FireRisk:          &fire,
		HeatRisk:          &heat,
		Terrain:           &ground,
		Sun:               &sun,
		PartialData:       len(warnings) > 0,
		APIWarning:        strings.Join(warnings, "; "),
		GeneratedAt:       now,
	}
}

// settleFeeds fans out the independent stages and waits for all of them.
// Each task owns its own degradation, so a settled error here only ever
// means a panic was recovered.
func (s *Service) settleFeeds(ctx context.Context, req Request, start, now time.Time) *feedResults {
	feeds := &feedResults{}

	results := fanout.SettleAll(ctx, []fanout.Task[func()]{
		func(ctx context.Context) (func(), error) {
			v := s.alerts.GetSummary(ctx, req.Lat, req.Lon, start, req.TravelWindowHours)
			return func() { feeds.alerts = v }, nil
		},
		func(ctx context.Context) (func(), error) {
			v := s.airQuality.GetSummary(ctx, req.Lat, req.Lon, start, now)
			return func() { feeds.airQuality = v }, nil
		},
		func(ctx context.Context) (func(), error) {
			v := s.rainfall.GetSummary(ctx, req.Lat, req.Lon)
			return func() { feeds.rainfall = v }, nil
		},
		func(ctx context.Context) (func(), error) {
			v := s.snowpack.GetObservation(ctx, req.Lat, req.Lon)
			return func() { feeds.snowpack = v }, nil
		},
		func(ctx context.Context) (func(), error) {
			match, bulletin := s.resolveAvalanche(ctx, req, now, start)
			return func() { feeds.match, feeds.bulletin = match, bulletin }, nil
		},
	})

	for _, r := range results {
		if r.Err != nil {
			s.logger.Error().Err(r.Err).Msg("feed stage panicked")
			continue
		}
		r.Value()
	}

	// Panicked stages leave their slot nil; fill the sentinels.
	if feeds.alerts == nil {
		feeds.alerts = alerts.Unavailable()
	}
	if feeds.airQuality == nil {
		feeds.airQuality = airquality.Unavailable()
	}
	if feeds.rainfall == nil {
		feeds.rainfall = rainfall.Unavailable()
	}
	if feeds.snowpack == nil {
		feeds.snowpack = snowpack.Unavailable()
	}
	if feeds.bulletin == nil {
		feeds.bulletin = unavailableBulletin()
	}
	return feeds
}

// resolveAvalanche runs the zone-layer chain: cached layer, point
// resolution, then detail aggregation.
func (s *Service) resolveAvalanche(ctx context.Context, req Request, now, start time.Time) (geozone.Match, *avalanche.Bulletin) {
	zones, err := s.zones.Zones(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("zone layer unavailable")
		return geozone.Match{Mode: geozone.MatchNone}, unavailableBulletin()
	}

	match := s.resolver.Resolve(zones, req.Lat, req.Lon)
	return match, s.aggregator.Aggregate(ctx, match, now, start)
}

func unavailableBulletin() *avalanche.Bulletin {
	return &avalanche.Bulletin{
		Coverage:      avalanche.CoverageUnavailable,
		DangerUnknown: true,
		DangerLabel:   avalanche.DangerNoRating.Label(),
	}
}

// visibilityRisk grades 0-100 how likely the forecast is to obscure terrain.
// Nil means no visibility signal at all.
func visibilityRisk(snap *weather.Snapshot) *float64 {
	if !snap.Available() {
		return nil
	}
	cond := strings.ToLower(snap.Condition)

	var risk float64
	switch {
	case strings.Contains(cond, "blizzard") || strings.Contains(cond, "whiteout"):
		risk = 90
	case strings.Contains(cond, "fog") || strings.Contains(cond, "dense smoke"):
		risk = 65
	case strings.Contains(cond, "heavy snow"):
		risk = 60
	case strings.Contains(cond, "snow") && snap.WindMph != nil && *snap.WindMph >= 25:
		// Blowing snow obscures as badly as the falling kind.
		risk = 55
	case strings.Contains(cond, "heavy rain"):
		risk = 40
	}
	if risk == 0 {
		return nil
	}
	return &risk
}

func elevation(snap *weather.Snapshot) *float64 {
	if snap == nil {
		return nil
	}
	return snap.ElevationFt
}

func zoneMatch(m geozone.Match) ZoneMatch {
	zm := ZoneMatch{Mode: m.Mode, DistanceKm: m.DistanceKm}
	if zm.Mode == "" {
		zm.Mode = geozone.MatchNone
	}
	if m.Zone != nil {
		zm.ZoneName = m.Zone.Properties.Name
		zm.Center = m.Zone.Properties.Center
	}
	return zm
}
