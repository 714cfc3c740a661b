package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailsafe/trailsafe/internal/airquality"
	"github.com/trailsafe/trailsafe/internal/alerts"
	"github.com/trailsafe/trailsafe/internal/avalanche"
	"github.com/trailsafe/trailsafe/internal/geozone"
	"github.com/trailsafe/trailsafe/internal/rainfall"
	"github.com/trailsafe/trailsafe/internal/report"
	"github.com/trailsafe/trailsafe/internal/scoring"
	"github.com/trailsafe/trailsafe/internal/snowpack"
	"github.com/trailsafe/trailsafe/internal/weather"
	"github.com/trailsafe/trailsafe/pkg/geo"
)

func fptr(f float64) *float64 { return &f }

type stubWeather struct {
	snap *weather.Snapshot
	err  error
}

func (s *stubWeather) GetSnapshot(context.Context, float64, float64, time.Time, int) (*weather.Snapshot, error) {
	return s.snap, s.err
}

type stubAlerts struct{ summary *alerts.Summary }

func (s *stubAlerts) GetSummary(context.Context, float64, float64, time.Time, int) *alerts.Summary {
	return s.summary
}

type stubAirQuality struct{ summary *airquality.Summary }

func (s *stubAirQuality) GetSummary(context.Context, float64, float64, time.Time, time.Time) *airquality.Summary {
	return s.summary
}

type stubRainfall struct{ summary *rainfall.Summary }

func (s *stubRainfall) GetSummary(context.Context, float64, float64) *rainfall.Summary {
	return s.summary
}

type stubSnowpack struct{ obs *snowpack.Observation }

func (s *stubSnowpack) GetObservation(context.Context, float64, float64) *snowpack.Observation {
	return s.obs
}

type stubZones struct {
	zones []geozone.Zone
	err   error
}

func (s *stubZones) Zones(context.Context) ([]geozone.Zone, error) { return s.zones, s.err }

type deadDetailProvider struct{}

func (deadDetailProvider) FetchDetail(context.Context, string) ([]byte, error) {
	return nil, errors.New("unreachable")
}

func (deadDetailProvider) FetchPage(context.Context, string) ([]byte, error) {
	return nil, errors.New("unreachable")
}

var (
	reportDate = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	reportNow  = time.Date(2026, 1, 15, 6, 0, 0, 0, time.UTC)
)

func healthySnapshot() *weather.Snapshot {
	return &weather.Snapshot{
		TemperatureF: fptr(25),
		WindMph:      fptr(10),
		PrecipChance: fptr(10),
		Humidity:     fptr(60),
		ElevationFt:  fptr(9200),
		IssuedAt:     reportNow.Add(-time.Hour),
		Trend: []weather.TrendHour{
			{Time: reportDate.Add(9 * time.Hour), TemperatureF: fptr(25)},
			{Time: reportDate.Add(10 * time.Hour), TemperatureF: fptr(27)},
			{Time: reportDate.Add(11 * time.Hour), TemperatureF: fptr(28)},
			{Time: reportDate.Add(12 * time.Hour), TemperatureF: fptr(29)},
			{Time: reportDate.Add(13 * time.Hour), TemperatureF: fptr(30)},
			{Time: reportDate.Add(14 * time.Hour), TemperatureF: fptr(30)},
		},
		Sources: map[string]string{"temperature": "nws"},
	}
}

func saltLakeZone() geozone.Zone {
	return geozone.Zone{
		ID: 278,
		Properties: geozone.ZoneProperties{
			Name:        "Salt Lake",
			CenterID:    "UAC",
			Center:      "Utah Avalanche Center",
			DangerLevel: 3,
			Danger:      "considerable",
		},
		Geometry: geozone.ZoneGeometry{Type: "Polygon"},
	}
}

func newTestService(w *stubWeather, zones *stubZones) *report.Service {
	return report.NewService(report.ServiceConfig{
		Weather:    w,
		Alerts:     &stubAlerts{summary: &alerts.Summary{Status: alerts.StatusOK}},
		AirQuality: &stubAirQuality{summary: &airquality.Summary{Status: airquality.StatusOK, AQI: 25}},
		Rainfall:   &stubRainfall{summary: &rainfall.Summary{Status: rainfall.StatusOK, AnchorTime: reportNow.Add(-3 * time.Hour)}},
		Snowpack:   &stubSnowpack{obs: &snowpack.Observation{Status: snowpack.StatusOK, DepthIn: 40, SWEIn: 9}},
		Zones:      zones,
		Resolver:   geozone.NewResolver(0),
		Aggregator: avalanche.NewAggregator(avalanche.AggregatorConfig{
			Provider: deadDetailProvider{},
			Logger:   zerolog.Nop(),
		}),
		Engine: scoring.NewEngine(zerolog.Nop()),
		Logger: zerolog.Nop(),
		Clock:  func() time.Time { return reportNow },
	})
}

func baseRequest() report.Request {
	return report.Request{
		Lat:               40.6,
		Lon:               -111.6,
		Date:              reportDate,
		StartClock:        9,
		TravelWindowHours: 8,
	}
}

func TestBuildFullReport(t *testing.T) {
	zone := saltLakeZone()
	zone.Geometry.Rings = geo.Polygon{
		{{-112.0, 40.0}, {-111.0, 40.0}, {-111.0, 41.0}, {-112.0, 41.0}, {-112.0, 40.0}},
	}
	svc := newTestService(&stubWeather{snap: healthySnapshot()}, &stubZones{zones: []geozone.Zone{zone}})

	rep := svc.Build(context.Background(), baseRequest())

	require.NotNil(t, rep.Safety)
	assert.False(t, rep.PartialData)
	assert.Empty(t, rep.APIWarning)
	assert.Equal(t, geozone.MatchPolygon, rep.Zone.Mode)

	// Considerable summary danger with material snowpack: avalanche leads.
	assert.Equal(t, "Avalanche", rep.Safety.PrimaryHazard)
	assert.True(t, rep.Avalanche.Relevant)
	assert.Equal(t, avalanche.CoverageReported, rep.Avalanche.Coverage)
}

func TestBuildDegradesOnDeadWeather(t *testing.T) {
	svc := newTestService(
		&stubWeather{err: weather.ErrProviderUnavailable},
		&stubZones{err: geozone.ErrLayerUnavailable},
	)

	rep := svc.Build(context.Background(), baseRequest())

	require.NotNil(t, rep.Safety)
	assert.True(t, rep.PartialData)
	assert.Contains(t, rep.APIWarning, "weather")
	assert.Contains(t, rep.APIWarning, "avalanche")
	assert.Equal(t, avalanche.CoverageUnavailable, rep.Avalanche.Coverage)
	assert.Equal(t, geozone.MatchNone, rep.Zone.Mode)

	// Degraded inputs mean low confidence, not a failed request.
	assert.GreaterOrEqual(t, rep.Safety.Confidence, 20)
	assert.Less(t, rep.Safety.Confidence, 80)
}

func TestBuildBlizzardAddsVisibilityFactor(t *testing.T) {
	snap := healthySnapshot()
	snap.Condition = "Blizzard conditions expected"
	svc := newTestService(&stubWeather{snap: snap}, &stubZones{zones: []geozone.Zone{}})

	rep := svc.Build(context.Background(), baseRequest())

	require.NotNil(t, rep.Safety)
	hazards := make([]string, 0, len(rep.Safety.Factors))
	for _, f := range rep.Safety.Factors {
		hazards = append(hazards, f.Hazard)
	}
	assert.Contains(t, hazards, "Visibility")
}

func TestBuildNoZoneCoverage(t *testing.T) {
	svc := newTestService(&stubWeather{snap: healthySnapshot()}, &stubZones{zones: []geozone.Zone{}})

	rep := svc.Build(context.Background(), baseRequest())

	assert.Equal(t, geozone.MatchNone, rep.Zone.Mode)
	assert.Equal(t, avalanche.CoverageNoCenter, rep.Avalanche.Coverage)
	// Winter, high elevation, deep snowpack: still relevant without a center.
	assert.True(t, rep.Avalanche.Relevant)
}
