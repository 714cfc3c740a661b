// Package report orchestrates every hazard feed into one safety report for
// a point and start time. Weather is fetched first because its elevation and
// trend feed the avalanche relevance decision; the remaining feeds settle
// concurrently, and every degradation yields partial data rather than an
// error.
package report

import (
	"time"

	"github.com/trailsafe/trailsafe/internal/airquality"
	"github.com/trailsafe/trailsafe/internal/alerts"
	"github.com/trailsafe/trailsafe/internal/avalanche"
	"github.com/trailsafe/trailsafe/internal/firerisk"
	"github.com/trailsafe/trailsafe/internal/geozone"
	"github.com/trailsafe/trailsafe/internal/rainfall"
	"github.com/trailsafe/trailsafe/internal/scoring"
	"github.com/trailsafe/trailsafe/internal/snowpack"
	"github.com/trailsafe/trailsafe/internal/solar"
	"github.com/trailsafe/trailsafe/internal/terrain"
	"github.com/trailsafe/trailsafe/internal/weather"
)

// Request is one validated safety-report request.
type Request struct {
	Lat float64
	Lon float64

	// Date is the selected travel date, midnight UTC.
	Date time.Time

	// StartClock is the trip start hour, 0-23.
	StartClock int

	// TravelWindowHours is the planned duration; defaults upstream.
	TravelWindowHours int
}

// Start is the selected trip start instant.
func (r Request) Start() time.Time {
	return time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), r.StartClock, 0, 0, 0, time.UTC)
}

// ZoneMatch is the resolved hazard-zone match, flattened for the response.
type ZoneMatch struct {
	Mode       geozone.MatchMode `json:"mode"`
	ZoneName   string            `json:"zoneName,omitempty"`
	Center     string            `json:"center,omitempty"`
	DistanceKm float64           `json:"distanceKm,omitempty"`
}

// Report is the full safety report for one request.
type Report struct {
	Lat               float64   `json:"lat"`
	Lon               float64   `json:"lon"`
	Date              string    `json:"date"`
	Start             time.Time `json:"start"`
	TravelWindowHours int       `json:"travelWindowHours"`

	Safety *scoring.SafetyScoreResult `json:"safety"`

	Weather    *weather.Snapshot     `json:"weather,omitempty"`
	Zone       ZoneMatch             `json:"zone"`
	Avalanche  *avalanche.Bulletin   `json:"avalanche,omitempty"`
	Alerts     *alerts.Summary       `json:"alerts,omitempty"`
	AirQuality *airquality.Summary   `json:"airQuality,omitempty"`
	Rainfall   *rainfall.Summary     `json:"rainfall,omitempty"`
	Snowpack   *snowpack.Observation `json:"snowpack,omitempty"`
	FireRisk   *firerisk.Risk        `json:"fireRisk,omitempty"`
	HeatRisk   *firerisk.Risk        `json:"heatRisk,omitempty"`
	Terrain    *terrain.Condition    `json:"terrain,omitempty"`
	Sun        *solar.Times          `json:"sun,omitempty"`

	// PartialData is true when any stage degraded; the report is still
	// complete enough to render.
	PartialData bool `json:"partialData"`

	// APIWarning summarizes what degraded, for display.
	APIWarning string `json:"apiWarning,omitempty"`

	GeneratedAt time.Time `json:"generatedAt"`
}
