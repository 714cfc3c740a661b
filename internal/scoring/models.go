// Package scoring combines every hazard feed into one composite safety
// score, a primary-hazard label, an independent confidence grade, and an
// explanation trace. Each firing rule contributes a factor; factors are
// summed per hazard group, capped, and deducted from 100.
package scoring

import (
	"time"

	"github.com/trailsafe/trailsafe/internal/airquality"
	"github.com/trailsafe/trailsafe/internal/alerts"
	"github.com/trailsafe/trailsafe/internal/avalanche"
	"github.com/trailsafe/trailsafe/internal/firerisk"
	"github.com/trailsafe/trailsafe/internal/rainfall"
	"github.com/trailsafe/trailsafe/internal/solar"
	"github.com/trailsafe/trailsafe/internal/weather"
)

// Group is a hazard category with its own deduction cap.
type Group string

const (
	GroupAvalanche  Group = "avalanche"
	GroupWeather    Group = "weather"
	GroupAlerts     Group = "alerts"
	GroupAirQuality Group = "airQuality"
	GroupFire       Group = "fire"
)

// groupCaps bound how many points one category can deduct no matter how many
// of its rules fire.
var groupCaps = map[Group]float64{
	GroupAvalanche:  55,
	GroupWeather:    42,
	GroupAlerts:     24,
	GroupAirQuality: 20,
	GroupFire:       18,
}

// HazardFactor is one scored contribution to the composite score.
type HazardFactor struct {
	Hazard  string  `json:"hazard"`
	Impact  float64 `json:"impact"`
	Message string  `json:"message"`
	Source  string  `json:"source,omitempty"`
	Group   Group   `json:"group"`
}

// SafetyScoreResult is the full scoring output.
type SafetyScoreResult struct {
	// Score is 0-100, higher is safer.
	Score int `json:"score"`

	// Confidence is 20-100 and tracks data quality, not hazard. A benign
	// forecast built from thin data still scores low confidence.
	Confidence int `json:"confidence"`

	// PrimaryHazard names the top factor, or "None".
	PrimaryHazard string `json:"primaryHazard"`

	// Factors are sorted descending by impact.
	Factors []HazardFactor `json:"factors"`

	// GroupImpacts are the capped per-group deductions actually applied.
	GroupImpacts map[Group]float64 `json:"groupImpacts"`

	// Explanations trace why the score and confidence landed where they did.
	Explanations []string `json:"explanations"`

	// SourcesUsed lists the feeds that actually informed this result.
	SourcesUsed []string `json:"sourcesUsed"`
}

// Input carries every feed result the engine scores over.
type Input struct {
	Weather    *weather.Snapshot
	Avalanche  *avalanche.Bulletin
	Alerts     *alerts.Summary
	AirQuality *airquality.Summary
	FireRisk   *firerisk.Risk
	HeatRisk   *firerisk.Risk
	Rainfall   *rainfall.Summary

	// VisibilityRisk is an externally computed 0-100 visibility hazard
	// score, when a classifier supplied one.
	VisibilityRisk *float64

	SelectedDate      time.Time
	StartClock        int
	TravelWindowHours int
	Solar             solar.Times

	// Now anchors staleness and lead-time math; zero means wall clock.
	Now time.Time
}

// startTime is the selected date at the start clock hour, UTC.
func (in *Input) startTime() time.Time {
	d := in.SelectedDate
	return time.Date(d.Year(), d.Month(), d.Day(), in.StartClock, 0, 0, 0, time.UTC)
}

// windowHours defaults the travel window when the caller left it zero.
func (in *Input) windowHours() int {
	if in.TravelWindowHours <= 0 {
		return 8
	}
	return in.TravelWindowHours
}
