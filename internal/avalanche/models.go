// Package avalanche aggregates avalanche bulletin detail for a matched hazard
// zone and decides whether avalanche hazard is relevant at all for a given
// point and date. Upstream detail endpoints are unreliable and occasionally
// return concatenated JSON or raw HTML; everything in this package degrades
// to partial data instead of failing.
package avalanche

import (
	"strings"
	"time"
)

// DangerLevel is the North American avalanche danger scale, 0-5.
// 0 means no rating was issued.
type DangerLevel int

// Danger scale values.
const (
	DangerNoRating     DangerLevel = 0
	DangerLow          DangerLevel = 1
	DangerModerate     DangerLevel = 2
	DangerConsiderable DangerLevel = 3
	DangerHigh         DangerLevel = 4
	DangerExtreme      DangerLevel = 5
)

// Label returns the danger word for the level.
func (d DangerLevel) Label() string {
	switch d {
	case DangerLow:
		return "low"
	case DangerModerate:
		return "moderate"
	case DangerConsiderable:
		return "considerable"
	case DangerHigh:
		return "high"
	case DangerExtreme:
		return "extreme"
	default:
		return "no rating"
	}
}

// Rated reports whether the level is an actual issued rating.
func (d DangerLevel) Rated() bool {
	return d >= DangerLow && d <= DangerExtreme
}

// clampDanger forces an upstream integer into the 0-5 scale.
func clampDanger(v int) DangerLevel {
	if v < 0 {
		return DangerNoRating
	}
	if v > 5 {
		return DangerExtreme
	}
	return DangerLevel(v)
}

// ElevationDanger holds per-elevation-band danger levels.
type ElevationDanger struct {
	Above DangerLevel `json:"above"`
	At    DangerLevel `json:"at"`
	Below DangerLevel `json:"below"`
}

// Overall returns the highest band level. The bands are never averaged: a
// single dangerous band makes the zone dangerous.
func (e ElevationDanger) Overall() DangerLevel {
	max := e.Above
	if e.At > max {
		max = e.At
	}
	if e.Below > max {
		max = e.Below
	}
	return max
}

// Rated reports whether any band carries an issued rating.
func (e ElevationDanger) Rated() bool {
	return e.Overall().Rated()
}

// CoverageStatus describes why, or whether, a bulletin applies to the
// selected point and start time. The values are mutually exclusive.
type CoverageStatus string

const (
	// CoverageReported means an active rated bulletin covers the point.
	CoverageReported CoverageStatus = "reported"

	// CoverageNoCenter means no center's zone covers the point.
	CoverageNoCenter CoverageStatus = "no_center_coverage"

	// CoverageNoActiveForecast means a zone covers the point but the center
	// issued no rated danger word, typically off-season.
	CoverageNoActiveForecast CoverageStatus = "no_active_forecast"

	// CoverageUnavailable means the zone layer or detail feeds could not be
	// reached at all.
	CoverageUnavailable CoverageStatus = "temporarily_unavailable"

	// CoverageExpired means the bulletin expired before the selected start.
	CoverageExpired CoverageStatus = "expired_for_selected_start"
)

// Problem is one avalanche problem from a bulletin.
type Problem struct {
	Name       string `json:"name"`
	Likelihood string `json:"likelihood,omitempty"`
	Size       string `json:"size,omitempty"`
	Discussion string `json:"discussion,omitempty"`
}

// Staleness thresholds for published bulletins.
const (
	// staleSoftAge flags a bulletin as aging without discarding its rating.
	staleSoftAge = 48 * time.Hour

	// staleHardAge forces dangerUnknown regardless of the reported level.
	staleHardAge = 72 * time.Hour
)

// Bulletin is the reconciled avalanche product for one zone and start time.
type Bulletin struct {
	CenterID   string `json:"centerId"`
	CenterName string `json:"centerName,omitempty"`
	ZoneID     int    `json:"zoneId"`
	ZoneName   string `json:"zoneName"`

	Danger      ElevationDanger `json:"danger"`
	DangerLabel string          `json:"dangerLabel"`

	// DangerUnknown is true whenever coverage is not "reported", the center
	// issued no rated danger word, or the bulletin aged past the hard
	// staleness threshold.
	DangerUnknown bool `json:"dangerUnknown"`

	// Stale flags a bulletin between the soft and hard staleness thresholds.
	Stale bool `json:"stale,omitempty"`

	Coverage CoverageStatus `json:"coverageStatus"`

	Problems   []Problem `json:"problems"`
	BottomLine string    `json:"bottomLine,omitempty"`

	TravelAdvice string `json:"travelAdvice,omitempty"`
	Link         string `json:"link,omitempty"`

	PublishedAt time.Time `json:"publishedTime,omitempty"`
	ExpiresAt   time.Time `json:"expiresTime,omitempty"`

	Relevant        bool   `json:"relevant"`
	RelevanceReason string `json:"relevanceReason,omitempty"`

	// summaryDanger is the raw danger word from the map-layer summary, kept
	// for coverage classification when detail fetches fail.
	summaryDanger string
}

// ratedDangerWords are the issued danger words of the scale. Anything else
// ("no rating", "off season", "") means no active forecast.
var ratedDangerWords = map[string]bool{
	"low": true, "moderate": true, "considerable": true,
	"high": true, "extreme": true,
}

// ratedSummaryWord reports whether the map-layer summary carried an actual
// issued danger word.
func (b *Bulletin) ratedSummaryWord() bool {
	return ratedDangerWords[strings.ToLower(strings.TrimSpace(b.summaryDanger))]
}

// applyStaleness derives the staleness flags and, when needed, the coverage
// downgrade from the bulletin timestamps. now is the evaluation clock and
// start the selected trip start.
func (b *Bulletin) applyStaleness(now, start time.Time) {
	if !b.ExpiresAt.IsZero() && !start.IsZero() && b.ExpiresAt.Before(start) {
		b.Coverage = CoverageExpired
	}
	if b.PublishedAt.IsZero() {
		return
	}
	age := now.Sub(b.PublishedAt)
	switch {
	case age > staleHardAge:
		b.DangerUnknown = true
	case age > staleSoftAge:
		b.Stale = true
	}
}

// finalize derives DangerUnknown and the danger label from coverage and the
// rated bands. Call after coverage and staleness are settled.
func (b *Bulletin) finalize() {
	if b.Coverage != CoverageReported || !b.Danger.Rated() {
		b.DangerUnknown = true
	}
	b.DangerLabel = b.Danger.Overall().Label()
}
