package avalanche

import (
	"fmt"
	"time"

	"github.com/trailsafe/trailsafe/internal/snowpack"
	"github.com/trailsafe/trailsafe/internal/weather"
)

// Relevance is the outcome of deciding whether avalanche hazard matters at
// all for this point and date.
type Relevance struct {
	Relevant bool   `json:"relevant"`
	Reason   string `json:"reason"`
}

// forecastSnowRelevantIn is the travel-window snow accumulation that makes
// avalanche hazard relevant on its own.
const forecastSnowRelevantIn = 6.0

// Season windows. Months outside both are treated as summer.
var (
	winterMonths   = map[time.Month]bool{time.November: true, time.December: true, time.January: true, time.February: true, time.March: true}
	shoulderMonths = map[time.Month]bool{time.April: true, time.May: true, time.October: true}
)

// Elevation/latitude bands where terrain alone keeps hazard in play.
const (
	alpineElevationFt   = 8500.0
	northernElevationFt = 6500.0
	northernLatitude    = 42.0
)

// RelevanceInput carries everything the ordered rules look at.
type RelevanceInput struct {
	Lat          float64
	SelectedDate time.Time
	ElevationFt  *float64

	Weather  *weather.Snapshot
	Coverage CoverageStatus
	Snowpack *snowpack.Observation
}

// EvaluateRelevance applies the ordered rules; the first match wins. The
// layering avoids both failure modes of a single threshold: hiding real
// hazard when a center is off-season, and warning about avalanches on a
// summer valley hike.
func EvaluateRelevance(in RelevanceInput) Relevance {
	// 1. An expired bulletin is still shown as stale context.
	if in.Coverage == CoverageExpired {
		return Relevance{Relevant: true, Reason: "bulletin expired before the selected start; showing as stale context"}
	}

	// 2. An officially rated bulletin settles it.
	if in.Coverage == CoverageReported {
		return Relevance{Relevant: true, Reason: "avalanche center reports an active forecast for this zone"}
	}

	// 3. Enough forecast snow makes hazard real regardless of coverage.
	if snowIn := in.Weather.ForecastSnowInches(); snowIn >= forecastSnowRelevantIn {
		return Relevance{Relevant: true, Reason: fmt.Sprintf("forecast calls for %.0f in of new snow during the travel window", snowIn)}
	}

	// 4. Wintry conditions in the forecast keep hazard in play.
	if in.Weather.WintrySignal() {
		return Relevance{Relevant: true, Reason: "forecast indicates wintry conditions at this location"}
	}

	// 5. Graded snowpack signal, by season and terrain band.
	if in.Snowpack.Usable() {
		return snowpackRelevance(in)
	}

	// 6. No snowpack data: fall back to elevation and season alone.
	return seasonTerrainRelevance(in)
}

// snowpackRelevance grades rule 5: snowpack tier crossed with season window
// and terrain band.
func snowpackRelevance(in RelevanceInput) Relevance {
	tier := in.Snowpack.Tier()
	season := seasonWindow(in.SelectedDate)
	highTerrain := inHighTerrainBand(in.Lat, in.ElevationFt)

	switch tier {
	case snowpack.TierMaterial:
		return Relevance{Relevant: true, Reason: fmt.Sprintf(
			"nearby station reports %.0f in depth / %.1f in SWE, enough to carry avalanche hazard",
			in.Snowpack.DepthIn, in.Snowpack.SWEIn)}

	case snowpack.TierMeasurable:
		if season == seasonWinter || highTerrain {
			return Relevance{Relevant: true, Reason: "measurable snowpack in avalanche season or high terrain"}
		}
		return Relevance{Relevant: false, Reason: "thin snowpack outside avalanche season and below hazard elevations"}

	case snowpack.TierLow:
		if season == seasonWinter && highTerrain {
			return Relevance{Relevant: true, Reason: "minimal snowpack, but mid-winter high terrain can load quickly"}
		}
		return Relevance{Relevant: false, Reason: fmt.Sprintf(
			"nearby station reports only %.1f in depth / %.2f in SWE", in.Snowpack.DepthIn, in.Snowpack.SWEIn)}

	default: // ambiguous readings defer to season and terrain
		if season != seasonSummer && highTerrain {
			return Relevance{Relevant: true, Reason: "inconclusive snowpack readings at hazard-prone elevation"}
		}
		return Relevance{Relevant: false, Reason: "inconclusive snowpack readings at low hazard elevation"}
	}
}

// seasonTerrainRelevance is rule 6, used when snowpack data is unavailable.
func seasonTerrainRelevance(in RelevanceInput) Relevance {
	season := seasonWindow(in.SelectedDate)
	highTerrain := inHighTerrainBand(in.Lat, in.ElevationFt)

	switch {
	case season == seasonWinter && highTerrain:
		return Relevance{Relevant: true, Reason: "winter travel at avalanche-prone elevation; no snowpack data available"}
	case season == seasonWinter:
		return Relevance{Relevant: true, Reason: "winter season; no snowpack data available to rule hazard out"}
	case season == seasonShoulder && highTerrain:
		return Relevance{Relevant: true, Reason: "shoulder season at avalanche-prone elevation; lingering snowpack possible"}
	default:
		return Relevance{Relevant: false, Reason: "outside avalanche season at this elevation"}
	}
}

type season int

const (
	seasonSummer season = iota
	seasonShoulder
	seasonWinter
	seasonUnknown
)

func seasonWindow(date time.Time) season {
	if date.IsZero() {
		return seasonUnknown
	}
	switch m := date.Month(); {
	case winterMonths[m]:
		return seasonWinter
	case shoulderMonths[m]:
		return seasonShoulder
	default:
		return seasonSummer
	}
}

// inHighTerrainBand reports whether the elevation crosses the hazard band
// for the latitude: 8500 ft anywhere, 6500 ft above 42°N.
func inHighTerrainBand(lat float64, elevationFt *float64) bool {
	if elevationFt == nil {
		return false
	}
	if *elevationFt >= alpineElevationFt {
		return true
	}
	return lat > northernLatitude && *elevationFt >= northernElevationFt
}
