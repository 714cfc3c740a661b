package scoring

import (
	"fmt"
	"time"

	"github.com/trailsafe/trailsafe/internal/airquality"
	"github.com/trailsafe/trailsafe/internal/alerts"
	"github.com/trailsafe/trailsafe/internal/rainfall"
)

const (
	confidenceCeiling = 100
	confidenceFloor   = 20

	// minTrendDepth is the trend-series length below which persistence
	// rules lose meaning.
	minTrendDepth = 6
)

// confidence grades how much the inputs can be trusted, independently of
// how hazardous they look. It only ever subtracts from 100, down to the
// floor.
func (e *Engine) confidence(c *collector, in *Input) int {
	conf := float64(confidenceCeiling)
	dent := func(points float64, format string, args ...any) {
		conf -= points
		c.explain("confidence -%.0f: %s", points, fmt.Sprintf(format, args...))
	}

	// Weather issuance and trend depth.
	w := in.Weather
	switch {
	case !w.Available():
		dent(25, "weather data unavailable")
	default:
		if w.IssuedAt.IsZero() {
			dent(5, "weather forecast has no issuance time")
		} else if age := in.Now.Sub(w.IssuedAt); age > 12*time.Hour {
			dent(10, "weather forecast issued %.0f hours ago", age.Hours())
		} else if age > 6*time.Hour {
			dent(5, "weather forecast issued %.0f hours ago", age.Hours())
		}
		if len(w.Trend) < minTrendDepth {
			dent(8, "hourly trend has only %d point(s)", len(w.Trend))
		}
	}

	// Avalanche bulletin quality, only when hazard is in play.
	if b := in.Avalanche; b != nil && b.Relevant {
		if b.DangerUnknown {
			dent(12, "avalanche danger could not be rated")
		} else if b.Stale {
			dent(6, "avalanche bulletin is approaching staleness")
		}
	}

	// Alert feed state.
	switch {
	case in.Alerts == nil || in.Alerts.Status == alerts.StatusUnavailable:
		dent(8, "alert feed unavailable")
	case in.Alerts.Status == alerts.StatusCurrentOnly:
		dent(4, "alerts describe current state only, not the selected window")
	}

	// Air quality, only when a current reading would apply.
	if aq := in.AirQuality; aq != nil && aq.Status == airquality.StatusUnavailable {
		dent(5, "air quality feed unavailable")
	}

	// Rainfall anchoring.
	switch r := in.Rainfall; {
	case r == nil || r.Status == rainfall.StatusUnavailable:
		dent(6, "rainfall history unavailable")
	default:
		if age := r.AnchorAge(in.Now); age > 48*time.Hour {
			dent(5, "rainfall history anchored %.0f hours ago", age.Hours())
		}
		if r.FallbackMode {
			dent(4, "rainfall totals came from the forecast fallback, not the archive")
		}
	}

	// Forecast lead time.
	if lead := in.startTime().Sub(in.Now).Hours(); lead > 0 {
		switch {
		case lead >= 96:
			dent(20, "selected start is %.0f hours out", lead)
		case lead >= 72:
			dent(15, "selected start is %.0f hours out", lead)
		case lead >= 48:
			dent(10, "selected start is %.0f hours out", lead)
		case lead >= 24:
			dent(5, "selected start is %.0f hours out", lead)
		case lead >= 6:
			dent(2, "selected start is %.0f hours out", lead)
		}
	}

	// Fire synthesis.
	if in.FireRisk == nil {
		dent(4, "fire risk was not synthesized")
	}

	if conf < confidenceFloor {
		conf = confidenceFloor
	}
	return int(conf + 0.5)
}
