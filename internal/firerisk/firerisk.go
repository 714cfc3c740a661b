// Package firerisk provides the pure fire-weather and heat-risk classifiers.
// Both are deterministic functions over already-fetched inputs; they make no
// upstream calls of their own.
package firerisk

import (
	"fmt"
	"strings"

	"github.com/trailsafe/trailsafe/internal/airquality"
	"github.com/trailsafe/trailsafe/internal/alerts"
	"github.com/trailsafe/trailsafe/internal/weather"
)

// Status describes whether a classification could be made.
type Status string

const (
	// StatusOK means the classifier had enough input to grade the risk.
	StatusOK Status = "ok"

	// StatusNoData means the inputs were too thin to say anything.
	StatusNoData Status = "no_data"
)

// Risk is a graded 0-5 hazard classification.
type Risk struct {
	Status  Status   `json:"status"`
	Level   int      `json:"level"`
	Label   string   `json:"label"`
	Reasons []string `json:"reasons,omitempty"`
}

// levelLabels maps a 0-5 level to its display word.
var levelLabels = [6]string{"none", "low", "elevated", "high", "very high", "extreme"}

func labelFor(level int) string {
	if level < 0 {
		level = 0
	}
	if level > 5 {
		level = 5
	}
	return levelLabels[level]
}

// fireAlertEvents are alert products that force a high fire grade.
var fireAlertEvents = []string{"red flag warning", "fire weather watch", "extreme fire"}

// ClassifyFire grades fire-weather risk from temperature, humidity, wind,
// smoke, and fire-weather alerts.
func ClassifyFire(w *weather.Snapshot, al *alerts.Summary, aq *airquality.Summary) Risk {
	if !w.Available() {
		return Risk{Status: StatusNoData, Label: labelFor(0)}
	}

	level := 0
	var reasons []string

	if al != nil {
		for _, a := range al.Alerts {
			event := strings.ToLower(a.Event)
			for _, fe := range fireAlertEvents {
				if strings.Contains(event, fe) {
					level = max(level, 4)
					reasons = append(reasons, fmt.Sprintf("active alert: %s", a.Event))
				}
			}
		}
	}

	if w.TemperatureF != nil && w.Humidity != nil {
		t, h := *w.TemperatureF, *w.Humidity
		switch {
		case t >= 90 && h <= 15:
			level = max(level, 4)
			reasons = append(reasons, fmt.Sprintf("hot and very dry (%.0f°F, %.0f%% RH)", t, h))
		case t >= 85 && h <= 25:
			level = max(level, 3)
			reasons = append(reasons, fmt.Sprintf("warm and dry (%.0f°F, %.0f%% RH)", t, h))
		case t >= 75 && h <= 30:
			level = max(level, 2)
			reasons = append(reasons, "dry conditions")
		}
	}

	if level >= 2 && w.WindMph != nil && *w.WindMph >= 20 {
		level = min(level+1, 5)
		reasons = append(reasons, fmt.Sprintf("wind %.0f mph drives fire spread", *w.WindMph))
	}

	// Heavy smoke implies active fire nearby.
	if aq.Applicable() && aq.AQI >= 150 && strings.Contains(strings.ToUpper(aq.Pollutant), "PM") {
		level = max(level, 2)
		reasons = append(reasons, fmt.Sprintf("particulate AQI %d suggests smoke", aq.AQI))
	}

	return Risk{Status: StatusOK, Level: level, Label: labelFor(level), Reasons: reasons}
}

// ClassifyHeat grades heat risk from apparent temperature.
func ClassifyHeat(w *weather.Snapshot) Risk {
	if !w.Available() {
		return Risk{Status: StatusNoData, Label: labelFor(0)}
	}

	feels := w.TemperatureF
	if w.FeelsLikeF != nil {
		feels = w.FeelsLikeF
	}
	if feels == nil {
		return Risk{Status: StatusNoData, Label: labelFor(0)}
	}

	level := 0
	switch f := *feels; {
	case f >= 110:
		level = 5
	case f >= 103:
		level = 4
	case f >= 95:
		level = 3
	case f >= 88:
		level = 2
	case f >= 80:
		level = 1
	}

	r := Risk{Status: StatusOK, Level: level, Label: labelFor(level)}
	if level >= 2 {
		r.Reasons = append(r.Reasons, fmt.Sprintf("apparent temperature %.0f°F", *feels))
	}
	if level >= 2 && w.Humidity != nil && *w.Humidity >= 60 {
		r.Reasons = append(r.Reasons, "high humidity slows cooling")
	}
	return r
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
