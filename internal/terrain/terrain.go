// Package terrain classifies expected trail-surface conditions from the
// reconciled weather, snowpack, and recent rainfall. The classification is
// display-facing and also feeds the avalanche relevance wintry-signal check.
package terrain

import (
	"fmt"

	"github.com/trailsafe/trailsafe/internal/rainfall"
	"github.com/trailsafe/trailsafe/internal/snowpack"
	"github.com/trailsafe/trailsafe/internal/weather"
)

// Code is the terrain condition class.
type Code string

const (
	CodeDry      Code = "dry"
	CodeWet      Code = "wet"
	CodeMuddy    Code = "muddy"
	CodeSnowy    Code = "snowy"
	CodeIcy      Code = "icy"
	CodeUnknown  Code = "unknown"
)

// SnowProfile summarizes on-the-ground snow when it drives the condition.
type SnowProfile struct {
	DepthIn float64 `json:"depthIn"`
	SWEIn   float64 `json:"sweIn"`
	Station string  `json:"station,omitempty"`
}

// Condition is the classification result.
type Condition struct {
	Code       Code     `json:"code"`
	Label      string   `json:"label"`
	Confidence int      `json:"confidence"`
	Reasons    []string `json:"reasons,omitempty"`

	SnowProfile *SnowProfile `json:"snowProfile,omitempty"`
}

// labels maps codes to display labels.
var labels = map[Code]string{
	CodeDry:     "Dry trails",
	CodeWet:     "Wet trails",
	CodeMuddy:   "Muddy trails",
	CodeSnowy:   "Snow-covered trails",
	CodeIcy:     "Icy trails",
	CodeUnknown: "Conditions unknown",
}

// Classify grades the trail surface. Snowpack and rainfall are optional;
// missing inputs lower confidence instead of failing.
func Classify(w *weather.Snapshot, snow *snowpack.Observation, rain *rainfall.Summary) Condition {
	if !w.Available() {
		return Condition{Code: CodeUnknown, Label: labels[CodeUnknown], Confidence: 20}
	}

	cond := Condition{Code: CodeDry, Confidence: 80}

	if snow.Usable() && snow.DepthIn >= snowpack.MeasurableDepthIn {
		cond.Code = CodeSnowy
		cond.Reasons = append(cond.Reasons,
			fmt.Sprintf("%.0f in snow at %s", snow.DepthIn, snow.StationName))
		cond.SnowProfile = &SnowProfile{
			DepthIn: snow.DepthIn,
			SWEIn:   snow.SWEIn,
			Station: snow.StationName,
		}
		if w.TemperatureF != nil && *w.TemperatureF > 38 {
			cond.Reasons = append(cond.Reasons, "warm temps soften the snowpack")
		}
	} else if w.WintrySignal() {
		if freezeThawCycle(w, rain) {
			cond.Code = CodeIcy
			cond.Reasons = append(cond.Reasons, "recent moisture with freezing temperatures")
		} else {
			cond.Code = CodeSnowy
			cond.Reasons = append(cond.Reasons, "wintry forecast")
			cond.Confidence = 60
		}
	} else if rain != nil && rain.Status == rainfall.StatusOK {
		switch {
		case rain.RainLast24hIn >= 0.75:
			cond.Code = CodeMuddy
			cond.Reasons = append(cond.Reasons,
				fmt.Sprintf("%.2f in rain in the last day", rain.RainLast24hIn))
		case rain.RainLast72hIn >= 1.0:
			cond.Code = CodeWet
			cond.Reasons = append(cond.Reasons,
				fmt.Sprintf("%.2f in rain over three days", rain.RainLast72hIn))
		}
	}

	if !snow.Usable() {
		cond.Confidence -= 15
	}
	if rain == nil || rain.Status != rainfall.StatusOK {
		cond.Confidence -= 15
	}
	if cond.Confidence < 20 {
		cond.Confidence = 20
	}

	cond.Label = labels[cond.Code]
	return cond
}

// freezeThawCycle reports likely ice: recent liquid water plus a hard
// freeze.
func freezeThawCycle(w *weather.Snapshot, rain *rainfall.Summary) bool {
	if rain == nil || rain.Status != rainfall.StatusOK || rain.RainLast72hIn < 0.1 {
		return false
	}
	return w.TemperatureF != nil && *w.TemperatureF <= 30
}
