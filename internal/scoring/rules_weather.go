package scoring

import (
	"fmt"
	"time"

	"github.com/trailsafe/trailsafe/internal/alerts"
	"github.com/trailsafe/trailsafe/internal/weather"
)

// Instantaneous wind thresholds (mph).
const (
	windExtreme = 50.0
	windHigh    = 40.0
	windStrong  = 30.0
	windBreezy  = 20.0

	gustExtreme = 60.0
	gustHigh    = 45.0
	gustStrong  = 35.0

	// windPersistThreshold is the sustained-wind bar for the trend
	// persistence rule; hours above it accumulate impact.
	windPersistThreshold   = 25.0
	precipPersistThreshold = 50.0
)

// scoreWeather applies the weather rule family over the snapshot and the
// trend window.
func (e *Engine) scoreWeather(c *collector, in *Input) {
	w := in.Weather
	e.scoreLeadTime(c, in)

	if !w.Available() {
		c.explain("weather unavailable; weather rules skipped")
		return
	}

	window := trendWindow(w.Trend, in.startTime(), in.windowHours())

	e.scoreWind(c, w, window)
	e.scoreStorm(c, w, window)
	e.scoreCold(c, w)
	e.scoreHeat(c, in)
	e.scoreVisibility(c, in)
	e.scoreDarkness(c, in)
	e.scoreTempSwing(c, window)
	e.scorePrecipTotals(c, in)
}

// trendWindow slices the hourly series to the travel window, inclusive of the
// start instant and exclusive of the end, so an n-hour window holds at most n
// hourly samples. An empty slice means the trend does not reach the selected
// hours.
func trendWindow(trend []weather.TrendHour, start time.Time, hours int) []weather.TrendHour {
	end := start.Add(time.Duration(hours) * time.Hour)
	var window []weather.TrendHour
	for _, h := range trend {
		if h.Time.Before(start) || !h.Time.Before(end) {
			continue
		}
		window = append(window, h)
	}
	if len(window) == 0 {
		return trend // fall back to whatever the series covers
	}
	return window
}

func (e *Engine) scoreWind(c *collector, w *weather.Snapshot, window []weather.TrendHour) {
	if w.WindMph != nil {
		wind := *w.WindMph
		var impact float64
		switch {
		case wind >= windExtreme:
			impact = 16
		case wind >= windHigh:
			impact = 12
		case wind >= windStrong:
			impact = 8
		case wind >= windBreezy:
			impact = 4
		}
		c.add(HazardFactor{
			Hazard:  "Wind",
			Impact:  impact,
			Message: fmt.Sprintf("sustained winds of %.0f mph at the start hour", wind),
			Source:  w.Sources["wind"],
			Group:   GroupWeather,
		})
	}

	if w.GustMph != nil {
		gust := *w.GustMph
		var impact float64
		switch {
		case gust >= gustExtreme:
			impact = 10
		case gust >= gustHigh:
			impact = 7
		case gust >= gustStrong:
			impact = 4
		}
		c.add(HazardFactor{
			Hazard:  "Wind Gusts",
			Impact:  impact,
			Message: fmt.Sprintf("gusts to %.0f mph at the start hour", gust),
			Source:  w.Sources["gust"],
			Group:   GroupWeather,
		})
	}

	// Persistence: each windy hour in the window adds weight, so an
	// all-day blow outscores a single spike of the same peak.
	windy := 0
	for _, h := range window {
		if h.WindMph != nil && *h.WindMph >= windPersistThreshold {
			windy++
		}
	}
	if windy >= 2 {
		impact := float64(windy) * 1.5
		if impact > 9 {
			impact = 9
		}
		c.add(HazardFactor{
			Hazard:  "Sustained Wind",
			Impact:  impact,
			Message: fmt.Sprintf("winds at or above %.0f mph for %d hours of the travel window", windPersistThreshold, windy),
			Source:  w.Sources["wind"],
			Group:   GroupWeather,
		})
	}
}

func (e *Engine) scoreStorm(c *collector, w *weather.Snapshot, window []weather.TrendHour) {
	peak := 0.0
	if w.PrecipChance != nil {
		peak = *w.PrecipChance
	}
	for _, h := range window {
		if h.PrecipChance != nil && *h.PrecipChance > peak {
			peak = *h.PrecipChance
		}
	}
	var impact float64
	switch {
	case peak >= 80:
		impact = 9
	case peak >= 60:
		impact = 6
	case peak >= 40:
		impact = 3
	}
	c.add(HazardFactor{
		Hazard:  "Storm",
		Impact:  impact,
		Message: fmt.Sprintf("precipitation chance peaks at %.0f%% during the travel window", peak),
		Source:  w.Sources["precipChance"],
		Group:   GroupWeather,
	})

	wet := 0
	for _, h := range window {
		if h.PrecipChance != nil && *h.PrecipChance >= precipPersistThreshold {
			wet++
		}
	}
	if wet >= 3 {
		impact := float64(wet)
		if impact > 7 {
			impact = 7
		}
		c.add(HazardFactor{
			Hazard:  "Prolonged Precipitation",
			Impact:  impact,
			Message: fmt.Sprintf("precipitation likely for %d hours of the travel window", wet),
			Source:  w.Sources["precipChance"],
			Group:   GroupWeather,
		})
	}
}

func (e *Engine) scoreCold(c *collector, w *weather.Snapshot) {
	feels := w.FeelsLikeF
	if feels == nil {
		feels = w.TemperatureF
	}
	if feels == nil {
		return
	}
	t := *feels
	var impact float64
	switch {
	case t <= -20:
		impact = 14
	case t <= -5:
		impact = 10
	case t <= 10:
		impact = 6
	case t <= 20:
		impact = 3
	}
	c.add(HazardFactor{
		Hazard:  "Extreme Cold",
		Impact:  impact,
		Message: fmt.Sprintf("apparent temperature of %.0f°F at the start hour", t),
		Source:  w.Sources["feelsLike"],
		Group:   GroupWeather,
	})
}

// heatImpacts maps the heat classifier's 0-5 level to a deduction.
var heatImpacts = [6]float64{0, 2, 5, 9, 13, 16}

func (e *Engine) scoreHeat(c *collector, in *Input) {
	h := in.HeatRisk
	if h == nil || h.Level <= 0 {
		return
	}
	level := h.Level
	if level > 5 {
		level = 5
	}
	c.add(HazardFactor{
		Hazard:  "Heat",
		Impact:  heatImpacts[level],
		Message: fmt.Sprintf("heat risk graded %s (%d/5)", h.Label, h.Level),
		Group:   GroupWeather,
	})
}

func (e *Engine) scoreVisibility(c *collector, in *Input) {
	if in.VisibilityRisk == nil {
		return
	}
	v := *in.VisibilityRisk
	var impact float64
	switch {
	case v >= 80:
		impact = 12
	case v >= 60:
		impact = 8
	case v >= 40:
		impact = 4
	}
	c.add(HazardFactor{
		Hazard:  "Visibility",
		Impact:  impact,
		Message: fmt.Sprintf("visibility risk scored %.0f/100", v),
		Group:   GroupWeather,
	})
}

const darknessImpact = 6

func (e *Engine) scoreDarkness(c *collector, in *Input) {
	if in.Solar.Sunrise.IsZero() && !in.Solar.Polar {
		return
	}
	start := in.startTime()
	if !in.Solar.IsDark(start) {
		return
	}
	// A pre-dawn start is a deliberate alpine start, not a hazard.
	if in.Solar.IsPreSunrise(start) {
		c.explain("start is before sunrise; darkness penalty suppressed for alpine start")
		return
	}
	c.add(HazardFactor{
		Hazard:  "Darkness",
		Impact:  darknessImpact,
		Message: "travel begins after dark",
		Group:   GroupWeather,
	})
}

func (e *Engine) scoreTempSwing(c *collector, window []weather.TrendHour) {
	var min, max float64
	seen := false
	for _, h := range window {
		if h.TemperatureF == nil {
			continue
		}
		t := *h.TemperatureF
		if !seen {
			min, max = t, t
			seen = true
			continue
		}
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}
	if !seen {
		return
	}
	swing := max - min
	var impact float64
	switch {
	case swing >= 35:
		impact = 6
	case swing >= 25:
		impact = 3
	}
	c.add(HazardFactor{
		Hazard:  "Temperature Swing",
		Impact:  impact,
		Message: fmt.Sprintf("temperature swings %.0f°F across the travel window", swing),
		Group:   GroupWeather,
	})
}

func (e *Engine) scorePrecipTotals(c *collector, in *Input) {
	if r := in.Rainfall; r != nil {
		if r.RainLast24hIn >= 1.0 {
			c.add(HazardFactor{
				Hazard:  "Recent Rain",
				Impact:  5,
				Message: fmt.Sprintf("%.1f in of rain in the last 24 hours", r.RainLast24hIn),
				Source:  "open-meteo-archive",
				Group:   GroupWeather,
			})
		} else if r.RainLast72hIn >= 2.0 {
			c.add(HazardFactor{
				Hazard:  "Recent Rain",
				Impact:  4,
				Message: fmt.Sprintf("%.1f in of rain in the last 72 hours", r.RainLast72hIn),
				Source:  "open-meteo-archive",
				Group:   GroupWeather,
			})
		}
		if r.SnowLast72hIn >= 8.0 {
			c.add(HazardFactor{
				Hazard:  "Recent Snow",
				Impact:  6,
				Message: fmt.Sprintf("%.0f in of snow in the last 72 hours", r.SnowLast72hIn),
				Source:  "open-meteo-archive",
				Group:   GroupWeather,
			})
		}
	}

	if snow := in.Weather.ForecastSnowInches(); snow > 0 {
		var impact float64
		switch {
		case snow >= 12:
			impact = 10
		case snow >= 6:
			impact = 6
		case snow >= 3:
			impact = 3
		}
		c.add(HazardFactor{
			Hazard:  "New Snow",
			Impact:  impact,
			Message: fmt.Sprintf("%.0f in of new snow forecast during the travel window", snow),
			Group:   GroupWeather,
		})
	}
}

// leadBands grade uncertainty by how far out the selected start is.
var leadBands = []struct {
	hours  float64
	impact float64
}{
	{96, 10},
	{72, 7},
	{48, 5},
	{24, 3},
	{6, 1},
}

func (e *Engine) scoreLeadTime(c *collector, in *Input) {
	lead := in.startTime().Sub(in.Now).Hours()
	if lead <= 0 {
		return
	}
	var impact float64
	for _, band := range leadBands {
		if lead >= band.hours {
			impact = band.impact
			break
		}
	}
	if impact == 0 {
		return
	}
	// Without a time-relevant alert to anchor the forecast, distant
	// predictions carry even less weight.
	if in.Alerts != nil && in.Alerts.Status != alerts.StatusUnavailable && !in.Alerts.SelectedTimeRelevant && lead >= 48 {
		impact += 2
	}
	c.add(HazardFactor{
		Hazard:  "Forecast Uncertainty",
		Impact:  impact,
		Message: fmt.Sprintf("selected start is %.0f hours out", lead),
		Group:   GroupWeather,
	})
}
