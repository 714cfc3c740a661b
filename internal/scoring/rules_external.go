package scoring

import (
	"fmt"

	"github.com/trailsafe/trailsafe/internal/airquality"
	"github.com/trailsafe/trailsafe/internal/alerts"
	"github.com/trailsafe/trailsafe/internal/firerisk"
)

// severityImpacts maps the worst alert severity to its base deduction.
var severityImpacts = map[alerts.Severity]float64{
	alerts.SeverityExtreme:  22,
	alerts.SeveritySevere:   15,
	alerts.SeverityModerate: 8,
	alerts.SeverityMinor:    3,
}

// scoreAlerts applies the NWS alert severity rule. Alerts that only
// describe the current state still score, at reduced weight, because they
// signal an unsettled pattern.
func (e *Engine) scoreAlerts(c *collector, in *Input) {
	a := in.Alerts
	if a == nil || a.Status == alerts.StatusUnavailable || len(a.Alerts) == 0 {
		return
	}

	worst := a.MaxSeverity()
	impact := severityImpacts[worst]
	if impact == 0 {
		return
	}
	if a.Status == alerts.StatusCurrentOnly {
		impact /= 2
	}

	// Each additional active alert adds a little weight.
	extra := float64(len(a.Alerts)-1) * 2
	if extra > 6 {
		extra = 6
	}

	label := worstEvent(a.Alerts, worst)
	c.add(HazardFactor{
		Hazard:  "Weather Alert",
		Impact:  impact + extra,
		Message: fmt.Sprintf("%s in effect (%s severity, %d active alert(s))", label, worst, len(a.Alerts)),
		Source:  "nws-alerts",
		Group:   GroupAlerts,
	})
}

func worstEvent(list []alerts.Alert, worst alerts.Severity) string {
	for _, a := range list {
		if a.Severity == worst {
			return a.Event
		}
	}
	return "alert"
}

// aqiBands grade the EPA AQI scale.
var aqiBands = []struct {
	aqi    int
	impact float64
}{
	{300, 20},
	{200, 15},
	{150, 11},
	{100, 6},
	{50, 2},
}

// scoreAirQuality applies the AQI rule. A current observation says nothing
// about a future date, so non-applicable statuses skip the rule entirely.
func (e *Engine) scoreAirQuality(c *collector, in *Input) {
	aq := in.AirQuality
	if !aq.Applicable() {
		if aq != nil && aq.Status == airquality.StatusNotApplicableFutureDate {
			c.explain("air quality not scored: current AQI does not apply to the selected date")
		}
		return
	}

	var impact float64
	for _, band := range aqiBands {
		if aq.AQI >= band.aqi {
			impact = band.impact
			break
		}
	}
	c.add(HazardFactor{
		Hazard:  "Air Quality",
		Impact:  impact,
		Message: fmt.Sprintf("AQI %d (%s, %s)", aq.AQI, aq.Category, aq.Pollutant),
		Source:  "airnow",
		Group:   GroupAirQuality,
	})
}

// fireImpacts maps the fire classifier's 0-5 level to a deduction. Level 5
// lands on the group cap.
var fireImpacts = [6]float64{0, 2, 5, 9, 13, 18}

func (e *Engine) scoreFire(c *collector, in *Input) {
	f := in.FireRisk
	if f == nil || f.Status != firerisk.StatusOK || f.Level <= 0 {
		return
	}
	level := f.Level
	if level > 5 {
		level = 5
	}
	msg := fmt.Sprintf("fire weather risk graded %s (%d/5)", f.Label, f.Level)
	if len(f.Reasons) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, f.Reasons[0])
	}
	c.add(HazardFactor{
		Hazard:  "Fire Weather",
		Impact:  fireImpacts[level],
		Message: msg,
		Group:   GroupFire,
	})
}
