// Package solar computes sunrise and sunset for a point and date using the
// NOAA solar position equations, feeding the darkness rules in scoring.
package solar

import (
	"math"
	"time"
)

// Times holds the computed solar events for one date and location.
type Times struct {
	Sunrise time.Time `json:"sunrise"`
	Sunset  time.Time `json:"sunset"`

	// Polar is true when the sun never rises or never sets on this date at
	// this latitude; Sunrise/Sunset are zero in that case.
	Polar bool `json:"polar,omitempty"`
}

// Compute returns sunrise and sunset in UTC for the given date.
func Compute(lat, lon float64, date time.Time) Times {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	n := float64(day.YearDay())

	// Fractional year in radians, mid-day anchor.
	gamma := 2 * math.Pi / 365 * (n - 1 + 0.5)

	// Equation of time (minutes) and solar declination (radians).
	eqTime := 229.18 * (0.000075 +
		0.001868*math.Cos(gamma) - 0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) - 0.040849*math.Sin(2*gamma))
	decl := 0.006918 -
		0.399912*math.Cos(gamma) + 0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) + 0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) + 0.00148*math.Sin(3*gamma)

	latRad := lat * math.Pi / 180

	// Hour angle for official sunrise (zenith 90.833°).
	cosHA := (math.Cos(90.833*math.Pi/180) - math.Sin(latRad)*math.Sin(decl)) /
		(math.Cos(latRad) * math.Cos(decl))
	if cosHA > 1 || cosHA < -1 {
		return Times{Polar: true}
	}
	ha := math.Acos(cosHA) * 180 / math.Pi

	riseMinutes := 720 - 4*(lon+ha) - eqTime
	setMinutes := 720 - 4*(lon-ha) - eqTime

	return Times{
		Sunrise: day.Add(time.Duration(riseMinutes * float64(time.Minute))),
		Sunset:  day.Add(time.Duration(setMinutes * float64(time.Minute))),
	}
}

// IsDark reports whether the instant falls outside civil daylight.
func (t Times) IsDark(at time.Time) bool {
	if t.Polar {
		return false // no usable signal either way
	}
	return at.Before(t.Sunrise) || at.After(t.Sunset)
}

// IsPreSunrise reports whether the instant is the same date's pre-dawn
// darkness, the window alpine starts deliberately use.
func (t Times) IsPreSunrise(at time.Time) bool {
	if t.Polar {
		return false
	}
	return at.Before(t.Sunrise) && at.YearDay() == t.Sunrise.YearDay()
}
