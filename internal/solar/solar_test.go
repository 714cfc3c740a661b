package solar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trailsafe/trailsafe/internal/solar"
)

// Salt Lake City, mid-January: sunrise around 14:45 UTC, sunset around
// 00:20 UTC the next day (07:45 / 17:20 local).
func TestCompute_MidLatitudeWinter(t *testing.T) {
	times := solar.Compute(40.76, -111.89, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))

	assert.False(t, times.Polar)
	assert.Equal(t, 15, times.Sunrise.Day())
	sunriseHour := times.Sunrise.Hour()
	assert.GreaterOrEqual(t, sunriseHour, 14)
	assert.LessOrEqual(t, sunriseHour, 15)

	dayLength := times.Sunset.Sub(times.Sunrise)
	assert.Greater(t, dayLength, 9*time.Hour)
	assert.Less(t, dayLength, 10*time.Hour)
}

func TestCompute_PolarNight(t *testing.T) {
	// Utqiagvik, Alaska in late December: the sun never rises.
	times := solar.Compute(71.29, -156.79, time.Date(2026, 12, 21, 0, 0, 0, 0, time.UTC))

	assert.True(t, times.Polar)
	assert.True(t, times.Sunrise.IsZero())
	assert.False(t, times.IsDark(time.Date(2026, 12, 21, 12, 0, 0, 0, time.UTC)))
}

func TestIsDark(t *testing.T) {
	times := solar.Times{
		Sunrise: time.Date(2026, 1, 15, 14, 45, 0, 0, time.UTC),
		Sunset:  time.Date(2026, 1, 16, 0, 20, 0, 0, time.UTC),
	}

	assert.True(t, times.IsDark(time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC)))
	assert.False(t, times.IsDark(time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)))
	assert.True(t, times.IsDark(time.Date(2026, 1, 16, 1, 0, 0, 0, time.UTC)))
}

func TestIsPreSunrise(t *testing.T) {
	times := solar.Times{
		Sunrise: time.Date(2026, 1, 15, 14, 45, 0, 0, time.UTC),
		Sunset:  time.Date(2026, 1, 16, 0, 20, 0, 0, time.UTC),
	}

	// Alpine start before dawn on the same date.
	assert.True(t, times.IsPreSunrise(time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC)))
	// After sunset is dark but not pre-dawn.
	assert.False(t, times.IsPreSunrise(time.Date(2026, 1, 16, 1, 0, 0, 0, time.UTC)))
	// Daylight is neither.
	assert.False(t, times.IsPreSunrise(time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)))
}
