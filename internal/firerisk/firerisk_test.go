package firerisk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trailsafe/trailsafe/internal/airquality"
	"github.com/trailsafe/trailsafe/internal/alerts"
	"github.com/trailsafe/trailsafe/internal/firerisk"
	"github.com/trailsafe/trailsafe/internal/weather"
)

func fptr(f float64) *float64 { return &f }

func snapshot(tempF, humidity, windMph float64) *weather.Snapshot {
	return &weather.Snapshot{
		TemperatureF: fptr(tempF),
		Humidity:     fptr(humidity),
		WindMph:      fptr(windMph),
	}
}

func TestClassifyFire_NoWeatherMeansNoData(t *testing.T) {
	risk := firerisk.ClassifyFire(nil, nil, nil)
	assert.Equal(t, firerisk.StatusNoData, risk.Status)
	assert.Zero(t, risk.Level)
}

func TestClassifyFire_HotDryWindy(t *testing.T) {
	// Hot and very dry grades 4; wind pushes it to 5.
	risk := firerisk.ClassifyFire(snapshot(95, 10, 25), nil, nil)

	assert.Equal(t, firerisk.StatusOK, risk.Status)
	assert.Equal(t, 5, risk.Level)
	assert.Equal(t, "extreme", risk.Label)
	assert.NotEmpty(t, risk.Reasons)
}

func TestClassifyFire_MildConditionsGradeZero(t *testing.T) {
	risk := firerisk.ClassifyFire(snapshot(55, 70, 5), nil, nil)

	assert.Equal(t, firerisk.StatusOK, risk.Status)
	assert.Zero(t, risk.Level)
	assert.Empty(t, risk.Reasons)
}

func TestClassifyFire_RedFlagWarningForcesHigh(t *testing.T) {
	al := &alerts.Summary{
		Status: alerts.StatusOK,
		Alerts: []alerts.Alert{{Event: "Red Flag Warning", Severity: alerts.SeveritySevere}},
	}

	risk := firerisk.ClassifyFire(snapshot(60, 50, 5), al, nil)

	assert.GreaterOrEqual(t, risk.Level, 4)
	assert.Contains(t, risk.Reasons[0], "Red Flag Warning")
}

func TestClassifyFire_SmokeRaisesFloor(t *testing.T) {
	aq := &airquality.Summary{Status: airquality.StatusOK, AQI: 175, Pollutant: "PM2.5"}

	risk := firerisk.ClassifyFire(snapshot(55, 70, 5), nil, aq)

	assert.Equal(t, 2, risk.Level)
	assert.Contains(t, risk.Reasons[0], "AQI 175")
}

func TestClassifyHeat_Bands(t *testing.T) {
	cases := []struct {
		feelsF float64
		level  int
	}{
		{70, 0},
		{82, 1},
		{90, 2},
		{97, 3},
		{105, 4},
		{112, 5},
	}

	for _, tc := range cases {
		risk := firerisk.ClassifyHeat(&weather.Snapshot{TemperatureF: fptr(tc.feelsF)})
		assert.Equal(t, tc.level, risk.Level, "feels-like %.0f", tc.feelsF)
	}
}

func TestClassifyHeat_PrefersFeelsLike(t *testing.T) {
	snap := &weather.Snapshot{TemperatureF: fptr(92), FeelsLikeF: fptr(104), Humidity: fptr(70)}

	risk := firerisk.ClassifyHeat(snap)

	assert.Equal(t, 4, risk.Level)
	assert.Contains(t, risk.Reasons[1], "humidity")
}
