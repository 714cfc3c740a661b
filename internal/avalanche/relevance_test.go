package avalanche_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trailsafe/trailsafe/internal/avalanche"
	"github.com/trailsafe/trailsafe/internal/snowpack"
	"github.com/trailsafe/trailsafe/internal/weather"
)

func fptr(f float64) *float64 { return &f }

func winterDate() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) }
func summerDate() time.Time { return time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC) }

func TestRelevanceReportedCoverageAlwaysRelevant(t *testing.T) {
	r := avalanche.EvaluateRelevance(avalanche.RelevanceInput{
		Lat:          40.6,
		SelectedDate: summerDate(),
		Coverage:     avalanche.CoverageReported,
	})

	assert.True(t, r.Relevant)
}

func TestRelevanceExpiredCoverageShownAsStaleContext(t *testing.T) {
	r := avalanche.EvaluateRelevance(avalanche.RelevanceInput{
		Lat:          40.6,
		SelectedDate: winterDate(),
		Coverage:     avalanche.CoverageExpired,
	})

	assert.True(t, r.Relevant)
	assert.Contains(t, r.Reason, "expired")
}

func TestRelevanceForecastSnowOverridesSeason(t *testing.T) {
	snow := fptr(3.5)
	w := &weather.Snapshot{
		TemperatureF: fptr(45),
		Trend: []weather.TrendHour{
			{SnowInches: snow},
			{SnowInches: snow},
		},
	}

	r := avalanche.EvaluateRelevance(avalanche.RelevanceInput{
		Lat:          40.6,
		SelectedDate: summerDate(),
		Coverage:     avalanche.CoverageNoActiveForecast,
		Weather:      w,
	})

	assert.True(t, r.Relevant)
	assert.Contains(t, r.Reason, "new snow")
}

func TestRelevanceWintrySignal(t *testing.T) {
	w := &weather.Snapshot{TemperatureF: fptr(28), Condition: "Snow Showers"}

	r := avalanche.EvaluateRelevance(avalanche.RelevanceInput{
		Lat:          40.6,
		SelectedDate: winterDate(),
		Coverage:     avalanche.CoverageNoCenter,
		Weather:      w,
	})

	assert.True(t, r.Relevant)
}

func TestRelevanceSnowpackTiers(t *testing.T) {
	obs := func(depth, swe float64) *snowpack.Observation {
		return &snowpack.Observation{Status: snowpack.StatusOK, DepthIn: depth, SWEIn: swe}
	}
	warm := &weather.Snapshot{TemperatureF: fptr(55)}

	cases := []struct {
		name     string
		date     time.Time
		lat      float64
		elevFt   *float64
		snow     *snowpack.Observation
		relevant bool
	}{
		{"material depth always relevant", summerDate(), 40.6, fptr(5000), obs(10, 2.5), true},
		{"measurable in winter", winterDate(), 40.6, fptr(5000), obs(3, 0.8), true},
		{"measurable in summer low elevation", summerDate(), 40.6, fptr(5000), obs(3, 0.8), false},
		{"measurable in summer high terrain", summerDate(), 40.6, fptr(9000), obs(3, 0.8), true},
		{"low tier midwinter high terrain", winterDate(), 40.6, fptr(9000), obs(0.5, 0.1), true},
		{"low tier midwinter valley", winterDate(), 40.6, fptr(4500), obs(0.5, 0.1), false},
		{"northern band uses lower elevation bar", summerDate(), 45.0, fptr(7000), obs(3, 0.8), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := avalanche.EvaluateRelevance(avalanche.RelevanceInput{
				Lat:          tc.lat,
				SelectedDate: tc.date,
				ElevationFt:  tc.elevFt,
				Coverage:     avalanche.CoverageNoActiveForecast,
				Weather:      warm,
				Snowpack:     tc.snow,
			})
			assert.Equal(t, tc.relevant, r.Relevant)
			assert.NotEmpty(t, r.Reason)
		})
	}
}

func TestRelevanceNoSnowpackDataFallsBackToSeason(t *testing.T) {
	warm := &weather.Snapshot{TemperatureF: fptr(40)}

	winter := avalanche.EvaluateRelevance(avalanche.RelevanceInput{
		Lat:          40.6,
		SelectedDate: winterDate(),
		Coverage:     avalanche.CoverageNoActiveForecast,
		Weather:      warm,
	})
	assert.True(t, winter.Relevant)

	summer := avalanche.EvaluateRelevance(avalanche.RelevanceInput{
		Lat:          40.6,
		SelectedDate: summerDate(),
		ElevationFt:  fptr(4000),
		Weather:      &weather.Snapshot{TemperatureF: fptr(75)},
		Coverage:     avalanche.CoverageNoActiveForecast,
	})
	assert.False(t, summer.Relevant)
}

func TestElevationBandDangerOverallIsMax(t *testing.T) {
	d := avalanche.ElevationDanger{
		Above: avalanche.DangerHigh,
		At:    avalanche.DangerModerate,
		Below: avalanche.DangerModerate,
	}
	assert.Equal(t, avalanche.DangerHigh, d.Overall())
}
