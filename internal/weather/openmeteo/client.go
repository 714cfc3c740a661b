// Package openmeteo provides the Open-Meteo fallback weather provider, used
// for field-level substitution when the primary forecast has gaps.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailsafe/trailsafe/internal/provider/resilience"
	"github.com/trailsafe/trailsafe/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "open-meteo"

	// DefaultBaseURL is the Open-Meteo forecast API base URL.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.FeedClientConfig("open-meteo"))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetFallbackForecast fetches the hourly forecast and anchors the snapshot
// at the requested date and start hour.
func (c *Client) GetFallbackForecast(ctx context.Context, lat, lon float64, date time.Time, startClock int) (*weather.Snapshot, error) {
	url := fmt.Sprintf(
		"%s?latitude=%.4f&longitude=%.4f&hourly=temperature_2m,apparent_temperature,wind_speed_10m,wind_gusts_10m,precipitation_probability,relative_humidity_2m,snowfall&temperature_unit=fahrenheit&wind_speed_unit=mph&precipitation_unit=inch&timezone=auto",
		c.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var omResp forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&omResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	snap := c.toSnapshot(&omResp, date, startClock)
	if snap == nil {
		return nil, weather.ErrNoDataForLocation
	}
	return snap, nil
}

// toSnapshot anchors the snapshot at the hour closest to the requested
// start, carrying the rest of the day as the trend series.
func (c *Client) toSnapshot(resp *forecastResponse, date time.Time, startClock int) *weather.Snapshot {
	h := resp.Hourly
	if len(h.Time) == 0 {
		return nil
	}

	anchor := -1
	want := fmt.Sprintf("%sT%02d:00", date.Format("2006-01-02"), startClock)
	for i, ts := range h.Time {
		if ts == want {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		anchor = 0
	}

	snap := &weather.Snapshot{FetchedAt: time.Now()}
	snap.TemperatureF = at(h.Temperature, anchor)
	snap.FeelsLikeF = at(h.ApparentTemperature, anchor)
	snap.WindMph = at(h.WindSpeed, anchor)
	snap.GustMph = at(h.WindGusts, anchor)
	snap.PrecipChance = at(h.PrecipProbability, anchor)
	snap.Humidity = at(h.Humidity, anchor)

	for i := anchor; i < len(h.Time) && i < anchor+48; i++ {
		hour := weather.TrendHour{}
		if t, err := time.Parse("2006-01-02T15:04", h.Time[i]); err == nil {
			hour.Time = t
		}
		hour.TemperatureF = at(h.Temperature, i)
		hour.WindMph = at(h.WindSpeed, i)
		hour.GustMph = at(h.WindGusts, i)
		hour.PrecipChance = at(h.PrecipProbability, i)
		hour.SnowInches = at(h.Snowfall, i)
		snap.Trend = append(snap.Trend, hour)
	}

	snap.AttributeAll(ProviderName)
	return snap
}

// at safely indexes a parallel hourly array of nullable values.
func at(vals []*float64, i int) *float64 {
	if i < 0 || i >= len(vals) {
		return nil
	}
	return vals[i]
}

// Open-Meteo API response structures. Values are nullable; parallel arrays
// share the Time index.

type forecastResponse struct {
	Hourly struct {
		Time                []string   `json:"time"`
		Temperature         []*float64 `json:"temperature_2m"`
		ApparentTemperature []*float64 `json:"apparent_temperature"`
		WindSpeed           []*float64 `json:"wind_speed_10m"`
		WindGusts           []*float64 `json:"wind_gusts_10m"`
		PrecipProbability   []*float64 `json:"precipitation_probability"`
		Humidity            []*float64 `json:"relative_humidity_2m"`
		Snowfall            []*float64 `json:"snowfall"`
	} `json:"hourly"`
}
