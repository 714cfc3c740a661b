// Package openmeteo provides the Open-Meteo precipitation-history client.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailsafe/trailsafe/internal/provider/resilience"
	"github.com/trailsafe/trailsafe/internal/rainfall"
)

// ProviderName identifies this rainfall provider.
const ProviderName = "open-meteo-archive"

// Default endpoint URLs.
const (
	DefaultArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// ClientConfig holds configuration for the rainfall client.
type ClientConfig struct {
	// ArchiveURL is the archive API URL (optional).
	ArchiveURL string

	// ForecastURL is the forecast API URL used for the fallback anchor
	// (optional).
	ForecastURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches precipitation history, preferring the archive and falling
// back to the forecast endpoint's trailing hours when the archive lags.
type Client struct {
	archiveURL  string
	forecastURL string
	httpClient  *resilience.Client
	logger      zerolog.Logger
}

// NewClient creates a new rainfall client.
func NewClient(cfg ClientConfig) *Client {
	archiveURL := cfg.ArchiveURL
	if archiveURL == "" {
		archiveURL = DefaultArchiveURL
	}
	forecastURL := cfg.ForecastURL
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.FeedClientConfig(ProviderName))
	}
	return &Client{
		archiveURL:  archiveURL,
		forecastURL: forecastURL,
		httpClient:  httpClient,
		logger:      cfg.Logger,
	}
}

// FetchHistory returns trailing 72 hour precipitation totals.
func (c *Client) FetchHistory(ctx context.Context, lat, lon float64) (*rainfall.Summary, error) {
	now := time.Now().UTC()
	start := now.Add(-72 * time.Hour)

	summary, err := c.fetchDaily(ctx, c.archiveURL, lat, lon, start, now, false)
	if err == nil && summary.Status == rainfall.StatusOK {
		return summary, nil
	}

	// Archive lags a day or two; the forecast endpoint serves recent past
	// days too.
	fb, fbErr := c.fetchDaily(ctx, c.forecastURL, lat, lon, start, now, true)
	if fbErr != nil {
		if err != nil {
			return nil, err
		}
		return summary, nil
	}
	return fb, nil
}

func (c *Client) fetchDaily(ctx context.Context, base string, lat, lon float64, start, end time.Time, fallback bool) (*rainfall.Summary, error) {
	url := fmt.Sprintf(
		"%s?latitude=%.4f&longitude=%.4f&daily=rain_sum,snowfall_sum&start_date=%s&end_date=%s&precipitation_unit=inch&timezone=UTC",
		base, lat, lon, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if fallback {
		url = fmt.Sprintf(
			"%s?latitude=%.4f&longitude=%.4f&daily=rain_sum,snowfall_sum&past_days=3&forecast_days=1&precipitation_unit=inch&timezone=UTC",
			base, lat, lon)
	}

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

	var omResp dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&omResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return toSummary(&omResp, fallback), nil
}

// toSummary totals the daily series, anchoring at the newest day with data.
func toSummary(resp *dailyResponse, fallback bool) *rainfall.Summary {
	d := resp.Daily
	summary := &rainfall.Summary{Status: rainfall.StatusNoData, FallbackMode: fallback}

	anchor := -1
	for i := range d.Time {
		if i < len(d.Rain) && d.Rain[i] != nil {
			anchor = i
		}
	}
	if anchor < 0 {
		return summary
	}

	summary.Status = rainfall.StatusOK
	if t, err := time.Parse("2006-01-02", d.Time[anchor]); err == nil {
		summary.AnchorTime = t
	}
	if d.Rain[anchor] != nil {
		summary.RainLast24hIn = *d.Rain[anchor]
	}
	for i := anchor; i >= 0 && i > anchor-3; i-- {
		if i < len(d.Rain) && d.Rain[i] != nil {
			summary.RainLast72hIn += *d.Rain[i]
		}
		if i < len(d.Snow) && d.Snow[i] != nil {
			summary.SnowLast72hIn += *d.Snow[i]
		}
	}
	return summary
}

// Open-Meteo daily response structures.

type dailyResponse struct {
	Daily struct {
		Time []string   `json:"time"`
		Rain []*float64 `json:"rain_sum"`
		Snow []*float64 `json:"snowfall_sum"`
	} `json:"daily"`
}
