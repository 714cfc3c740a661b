// Package airnow provides the AirNow current-observation AQI client.
package airnow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailsafe/trailsafe/internal/airquality"
	"github.com/trailsafe/trailsafe/internal/provider/resilience"
)

// ProviderName identifies this air quality provider.
const ProviderName = "airnow"

// DefaultBaseURL is the AirNow observation API base URL.
const DefaultBaseURL = "https://www.airnowapi.org/aq/observation/latLong/current"

// ClientConfig holds configuration for the AirNow client.
type ClientConfig struct {
	// APIKey is the AirNow API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an AirNow API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new AirNow client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.FeedClientConfig(ProviderName))
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// FetchCurrentAQI fetches the current observations near the point and keeps
// the worst pollutant's AQI.
func (c *Client) FetchCurrentAQI(ctx context.Context, lat, lon float64) (*airquality.Summary, error) {
	url := fmt.Sprintf("%s?format=application/json&latitude=%.4f&longitude=%.4f&distance=50&API_KEY=%s",
		c.baseURL, lat, lon, c.apiKey)

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

	var observations []observation
	if err := json.NewDecoder(resp.Body).Decode(&observations); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(observations) == 0 {
		return &airquality.Summary{Status: airquality.StatusNoData}, nil
	}

	worst := observations[0]
	for _, o := range observations[1:] {
		if o.AQI > worst.AQI {
			worst = o
		}
	}

	summary := &airquality.Summary{
		Status:    airquality.StatusOK,
		AQI:       worst.AQI,
		Category:  worst.Category.Name,
		Pollutant: worst.Parameter,
	}
	// DateObserved arrives with stray whitespace.
	day := strings.TrimSpace(worst.DateObserved)
	if t, err := time.Parse("2006-01-02 15", fmt.Sprintf("%s %d", day, worst.HourObserved)); err == nil {
		summary.ObservedAt = t
	}
	return summary, nil
}

// AirNow API response structures.

type observation struct {
	DateObserved string `json:"DateObserved"`
	HourObserved int    `json:"HourObserved"`
	Parameter    string `json:"ParameterName"`
	AQI          int    `json:"AQI"`
	Category     struct {
		Number int    `json:"Number"`
		Name   string `json:"Name"`
	} `json:"Category"`
}
