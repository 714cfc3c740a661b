// Package nws provides the NWS active-alerts client.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailsafe/trailsafe/internal/alerts"
	"github.com/trailsafe/trailsafe/internal/provider/resilience"
)

// ProviderName identifies this alerts provider.
const ProviderName = "nws-alerts"

// DefaultBaseURL is the NWS API base URL.
const DefaultBaseURL = "https://api.weather.gov"

// ClientConfig holds configuration for the alerts client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional).
	BaseURL string

	// UserAgent identifies this service to NWS.
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches active NWS alerts for a point.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new alerts client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "trailsafe (ops@trailsafe.dev)"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.FeedClientConfig(ProviderName))
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// FetchActiveAlerts fetches active alerts covering the point.
func (c *Client) FetchActiveAlerts(ctx context.Context, lat, lon float64) ([]alerts.Alert, error) {
	url := fmt.Sprintf("%s/alerts/active?point=%.4f,%.4f", c.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var nwsResp activeAlertsResponse
	if err := json.NewDecoder(resp.Body).Decode(&nwsResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	out := make([]alerts.Alert, 0, len(nwsResp.Features))
	for _, f := range nwsResp.Features {
		out = append(out, toAlert(f))
	}
	return out, nil
}

func toAlert(f alertFeature) alerts.Alert {
	a := alerts.Alert{
		ID:          f.ID,
		Event:       f.Properties.Event,
		Severity:    alerts.Severity(f.Properties.Severity),
		Urgency:     f.Properties.Urgency,
		Headline:    f.Properties.Headline,
		Description: f.Properties.Description,
	}
	if t, err := time.Parse(time.RFC3339, f.Properties.Onset); err == nil {
		a.Onset = t
	}
	if t, err := time.Parse(time.RFC3339, f.Properties.Ends); err == nil {
		a.Ends = t
	}
	return a
}

// NWS API response structures.

type alertFeature struct {
	ID         string `json:"id"`
	Properties struct {
		Event       string `json:"event"`
		Severity    string `json:"severity"`
		Urgency     string `json:"urgency"`
		Headline    string `json:"headline"`
		Description string `json:"description"`
		Onset       string `json:"onset"`
		Ends        string `json:"ends"`
	} `json:"properties"`
}

type activeAlertsResponse struct {
	Features []alertFeature `json:"features"`
}
