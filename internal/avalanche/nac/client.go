// Package nac provides the avalanche.org public API client. It serves two
// roles: the background map-layer source for zone resolution, and the
// request-path detail/page fetcher for bulletin aggregation.
package nac

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/trailsafe/trailsafe/internal/geozone"
	"github.com/trailsafe/trailsafe/internal/provider/resilience"
)

const (
	// ProviderName identifies this feed.
	ProviderName = "avalanche-org"

	// DefaultBaseURL is the avalanche.org public API base URL.
	DefaultBaseURL = "https://api.avalanche.org/v2/public"

	// maxBodyBytes bounds how much of any upstream body we read. Forecast
	// pages from some centers run well past 1 MB of hydration payload.
	maxBodyBytes = 4 << 20
)

// ClientConfig holds configuration for the avalanche.org client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional).
	BaseURL string

	// UserAgent identifies this service to upstream centers.
	UserAgent string

	// DetailClient handles request-path detail and page fetches (optional).
	// If nil, uses a single-attempt resilient client.
	DetailClient *resilience.Client

	// LayerClient handles background map-layer refreshes (optional).
	// If nil, uses a retrying resilient client.
	LayerClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an avalanche.org API client.
type Client struct {
	baseURL      string
	userAgent    string
	detailClient *resilience.Client
	layerClient  *resilience.Client
	logger       zerolog.Logger
}

// NewClient creates a new avalanche.org client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "trailsafe (ops@trailsafe.dev)"
	}
	detailClient := cfg.DetailClient
	if detailClient == nil {
		detailClient = resilience.NewClient(resilience.FeedClientConfig("avalanche-org"))
	}
	layerClient := cfg.LayerClient
	if layerClient == nil {
		layerClient = resilience.NewClient(resilience.RefreshClientConfig("avalanche-org-layer"))
	}
	return &Client{
		baseURL:      baseURL,
		userAgent:    userAgent,
		detailClient: detailClient,
		layerClient:  layerClient,
		logger:       cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchMapLayer fetches the national zone map layer: one GeoJSON feature
// collection covering every participating center.
func (c *Client) FetchMapLayer(ctx context.Context) (*geozone.MapLayer, error) {
	url := c.baseURL + "/products/map-layer"
	body, err := c.get(ctx, c.layerClient, url, "application/json")
	if err != nil {
		return nil, fmt.Errorf("fetching map layer: %w", err)
	}

	var layer geozone.MapLayer
	if err := json.Unmarshal(body, &layer); err != nil {
		return nil, fmt.Errorf("decoding map layer: %w", err)
	}
	if len(layer.Features) == 0 {
		return nil, fmt.Errorf("map layer contained no zones")
	}

	c.logger.Debug().Int("zones", len(layer.Features)).Msg("fetched zone map layer")
	return &layer, nil
}

// FetchDetail fetches one detail endpoint and returns the raw body. Bodies
// are returned undecoded: some centers respond with concatenated JSON
// documents or JSON followed by HTML, which the aggregator untangles.
func (c *Client) FetchDetail(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, c.detailClient, url, "application/json")
}

// FetchPage fetches a public forecast page for scraping.
func (c *Client) FetchPage(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, c.detailClient, url, "text/html")
}

func (c *Client) get(ctx context.Context, client *resilience.Client, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
