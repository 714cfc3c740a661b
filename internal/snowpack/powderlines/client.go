// Package powderlines provides the SNOTEL station client backed by the
// Powderlines API mirror.
package powderlines

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailsafe/trailsafe/internal/provider/resilience"
	"github.com/trailsafe/trailsafe/internal/snowpack"
	"github.com/trailsafe/trailsafe/pkg/geo"
)

// ProviderName identifies this snowpack provider.
const ProviderName = "powderlines"

// DefaultBaseURL is the Powderlines API base URL.
const DefaultBaseURL = "https://powderlines.kellysoftware.org/api"

// maxStationDistanceKm bounds how far a station can be and still describe
// the point's snowpack.
const maxStationDistanceKm = 60.0

// ClientConfig holds configuration for the Powderlines client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches the closest SNOTEL station observation.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Powderlines client.
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
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// FetchNearest fetches the closest station's latest observation.
func (c *Client) FetchNearest(ctx context.Context, lat, lon float64) (*snowpack.Observation, error) {
	url := fmt.Sprintf("%s/closest_stations?lat=%.4f&lng=%.4f&data=true&days=1&count=1", c.baseURL, lat, lon)

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

	var stations []stationResponse
	if err := json.NewDecoder(resp.Body).Decode(&stations); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(stations) == 0 {
		return &snowpack.Observation{Status: snowpack.StatusNoData}, nil
	}

	st := stations[0]
	dist := geo.HaversineKm(
		geo.Point{Lat: lat, Lon: lon},
		geo.Point{Lat: st.Info.Location.Lat, Lon: st.Info.Location.Lng},
	)
	if dist > maxStationDistanceKm {
		return &snowpack.Observation{Status: snowpack.StatusNoData}, nil
	}

	obs := &snowpack.Observation{
		Status:      snowpack.StatusOK,
		StationName: st.Info.Name,
		StationID:   st.Info.Triplet,
		ElevationFt: st.Info.Elevation,
		DistanceKm:  dist,
	}

	if len(st.Data) == 0 {
		obs.Status = snowpack.StatusNoData
		return obs, nil
	}
	latest := st.Data[len(st.Data)-1]
	obs.DepthIn = parseInches(latest.SnowDepth)
	obs.SWEIn = parseInches(latest.SnowWaterEquivalent)
	if t, err := time.Parse("2006-01-02", latest.Date); err == nil {
		obs.ObservedAt = t
	}
	return obs, nil
}

// parseInches handles numeric strings and missing-value markers.
func parseInches(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// Powderlines API response structures.

type stationResponse struct {
	Info struct {
		Name      string  `json:"name"`
		Triplet   string  `json:"triplet"`
		Elevation float64 `json:"elevation"`
		Location  struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"station_information"`
	Data []struct {
		Date                string `json:"Date"`
		SnowDepth           string `json:"Snow Depth (in)"`
		SnowWaterEquivalent string `json:"Snow Water Equivalent (in)"`
	} `json:"data"`
}
