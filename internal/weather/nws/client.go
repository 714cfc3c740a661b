// Package nws provides the National Weather Service hourly forecast client,
// the primary weather provider.
package nws

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
	"github.com/trailsafe/trailsafe/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "nws"

	// DefaultBaseURL is the NWS API base URL.
	DefaultBaseURL = "https://api.weather.gov"
)

// ClientConfig holds configuration for the NWS client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to api.weather.gov).
	BaseURL string

	// UserAgent identifies this service to NWS, which requires one.
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a single-attempt resilient client.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an NWS API client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new NWS client.
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
		httpClient = resilience.NewClient(resilience.FeedClientConfig("nws"))
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetHourlyForecast fetches the hourly gridpoint forecast for a location.
// It resolves the forecast office and grid via /points, then fetches the
// hourly periods.
func (c *Client) GetHourlyForecast(ctx context.Context, lat, lon float64) (*weather.Snapshot, error) {
	point, err := c.getPoint(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("resolving gridpoint: %w", err)
	}

	var hourly hourlyResponse
	if err := c.getJSON(ctx, point.Properties.ForecastHourly, &hourly); err != nil {
		return nil, fmt.Errorf("fetching hourly forecast: %w", err)
	}
	if len(hourly.Properties.Periods) == 0 {
		return nil, weather.ErrNoDataForLocation
	}

	return c.toSnapshot(&hourly), nil
}

func (c *Client) getPoint(ctx context.Context, lat, lon float64) (*pointResponse, error) {
	url := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)
	var point pointResponse
	if err := c.getJSON(ctx, url, &point); err != nil {
		return nil, err
	}
	if point.Properties.ForecastHourly == "" {
		return nil, weather.ErrNoDataForLocation
	}
	return &point, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// toSnapshot converts the hourly response to the domain snapshot. The first
// period anchors the instantaneous fields; the full series becomes the trend.
func (c *Client) toSnapshot(resp *hourlyResponse) *weather.Snapshot {
	periods := resp.Properties.Periods
	first := periods[0]

	snap := &weather.Snapshot{
		Condition: first.ShortForecast,
		FetchedAt: time.Now(),
		Sources:   map[string]string{},
	}

	if t, err := time.Parse(time.RFC3339, resp.Properties.GeneratedAt); err == nil {
		snap.IssuedAt = t
	}
	if resp.Properties.Elevation.Value > 0 {
		ft := resp.Properties.Elevation.Value * 3.28084
		snap.ElevationFt = &ft
	}

	temp := float64(first.Temperature)
	snap.TemperatureF = &temp

	if v := first.WindChill.Value; v != nil {
		f := celsiusToF(*v)
		snap.FeelsLikeF = &f
	}
	if w, ok := parseWindMph(first.WindSpeed); ok {
		snap.WindMph = &w
	}
	if g := first.WindGust.Value; g != nil {
		mph := kmhToMph(*g)
		snap.GustMph = &mph
	}
	if p := first.ProbabilityOfPrecipitation.Value; p != nil {
		snap.PrecipChance = p
	}
	if h := first.RelativeHumidity.Value; h != nil {
		snap.Humidity = h
	}
	day := first.IsDaytime
	snap.IsDaytime = &day

	for _, p := range periods {
		snap.Trend = append(snap.Trend, toTrendHour(p))
	}

	snap.AttributeAll(ProviderName)
	return snap
}

func toTrendHour(p period) weather.TrendHour {
	h := weather.TrendHour{Condition: p.ShortForecast}
	if t, err := time.Parse(time.RFC3339, p.StartTime); err == nil {
		h.Time = t
	}
	temp := float64(p.Temperature)
	h.TemperatureF = &temp
	if w, ok := parseWindMph(p.WindSpeed); ok {
		h.WindMph = &w
	}
	if g := p.WindGust.Value; g != nil {
		mph := kmhToMph(*g)
		h.GustMph = &mph
	}
	if pp := p.ProbabilityOfPrecipitation.Value; pp != nil {
		h.PrecipChance = pp
	}
	if s := p.SnowfallAmount.Value; s != nil {
		in := *s / 25.4 // mm to inches
		h.SnowInches = &in
	}
	day := p.IsDaytime
	h.IsDaytime = &day
	return h
}

// parseWindMph parses NWS wind strings like "10 mph" or "10 to 20 mph",
// keeping the upper bound of a range.
func parseWindMph(s string) (float64, bool) {
	fields := strings.Fields(strings.TrimSuffix(strings.TrimSpace(s), "mph"))
	best := 0.0
	found := false
	for _, f := range fields {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			if v > best {
				best = v
			}
			found = true
		}
	}
	return best, found
}

func celsiusToF(c float64) float64 { return c*9/5 + 32 }
func kmhToMph(kmh float64) float64 { return kmh * 0.621371 }

// NWS API response structures.

type pointResponse struct {
	Properties struct {
		ForecastHourly string `json:"forecastHourly"`
		GridID         string `json:"gridId"`
	} `json:"properties"`
}

type unitValue struct {
	UnitCode string   `json:"unitCode"`
	Value    *float64 `json:"value"`
}

type period struct {
	Number                     int       `json:"number"`
	StartTime                  string    `json:"startTime"`
	IsDaytime                  bool      `json:"isDaytime"`
	Temperature                int       `json:"temperature"`
	TemperatureUnit            string    `json:"temperatureUnit"`
	WindSpeed                  string    `json:"windSpeed"`
	WindGust                   unitValue `json:"windGust"`
	WindChill                  unitValue `json:"windChill"`
	ProbabilityOfPrecipitation unitValue `json:"probabilityOfPrecipitation"`
	RelativeHumidity           unitValue `json:"relativeHumidity"`
	SnowfallAmount             unitValue `json:"snowfallAmount"`
	ShortForecast              string    `json:"shortForecast"`
}

type hourlyResponse struct {
	Properties struct {
		GeneratedAt string `json:"generatedAt"`
		Elevation   struct {
			UnitCode string  `json:"unitCode"`
			Value    float64 `json:"value"`
		} `json:"elevation"`
		Periods []period `json:"periods"`
	} `json:"properties"`
}
