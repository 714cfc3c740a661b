package avalanche

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailsafe/trailsafe/internal/fanout"
	"github.com/trailsafe/trailsafe/internal/geozone"
)

// Aggregator errors. These never escape Aggregate; they only settle races.
var (
	errNoUsablePayload = errors.New("no usable detail payload")
)

// DetailProvider fetches avalanche detail documents and forecast pages.
type DetailProvider interface {
	// FetchDetail fetches one candidate detail endpoint. The body may be
	// concatenated JSON documents with trailing HTML.
	FetchDetail(ctx context.Context, url string) ([]byte, error)

	// FetchPage fetches a public forecast page for scraping.
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// machineJSONCenterID is the one center that mirrors its bulletin as plain
// JSON at a path derivable from the zone link. Preferred over scraping.
const machineJSONCenterID = "CAIC"

// shortBottomLineLen per center: a bottom line shorter than this for that
// center means the detail race recovered a stub and scraping should run.
var shortBottomLineLen = map[string]int{
	"SAC":  120,
	"CAIC": 80,
}

const defaultShortBottomLineLen = 40

// AggregatorConfig holds configuration for the detail aggregator.
type AggregatorConfig struct {
	// Provider fetches detail endpoints and forecast pages.
	Provider DetailProvider

	// Logger for aggregation steps.
	Logger zerolog.Logger

	// DetailBaseURL is the root of the detail API (default: avalanche.org
	// public product API).
	DetailBaseURL string
}

// Aggregator reconciles avalanche bulletin detail for a matched zone by
// racing candidate endpoints and falling back to page scraping.
type Aggregator struct {
	provider DetailProvider
	logger   zerolog.Logger
	baseURL  string
}

// NewAggregator creates a new detail aggregator.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	baseURL := cfg.DetailBaseURL
	if baseURL == "" {
		baseURL = "https://api.avalanche.org/v2/public"
	}
	return &Aggregator{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// Aggregate builds the bulletin for a zone match. It never returns an error:
// every fetch failure degrades to whatever summary the map layer already
// provided. now is the evaluation clock; start is the selected trip start.
func (a *Aggregator) Aggregate(ctx context.Context, match geozone.Match, now, start time.Time) *Bulletin {
	if match.Zone == nil {
		b := &Bulletin{Coverage: CoverageNoCenter}
		b.finalize()
		return b
	}

	b := a.seedFromLayer(match.Zone)

	if payload, ok := a.raceDetail(ctx, match.Zone); ok {
		payload.toBulletinFields(b)
	}

	if a.needsScrape(b) {
		a.scrapeFallback(ctx, b)
	}

	if b.Danger.Rated() || b.ratedSummaryWord() {
		b.Coverage = CoverageReported
	} else {
		b.Coverage = CoverageNoActiveForecast
	}

	b.applyStaleness(now, start)
	b.finalize()

	a.logger.Debug().
		Str("center_id", b.CenterID).
		Str("zone", b.ZoneName).
		Str("coverage", string(b.Coverage)).
		Int("danger", int(b.Danger.Overall())).
		Int("problems", len(b.Problems)).
		Bool("danger_unknown", b.DangerUnknown).
		Msg("avalanche detail aggregated")

	return b
}

// seedFromLayer builds the degradation baseline from the map-layer summary.
func (a *Aggregator) seedFromLayer(z *geozone.Zone) *Bulletin {
	b := &Bulletin{
		CenterID:     z.Properties.CenterID,
		CenterName:   z.Properties.Center,
		ZoneID:       z.ID,
		ZoneName:     z.Properties.Name,
		TravelAdvice: z.Properties.TravelAdvice,
		Link:         z.Properties.Link,
	}

	if lvl := clampDanger(z.Properties.DangerLevel); lvl.Rated() {
		b.Danger = ElevationDanger{Above: lvl, At: lvl, Below: lvl}
	}
	if t := parsePayloadTime(z.Properties.EndDate); !t.IsZero() {
		b.ExpiresAt = t
	}
	if t := parsePayloadTime(z.Properties.StartDate); !t.IsZero() {
		b.PublishedAt = t
	}

	b.summaryDanger = z.Properties.Danger
	return b
}

// raceDetail fetches up to three candidate detail URLs concurrently and
// keeps the highest-scoring recovered payload. Individual failures are
// ignored; the race only fails when nothing usable came back at all.
func (a *Aggregator) raceDetail(ctx context.Context, z *geozone.Zone) (detailPayload, bool) {
	centerID := z.Properties.CenterID
	zoneID := z.ID

	urls := []string{
		fmt.Sprintf("%s/product?type=forecast&center_id=%s&zone_id=%d", a.baseURL, centerID, zoneID),
		fmt.Sprintf("%s/product?type=forecast&zone_id=%d", a.baseURL, zoneID),
	}
	if slug := zoneSlug(z.Properties.Name); slug != "" {
		urls = append(urls, fmt.Sprintf("%s/product/%s/%s", a.baseURL, strings.ToLower(centerID), slug))
	}

	tasks := make([]fanout.Task[detailPayload], 0, len(urls))
	for _, u := range urls {
		u := u
		tasks = append(tasks, func(ctx context.Context) (detailPayload, error) {
			body, err := a.provider.FetchDetail(ctx, u)
			if err != nil {
				return detailPayload{}, err
			}
			p, ok := bestPayload(body, centerID, zoneID)
			if !ok {
				return detailPayload{}, errNoUsablePayload
			}
			return p, nil
		})
	}

	return fanout.BestOf(ctx, tasks, func(p detailPayload) int {
		return payloadScore(p, centerID, zoneID)
	})
}

// needsScrape reports whether the race result is thin enough to warrant the
// scrape fallback.
func (a *Aggregator) needsScrape(b *Bulletin) bool {
	if b.Link == "" {
		return false
	}
	if b.BottomLine == "" || len(b.Problems) == 0 {
		return true
	}
	min, ok := shortBottomLineLen[b.CenterID]
	if !ok {
		min = defaultShortBottomLineLen
	}
	return len(b.BottomLine) < min
}

// scrapeFallback fills the bottom line from the public forecast page. One
// center mirrors its bulletin as plain JSON at a derivable path, which is
// preferred over parsing HTML.
func (a *Aggregator) scrapeFallback(ctx context.Context, b *Bulletin) {
	if b.CenterID == machineJSONCenterID {
		if u := machineJSONURL(b.Link); u != "" {
			if body, err := a.provider.FetchDetail(ctx, u); err == nil {
				if p, ok := bestPayload(body, b.CenterID, b.ZoneID); ok {
					p.toBulletinFields(b)
					if b.BottomLine != "" {
						return
					}
				}
			}
		}
	}

	page, err := a.provider.FetchPage(ctx, b.Link)
	if err != nil {
		a.logger.Debug().Err(err).Str("link", b.Link).Msg("forecast page fetch failed")
		return
	}

	if text := scrapeBottomLine(page, b.CenterID); text != "" && len(text) > len(b.BottomLine) {
		b.BottomLine = text
	}
}

// machineJSONURL derives the JSON mirror path from a forecast page link.
func machineJSONURL(link string) string {
	if link == "" {
		return ""
	}
	return strings.TrimRight(link, "/") + ".json"
}

// zoneSlug turns a zone display name into a URL slug.
func zoneSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
