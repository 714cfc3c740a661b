package avalanche

import (
	"encoding/json"
	"strings"
	"time"
)

// detailPayload is the shape of one avalanche-detail JSON document. Upstream
// responses vary by center, so every field is optional; payloadScore decides
// which recovered document is trusted instead of speculative field access.
type detailPayload struct {
	ID               int    `json:"id"`
	CenterID         string `json:"center_id"`
	Author           string `json:"author"`
	BottomLine       string `json:"bottom_line"`
	HazardDiscussion string `json:"hazard_discussion"`
	PublishedTime    string `json:"published_time"`
	ExpiresTime      string `json:"expires_time"`

	ForecastZone []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"forecast_zone"`

	Danger []struct {
		ValidDay string `json:"valid_day"`
		Upper    int    `json:"upper"`
		Middle   int    `json:"middle"`
		Lower    int    `json:"lower"`
	} `json:"danger"`

	ForecastAvalancheProblems []struct {
		Name       string   `json:"name"`
		Likelihood string   `json:"likelihood"`
		Size       []string `json:"size"`
		Discussion string   `json:"discussion"`
	} `json:"forecast_avalanche_problems"`

	// raw length of the source document, set by extractPayloads for the
	// oversize penalty.
	rawLen int
}

// extractPayloads scans a response body for balanced top-level JSON objects
// and unmarshals each one that parses. Detail endpoints are known to return
// concatenated JSON documents and sometimes trailing HTML; both are handled
// by scanning for object boundaries instead of decoding the body whole.
func extractPayloads(body []byte) []detailPayload {
	var payloads []detailPayload

	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, c := range body {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue // stray brace in trailing HTML
			}
			depth--
			if depth == 0 && start >= 0 {
				doc := body[start : i+1]
				var p detailPayload
				if err := json.Unmarshal(doc, &p); err == nil {
					p.rawLen = len(doc)
					payloads = append(payloads, p)
				}
				start = -1
			}
		}
	}

	return payloads
}

// Payload scoring weights. A candidate must match the requested zone or
// center to outrank an empty fallback, and oversized documents (embedded
// site state, not a bulletin) are penalized.
const (
	scoreZoneMatch       = 40
	scoreCenterMatch     = 20
	scoreHasProblems     = 15
	scoreHasBottomLine   = 15
	scoreOversizePenalty = 25
	oversizePayloadBytes = 200_000

	// bottom-line fields shorter than this are likely placeholder text.
	minBottomLineLen = 20
	maxBottomLineLen = 20_000
)

// payloadScore ranks one recovered document for the requested center/zone.
func payloadScore(p detailPayload, centerID string, zoneID int) int {
	score := 0
	for _, z := range p.ForecastZone {
		if z.ID == zoneID {
			score += scoreZoneMatch
			break
		}
	}
	if centerID != "" && strings.EqualFold(p.CenterID, centerID) {
		score += scoreCenterMatch
	}
	if len(p.ForecastAvalancheProblems) > 0 {
		score += scoreHasProblems
	}
	if n := len(p.BottomLine); n >= minBottomLineLen && n <= maxBottomLineLen {
		score += scoreHasBottomLine
	}
	if p.rawLen > oversizePayloadBytes {
		score -= scoreOversizePenalty
	}
	return score
}

// bestPayload extracts every document from the body and returns the highest
// scoring one. ok is false when nothing usable was recovered.
func bestPayload(body []byte, centerID string, zoneID int) (detailPayload, bool) {
	payloads := extractPayloads(body)
	if len(payloads) == 0 {
		return detailPayload{}, false
	}

	best := payloads[0]
	bestScore := payloadScore(best, centerID, zoneID)
	for _, p := range payloads[1:] {
		if s := payloadScore(p, centerID, zoneID); s > bestScore {
			best = p
			bestScore = s
		}
	}
	return best, true
}

// payloadTimeFormats are the timestamp layouts seen across center endpoints.
var payloadTimeFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parsePayloadTime parses an upstream timestamp, returning the zero time for
// anything unrecognized.
func parsePayloadTime(s string) time.Time {
	for _, layout := range payloadTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// toBulletinFields copies the payload's usable fields onto the bulletin,
// leaving existing values in place when the payload has nothing better.
func (p detailPayload) toBulletinFields(b *Bulletin) {
	if p.BottomLine != "" {
		b.BottomLine = cleanScrapedText(p.BottomLine)
	} else if p.HazardDiscussion != "" && b.BottomLine == "" {
		b.BottomLine = cleanScrapedText(p.HazardDiscussion)
	}

	for _, d := range p.Danger {
		// Prefer the current-day rating; fall back to the first entry.
		if d.ValidDay == "current" || (b.Danger == ElevationDanger{}) {
			b.Danger = ElevationDanger{
				Above: clampDanger(d.Upper),
				At:    clampDanger(d.Middle),
				Below: clampDanger(d.Lower),
			}
		}
	}

	if len(p.ForecastAvalancheProblems) > 0 {
		problems := make([]Problem, 0, len(p.ForecastAvalancheProblems))
		for _, prob := range p.ForecastAvalancheProblems {
			problems = append(problems, Problem{
				Name:       prob.Name,
				Likelihood: prob.Likelihood,
				Size:       strings.Join(prob.Size, "-"),
				Discussion: cleanScrapedText(prob.Discussion),
			})
		}
		b.Problems = problems
	}

	if t := parsePayloadTime(p.PublishedTime); !t.IsZero() {
		b.PublishedAt = t
	}
	if t := parsePayloadTime(p.ExpiresTime); !t.IsZero() {
		b.ExpiresAt = t
	}
}
