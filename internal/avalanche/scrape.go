package avalanche

import (
	"encoding/json"
	"regexp"
	"strings"
)

// HTML-scrape fallbacks for centers whose detail endpoints return nothing
// usable. Ordered from most to least structured: an embedded JSON key, a
// known CSS-class text block, a generic long quoted string, and for one
// center a second-pass parse of the page's hydration payload. All of it is
// best-effort; a redesigned page simply yields no candidate.

var (
	// bottomLineKeyRe matches a JSON-embedded bottom-line value anywhere in
	// the page source.
	bottomLineKeyRe = regexp.MustCompile(`"bottom_line"\s*:\s*"((?:[^"\\]|\\.){40,})"`)

	// bottomLineBlockRe matches the known forecast-page markup block.
	bottomLineBlockRe = regexp.MustCompile(`(?is)<div[^>]*class="[^"]*(?:nac-html-p|bottom-line|forecast-summary)[^"]*"[^>]*>(.*?)</div>`)

	// longQuotedRe is the last-resort generic heuristic: any long quoted
	// string in the page source.
	longQuotedRe = regexp.MustCompile(`"((?:[^"\\]|\\.){120,})"`)

	// hydrationRe extracts the embedded hydration payload emitted by one
	// center's site framework.
	hydrationRe = regexp.MustCompile(`(?s)<script[^>]*id="__NEXT_DATA__"[^>]*>(.*?)</script>`)

	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// hydrationCenterID is the one center whose forecast page embeds its bulletin
// in a hydration payload rather than in the rendered markup.
const hydrationCenterID = "SAC"

// hazardKeywords gate scraped candidates: text without any of these is page
// chrome, not bulletin prose.
var hazardKeywords = []string{
	"avalanche", "danger", "snowpack", "snow", "slab", "cornice",
	"wind-loaded", "terrain", "slope", "persistent weak",
}

// scrapeLengthPenaltyThreshold is the length above which a candidate's
// effective length stops growing; whole-page matches should not outrank a
// real bottom line.
const scrapeLengthPenaltyThreshold = 1500

// scrapeBottomLine runs the fallback chain over the forecast page HTML and
// returns the best candidate, or "" when nothing hazard-relevant was found.
func scrapeBottomLine(page []byte, centerID string) string {
	html := string(page)
	var candidates []string

	if m := bottomLineKeyRe.FindStringSubmatch(html); m != nil {
		candidates = append(candidates, unescapeJSONString(m[1]))
	}

	for _, m := range bottomLineBlockRe.FindAllStringSubmatch(html, 4) {
		candidates = append(candidates, m[1])
	}

	if m := longQuotedRe.FindStringSubmatch(html); m != nil {
		candidates = append(candidates, unescapeJSONString(m[1]))
	}

	if strings.EqualFold(centerID, hydrationCenterID) {
		if text := scrapeHydrationPayload(html); text != "" {
			candidates = append(candidates, text)
		}
	}

	best := ""
	bestScore := 0
	for _, c := range candidates {
		cleaned := cleanScrapedText(c)
		if !hazardRelevantText(cleaned) {
			continue
		}
		score := len(cleaned)
		if score > scrapeLengthPenaltyThreshold {
			score = scrapeLengthPenaltyThreshold
		}
		if score > bestScore {
			best = cleaned
			bestScore = score
		}
	}
	return best
}

// scrapeHydrationPayload digs the bottom line out of an embedded hydration
// document. The payload nests page props arbitrarily deep, so the search
// walks the decoded tree for a bottom_line key instead of assuming a path.
func scrapeHydrationPayload(html string) string {
	m := hydrationRe.FindStringSubmatch(html)
	if m == nil {
		return ""
	}

	var doc any
	if err := json.Unmarshal([]byte(m[1]), &doc); err != nil {
		return ""
	}
	return findStringKey(doc, "bottom_line", 0)
}

// findStringKey walks decoded JSON for the first string value under the
// given key. Depth is bounded to keep pathological payloads cheap.
func findStringKey(node any, key string, depth int) string {
	if depth > 12 {
		return ""
	}
	switch v := node.(type) {
	case map[string]any:
		if s, ok := v[key].(string); ok && s != "" {
			return s
		}
		for _, child := range v {
			if s := findStringKey(child, key, depth+1); s != "" {
				return s
			}
		}
	case []any:
		for _, child := range v {
			if s := findStringKey(child, key, depth+1); s != "" {
				return s
			}
		}
	}
	return ""
}

// cleanScrapedText strips markup and entities and collapses whitespace.
func cleanScrapedText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
		"&rsquo;", "'",
		"&ndash;", "-",
		"&mdash;", "-",
	).Replace(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// hazardRelevantText reports whether the text reads like bulletin prose.
func hazardRelevantText(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range hazardKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// unescapeJSONString resolves backslash escapes in a raw regex-captured JSON
// string value.
func unescapeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}
