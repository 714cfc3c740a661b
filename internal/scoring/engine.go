package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailsafe/trailsafe/internal/alerts"
	"github.com/trailsafe/trailsafe/internal/rainfall"
)

// Engine computes safety scores. It is stateless and safe for concurrent
// use.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine creates a scoring engine.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger}
}

// collector gates factors and threads the two accumulators. Score and
// confidence are deliberately independent: a rule may dent one without
// touching the other.
type collector struct {
	factors      []HazardFactor
	explanations []string
}

// add is the single gate every rule goes through; non-positive impacts are
// discarded.
func (c *collector) add(f HazardFactor) {
	if f.Impact <= 0 {
		return
	}
	c.factors = append(c.factors, f)
	c.explain("%s: -%.0f (%s)", f.Hazard, f.Impact, f.Message)
}

func (c *collector) explain(format string, args ...any) {
	c.explanations = append(c.explanations, fmt.Sprintf(format, args...))
}

// Score runs every rule family over the inputs and assembles the result.
// It never fails: missing feeds skip their rules and dent confidence
// instead.
func (e *Engine) Score(in Input) SafetyScoreResult {
	if in.Now.IsZero() {
		in.Now = time.Now().UTC()
	}

	c := &collector{}
	e.scoreAvalanche(c, &in)
	e.scoreWeather(c, &in)
	e.scoreAlerts(c, &in)
	e.scoreAirQuality(c, &in)
	e.scoreFire(c, &in)

	groupImpacts := capGroups(c.factors)
	total := 0.0
	for _, impact := range groupImpacts {
		total += impact
	}
	score := 100 - int(total+0.5)
	if score < 0 {
		score = 0
	}

	sort.SliceStable(c.factors, func(i, j int) bool {
		return c.factors[i].Impact > c.factors[j].Impact
	})

	primary := "None"
	if len(c.factors) > 0 {
		primary = c.factors[0].Hazard
	}

	confidence := e.confidence(c, &in)

	result := SafetyScoreResult{
		Score:         score,
		Confidence:    confidence,
		PrimaryHazard: primary,
		Factors:       c.factors,
		GroupImpacts:  groupImpacts,
		Explanations:  c.explanations,
		SourcesUsed:   sourcesUsed(&in),
	}

	e.logger.Debug().
		Int("score", score).
		Int("confidence", confidence).
		Str("primary_hazard", primary).
		Int("factors", len(c.factors)).
		Msg("computed safety score")

	return result
}

// capGroups sums raw factor impacts per group and applies each group's cap.
func capGroups(factors []HazardFactor) map[Group]float64 {
	raw := make(map[Group]float64)
	for _, f := range factors {
		raw[f.Group] += f.Impact
	}
	for group, impact := range raw {
		if cap, ok := groupCaps[group]; ok && impact > cap {
			raw[group] = cap
		}
	}
	return raw
}

// sourcesUsed lists only the feeds that actually informed the result for
// the selected date.
func sourcesUsed(in *Input) []string {
	var sources []string
	if in.Weather.Available() {
		seen := make(map[string]bool)
		for _, provider := range in.Weather.Sources {
			if !seen[provider] {
				seen[provider] = true
				sources = append(sources, provider)
			}
		}
		sort.Strings(sources)
	}
	if in.Avalanche != nil && in.Avalanche.CenterID != "" {
		sources = append(sources, "avalanche.org")
	}
	if in.Alerts != nil && in.Alerts.Status != alerts.StatusUnavailable {
		sources = append(sources, "nws-alerts")
	}
	if in.AirQuality.Applicable() {
		sources = append(sources, "airnow")
	}
	if in.Rainfall != nil && in.Rainfall.Status == rainfall.StatusOK {
		sources = append(sources, "open-meteo-archive")
	}
	return sources
}
