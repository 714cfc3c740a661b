package scoring

import (
	"fmt"

	"github.com/trailsafe/trailsafe/internal/avalanche"
)

// dangerImpacts maps a rated danger level to its deduction. Level 5 lands on
// the group cap by itself.
var dangerImpacts = [6]float64{0, 10, 24, 38, 52, 55}

const (
	// unknownCoverageImpact applies when hazard is relevant but no rated
	// bulletin exists to grade it.
	unknownCoverageImpact = 14

	// expiredCoverageImpact applies when the bulletin lapsed before the
	// selected start; stale context, graded between unknown and rated.
	expiredCoverageImpact = 18

	// problemImpact is the per-problem increment for rated bulletins.
	problemImpact = 3
	maxProblems   = 4
)

// scoreAvalanche applies the avalanche rule family: rated danger level,
// unknown-coverage uncertainty, and problem count.
func (e *Engine) scoreAvalanche(c *collector, in *Input) {
	b := in.Avalanche
	if b == nil || !b.Relevant {
		if b != nil && b.RelevanceReason != "" {
			c.explain("avalanche hazard not evaluated: %s", b.RelevanceReason)
		}
		return
	}

	switch {
	case b.Coverage == avalanche.CoverageExpired:
		c.add(HazardFactor{
			Hazard:  "Avalanche",
			Impact:  expiredCoverageImpact,
			Message: "bulletin expired before the selected start; last rating shown as stale context",
			Source:  "avalanche.org",
			Group:   GroupAvalanche,
		})
		return

	case b.DangerUnknown:
		c.add(HazardFactor{
			Hazard:  "Avalanche",
			Impact:  unknownCoverageImpact,
			Message: "avalanche hazard is relevant here but no current rating is available",
			Source:  "avalanche.org",
			Group:   GroupAvalanche,
		})
		return
	}

	level := b.Danger.Overall()
	c.add(HazardFactor{
		Hazard:  "Avalanche",
		Impact:  dangerImpacts[level],
		Message: fmt.Sprintf("%s reports %s (%d/5) danger", b.CenterName, b.DangerLabel, int(level)),
		Source:  "avalanche.org",
		Group:   GroupAvalanche,
	})

	if n := len(b.Problems); n > 0 {
		capped := n
		if capped > maxProblems {
			capped = maxProblems
		}
		c.add(HazardFactor{
			Hazard:  "Avalanche Problems",
			Impact:  float64(capped * problemImpact),
			Message: fmt.Sprintf("%d active avalanche problem(s) listed", n),
			Source:  "avalanche.org",
			Group:   GroupAvalanche,
		})
	}
}
