package fatigue

import (
	"fmt"

	"github.com/baseball-sim/sim-engine/models"
)

// Pull thresholds
const (
	HardBattersFacedLimit  = 110
	ExhaustedStamina       = 15.0
	HighLeveragePullChance = 0.75
	RoughOutingRuns        = 5
	RoughOutingPullChance  = 0.60
	WorkloadPullChance     = 0.30

	DefaultStarterBattersFaced  = 24
	DefaultRelieverBattersFaced = 5
)

// Decision is the outcome of a pull check. Reason names the rule that fired.
type Decision struct {
	ShouldChange bool   `json:"should_change"`
	Reason       string `json:"reason,omitempty"`
}

func keep() Decision {
	return Decision{}
}

func pull(reason string) Decision {
	return Decision{ShouldChange: true, Reason: reason}
}

// ShouldPullPitcher decides whether to change pitchers before the next
// plate appearance. Only the hard limit is deterministic; the other rules
// draw from rng, so repeated calls on the same state may disagree.
func ShouldPullPitcher(gs models.GameSituation, pitcher models.PitcherRole, bullpen *models.BullpenState, rng RandomSource) Decision {
	if pitcher.BattersFaced >= HardBattersFacedLimit {
		return pull(fmt.Sprintf("hard limit: %d batters faced (max %d)", pitcher.BattersFaced, HardBattersFacedLimit))
	}

	if bullpen == nil || len(bullpen.Available()) == 0 {
		return keep()
	}

	if pitcher.Stamina <= ExhaustedStamina {
		return pull(fmt.Sprintf("exhausted: stamina %.1f", pitcher.Stamina))
	}

	if pitcher.IsRelief() && gs.BasesLoaded() && abs(gs.ScoreDiff()) <= 2 {
		if rng.Float64() < HighLeveragePullChance {
			return pull("high leverage: bases loaded in a close game")
		}
	}

	if pitcher.RunsAllowed >= RoughOutingRuns {
		if rng.Float64() < RoughOutingPullChance {
			return pull(fmt.Sprintf("rough outing: %d runs allowed", pitcher.RunsAllowed))
		}
	}

	threshold := WorkloadThreshold(pitcher)
	if float64(pitcher.BattersFaced) >= threshold {
		if rng.Float64() < WorkloadPullChance {
			return pull(fmt.Sprintf("workload: %d batters faced (avg %.0f)", pitcher.BattersFaced, threshold))
		}
	}

	return keep()
}

// WorkloadThreshold returns the average batters faced for the pitcher's
// role, falling back to league-typical values when unknown.
func WorkloadThreshold(p models.PitcherRole) float64 {
	if p.IsRelief() {
		if p.AvgBattersFacedAsReliever > 0 {
			return p.AvgBattersFacedAsReliever
		}
		return DefaultRelieverBattersFaced
	}
	if p.AvgBattersFacedAsStarter > 0 {
		return p.AvgBattersFacedAsStarter
	}
	return DefaultStarterBattersFaced
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
