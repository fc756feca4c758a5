package models

import "math"

// Outcome is the result category of a single plate appearance
type Outcome string

const (
	Single              Outcome = "single"
	Double              Outcome = "double"
	Triple              Outcome = "triple"
	HomeRun             Outcome = "home_run"
	Walk                Outcome = "walk"
	IntentionalWalk     Outcome = "intentional_walk"
	HitByPitch          Outcome = "hit_by_pitch"
	Strikeout           Outcome = "strikeout"
	GroundOut           Outcome = "ground_out"
	FlyOut              Outcome = "fly_out"
	LineOut             Outcome = "line_out"
	PopOut              Outcome = "pop_out"
	SacrificeFly        Outcome = "sacrifice_fly"
	SacrificeBunt       Outcome = "sacrifice_bunt"
	FieldersChoice      Outcome = "fielders_choice"
	ReachedOnError      Outcome = "reached_on_error"
	CatcherInterference Outcome = "catcher_interference"
)

// AllOutcomes lists every outcome in the fixed order used for sampling
// and for iterating rate vectors.
var AllOutcomes = [...]Outcome{
	Single,
	Double,
	Triple,
	HomeRun,
	Walk,
	IntentionalWalk,
	HitByPitch,
	Strikeout,
	GroundOut,
	FlyOut,
	LineOut,
	PopOut,
	SacrificeFly,
	SacrificeBunt,
	FieldersChoice,
	ReachedOnError,
	CatcherInterference,
}

// Valid reports whether o is one of the known outcomes
func (o Outcome) Valid() bool {
	for _, known := range AllOutcomes {
		if o == known {
			return true
		}
	}
	return false
}

// IsHit reports whether the outcome counts as a base hit
func (o Outcome) IsHit() bool {
	switch o {
	case Single, Double, Triple, HomeRun:
		return true
	}
	return false
}

// IsWalk reports whether the batter was awarded first on balls
func (o Outcome) IsWalk() bool {
	return o == Walk || o == IntentionalWalk
}

// IsAtBat reports whether the plate appearance counts as an official at-bat.
// Walks, hit batters, sacrifices and catcher's interference do not.
func (o Outcome) IsAtBat() bool {
	switch o {
	case Walk, IntentionalWalk, HitByPitch, SacrificeFly, SacrificeBunt, CatcherInterference:
		return false
	}
	return true
}

// BasesAwarded returns the number of bases a hit is worth (0 for non-hits)
func (o Outcome) BasesAwarded() int {
	switch o {
	case Single:
		return 1
	case Double:
		return 2
	case Triple:
		return 3
	case HomeRun:
		return 4
	}
	return 0
}

// RateTolerance is the allowed deviation from 1.0 for raw rate vectors
const RateTolerance = 0.01

// DistributionTolerance is the allowed deviation from 1.0 for a normalized distribution
const DistributionTolerance = 0.001

// EventRates maps each outcome to an empirical per-plate-appearance rate.
// Missing keys are treated as zero.
type EventRates map[Outcome]float64

// Sum returns the total of all known outcome rates
func (r EventRates) Sum() float64 {
	total := 0.0
	for _, o := range AllOutcomes {
		total += r[o]
	}
	return total
}

// Clone returns an independent copy of the rates
func (r EventRates) Clone() EventRates {
	out := make(EventRates, len(AllOutcomes))
	for _, o := range AllOutcomes {
		out[o] = r[o]
	}
	return out
}

// SumsToOne reports whether the rates sum to 1 within RateTolerance
func (r EventRates) SumsToOne() bool {
	return math.Abs(r.Sum()-1.0) <= RateTolerance
}

// Distribution is a normalized outcome probability vector. Values produced
// by the matchup model sum to 1 within DistributionTolerance.
type Distribution map[Outcome]float64

// Sum returns the total probability mass
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, o := range AllOutcomes {
		total += d[o]
	}
	return total
}

// Rates converts the distribution back to plain event rates
func (d Distribution) Rates() EventRates {
	out := make(EventRates, len(AllOutcomes))
	for _, o := range AllOutcomes {
		out[o] = d[o]
	}
	return out
}
