package models

// ParkFactors represents how a ballpark shifts outcome rates.
// 100 = neutral, >100 = the outcome happens more often there.
// A zero field is treated as neutral.
type ParkFactors struct {
	HRFactor        float64 `json:"hr_factor" yaml:"hr_factor"`
	HitsFactor      float64 `json:"hits_factor" yaml:"hits_factor"`
	DoublesFactor   float64 `json:"doubles_factor" yaml:"doubles_factor"`
	TriplesFactor   float64 `json:"triples_factor" yaml:"triples_factor"`
	StrikeoutFactor float64 `json:"strikeout_factor" yaml:"strikeout_factor"`
	WalkFactor      float64 `json:"walk_factor" yaml:"walk_factor"`

	// Handedness-specific home run factors override HRFactor when set
	LHBHRFactor float64 `json:"lhb_hr_factor" yaml:"lhb_hr_factor"`
	RHBHRFactor float64 `json:"rhb_hr_factor" yaml:"rhb_hr_factor"`

	Altitude int `json:"altitude" yaml:"altitude"` // feet
}

// Multiplier returns the park's scaling for an outcome given the batter's
// effective hand. Outcomes the park does not affect return 1.0.
func (pf *ParkFactors) Multiplier(outcome Outcome, batterHand Hand) float64 {
	if pf == nil {
		return 1.0
	}

	switch outcome {
	case HomeRun:
		factor := pf.HRFactor
		if batterHand == Left && pf.LHBHRFactor > 0 {
			factor = pf.LHBHRFactor
		} else if batterHand == Right && pf.RHBHRFactor > 0 {
			factor = pf.RHBHRFactor
		}
		return scale(factor) * AltitudeEffect(pf.Altitude)
	case Single:
		return scale(pf.HitsFactor)
	case Double:
		return scale(pf.DoublesFactor)
	case Triple:
		return scale(pf.TriplesFactor)
	case Strikeout:
		return scale(pf.StrikeoutFactor)
	case Walk:
		return scale(pf.WalkFactor)
	default:
		return 1.0
	}
}

// IsNeutral reports whether the park leaves every outcome unchanged
func (pf *ParkFactors) IsNeutral() bool {
	if pf == nil {
		return true
	}
	for _, o := range AllOutcomes {
		if pf.Multiplier(o, Right) != 1.0 || pf.Multiplier(o, Left) != 1.0 {
			return false
		}
	}
	return true
}

// IsHittersFriendly returns true if the park significantly favors hitters
func (pf *ParkFactors) IsHittersFriendly() bool {
	return scale(pf.HitsFactor) >= 1.05 && scale(pf.HRFactor) >= 1.05
}

// IsPitchersFriendly returns true if the park significantly favors pitchers
func (pf *ParkFactors) IsPitchersFriendly() bool {
	return scale(pf.HitsFactor) <= 0.95 && scale(pf.HRFactor) <= 0.95
}

// Profile labels the park for logs and reports
func (pf *ParkFactors) Profile() string {
	switch {
	case pf.IsNeutral():
		return "neutral"
	case pf.IsHittersFriendly():
		return "hitters"
	case pf.IsPitchersFriendly():
		return "pitchers"
	}
	return "balanced"
}

// AltitudeEffect returns the home run boost from altitude.
// High altitude stadiums like Coors Field (5280 ft) see a noticeable boost.
func AltitudeEffect(altitude int) float64 {
	if altitude <= 1000 {
		return 1.0
	}

	// ~2% per 1000 feet above 1000 feet, capped at 20%
	boost := float64(altitude-1000) / 1000.0 * 0.02
	if boost > 0.20 {
		boost = 0.20
	}

	return 1.0 + boost
}

// NeutralParkFactors returns factors that change nothing
func NeutralParkFactors() ParkFactors {
	return ParkFactors{
		HRFactor:        100.0,
		HitsFactor:      100.0,
		DoublesFactor:   100.0,
		TriplesFactor:   100.0,
		StrikeoutFactor: 100.0,
		WalkFactor:      100.0,
	}
}

func scale(factor float64) float64 {
	if factor <= 0 {
		return 1.0
	}
	return factor / 100.0
}
