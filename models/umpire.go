package models

import "math"

// UmpireTendencies describes how the plate umpire shifts strikeouts and walks
// for one game
type UmpireTendencies struct {
	// Strike zone size relative to average (100 = average, >100 = larger zone).
	// Zero is treated as average.
	StrikeZoneSize float64 `json:"strike_zone_size" yaml:"strike_zone_size"`

	// Rate adjustments in percentage points (positive = more of the outcome)
	StrikeoutRateAdjustment float64 `json:"strikeout_rate_adjustment" yaml:"strikeout_rate_adjustment"`
	WalkRateAdjustment      float64 `json:"walk_rate_adjustment" yaml:"walk_rate_adjustment"`
}

// MaxUmpireAdjustment bounds the strikeout and walk shifts in percentage points
const MaxUmpireAdjustment = 10.0

// StrikeoutAdjustment returns the K% shift in percentage points
func (ut *UmpireTendencies) StrikeoutAdjustment() float64 {
	if ut == nil {
		return 0
	}
	// Larger zone = more strikeouts
	return ut.StrikeoutRateAdjustment + ut.zoneDelta()*0.05
}

// WalkAdjustment returns the BB% shift in percentage points
func (ut *UmpireTendencies) WalkAdjustment() float64 {
	if ut == nil {
		return 0
	}
	// Smaller zone = more walks
	return ut.WalkRateAdjustment - ut.zoneDelta()*0.05
}

func (ut *UmpireTendencies) zoneDelta() float64 {
	if ut.StrikeZoneSize <= 0 {
		return 0
	}
	return ut.StrikeZoneSize - 100.0
}

// Multiplier converts the umpire's percentage point shift for outcome into a
// scaling of that outcome's league rate. Outcomes the umpire does not affect
// return 1.0.
func (ut *UmpireTendencies) Multiplier(outcome Outcome, leagueRate float64) float64 {
	if ut == nil || leagueRate <= 0 {
		return 1.0
	}

	var points float64
	switch outcome {
	case Strikeout:
		points = ut.StrikeoutAdjustment()
	case Walk:
		points = ut.WalkAdjustment()
	default:
		return 1.0
	}

	shifted := leagueRate + points/100.0
	if shifted < 0 {
		return 0
	}
	return shifted / leagueRate
}

// IsStrikeCaller returns true if umpire tends to call more strikes than average
func (ut *UmpireTendencies) IsStrikeCaller() bool {
	return ut.zoneDelta() > 2 || ut.StrikeoutRateAdjustment > 0.5
}

// IsHitterFriendly returns true if umpire tends to favor hitters
func (ut *UmpireTendencies) IsHitterFriendly() bool {
	return ut.zoneDelta() < -2 || ut.WalkRateAdjustment > 0.5
}

// Profile labels the umpire for logs
func (ut *UmpireTendencies) Profile() string {
	switch {
	case ut == nil:
		return "none"
	case ut.IsStrikeCaller():
		return "strike_caller"
	case ut.IsHitterFriendly():
		return "hitter_friendly"
	}
	return "average"
}

// Valid reports whether the tendencies are within the modeled range
func (ut *UmpireTendencies) Valid() bool {
	if ut == nil {
		return true
	}
	return ut.StrikeZoneSize >= 0 &&
		math.Abs(ut.StrikeoutAdjustment()) <= MaxUmpireAdjustment &&
		math.Abs(ut.WalkAdjustment()) <= MaxUmpireAdjustment
}

// DefaultUmpireTendencies returns league average umpire tendencies
func DefaultUmpireTendencies() UmpireTendencies {
	return UmpireTendencies{StrikeZoneSize: 100.0}
}
