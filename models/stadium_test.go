package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParkFactorMultiplier tests park factor retrieval
func TestParkFactorMultiplier(t *testing.T) {
	pf := ParkFactors{
		HRFactor:      110.0,
		DoublesFactor: 95.0,
		TriplesFactor: 105.0,
		HitsFactor:    102.0,
		LHBHRFactor:   115.0,
		RHBHRFactor:   105.0,
	}

	tests := []struct {
		outcome     Outcome
		batterHand  Hand
		expectedMin float64
		expectedMax float64
	}{
		{HomeRun, Left, 1.10, 1.20},
		{HomeRun, Right, 1.00, 1.10},
		{Double, Left, 0.90, 1.00},
		{Triple, Right, 1.00, 1.10},
		{Single, Left, 1.00, 1.05},
		{GroundOut, Left, 1.00, 1.00},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome)+"_"+string(tt.batterHand), func(t *testing.T) {
			multiplier := pf.Multiplier(tt.outcome, tt.batterHand)
			assert.GreaterOrEqual(t, multiplier, tt.expectedMin)
			assert.LessOrEqual(t, multiplier, tt.expectedMax)
		})
	}
}

func TestParkFactorMultiplierZeroIsNeutral(t *testing.T) {
	var pf ParkFactors
	for _, o := range AllOutcomes {
		assert.Equal(t, 1.0, pf.Multiplier(o, Right), "outcome %s", o)
	}
	assert.True(t, pf.IsNeutral())

	var nilPark *ParkFactors
	assert.Equal(t, 1.0, nilPark.Multiplier(HomeRun, Left))
	assert.True(t, nilPark.IsNeutral())
}

func TestParkFactorAltitudeBoostsHomeRuns(t *testing.T) {
	coors := ParkFactors{HRFactor: 100, Altitude: 5280}
	assert.InDelta(t, 1.0856, coors.Multiplier(HomeRun, Right), 0.001)
	assert.Equal(t, 1.0, coors.Multiplier(Single, Right))
	assert.False(t, coors.IsNeutral())
}

// TestAltitudeEffect tests altitude effects on home runs
func TestAltitudeEffect(t *testing.T) {
	tests := []struct {
		altitude int
		expected float64
		desc     string
	}{
		{0, 1.0, "sea level"},
		{500, 1.0, "low elevation"},
		{1000, 1.0, "threshold"},
		{3000, 1.04, "moderate elevation"},
		{5280, 1.0856, "Coors Field"},
		{15000, 1.20, "extreme altitude (capped)"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AltitudeEffect(tt.altitude), 0.01)
		})
	}
}

func TestParkFriendliness(t *testing.T) {
	tests := []struct {
		name     string
		pf       ParkFactors
		hitters  bool
		pitchers bool
		profile  string
	}{
		{"hitter friendly", ParkFactors{HitsFactor: 110, HRFactor: 112}, true, false, "hitters"},
		{"neutral park", NeutralParkFactors(), false, false, "neutral"},
		{"pitcher friendly", ParkFactors{HitsFactor: 92, HRFactor: 90}, false, true, "pitchers"},
		{"walk heavy", ParkFactors{WalkFactor: 104}, false, false, "balanced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hitters, tt.pf.IsHittersFriendly())
			assert.Equal(t, tt.pitchers, tt.pf.IsPitchersFriendly())
			assert.Equal(t, tt.profile, tt.pf.Profile())
		})
	}
}
