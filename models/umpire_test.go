package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUmpireRateAdjustments(t *testing.T) {
	tests := []struct {
		name   string
		umpire UmpireTendencies
		wantK  float64
		wantBB float64
	}{
		{"large zone", UmpireTendencies{StrikeZoneSize: 110, StrikeoutRateAdjustment: 1.0, WalkRateAdjustment: -0.5}, 1.5, -1.0},
		{"small zone", UmpireTendencies{StrikeZoneSize: 90, StrikeoutRateAdjustment: -0.5, WalkRateAdjustment: 1.0}, -1.0, 1.5},
		{"neutral zone", DefaultUmpireTendencies(), 0, 0},
		{"zero zone is average", UmpireTendencies{StrikeoutRateAdjustment: 0.8}, 0.8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantK, tt.umpire.StrikeoutAdjustment(), 1e-9)
			assert.InDelta(t, tt.wantBB, tt.umpire.WalkAdjustment(), 1e-9)
		})
	}
}

func TestUmpireEffectsBalance(t *testing.T) {
	large := UmpireTendencies{StrikeZoneSize: 110}
	assert.Positive(t, large.StrikeoutAdjustment(), "large zone adds strikeouts")
	assert.Negative(t, large.WalkAdjustment(), "large zone removes walks")

	small := UmpireTendencies{StrikeZoneSize: 90}
	assert.Negative(t, small.StrikeoutAdjustment())
	assert.Positive(t, small.WalkAdjustment())
}

func TestUmpireMultiplier(t *testing.T) {
	ump := &UmpireTendencies{StrikeZoneSize: 100, StrikeoutRateAdjustment: 2.0, WalkRateAdjustment: -1.0}

	assert.InDelta(t, 0.22/0.20, ump.Multiplier(Strikeout, 0.20), 1e-9)
	assert.InDelta(t, 0.07/0.08, ump.Multiplier(Walk, 0.08), 1e-9)
	assert.Equal(t, 1.0, ump.Multiplier(HomeRun, 0.03))
	assert.Equal(t, 1.0, ump.Multiplier(IntentionalWalk, 0.01), "intentional walks ignore the zone")
	assert.Equal(t, 1.0, ump.Multiplier(Strikeout, 0), "no league rate to shift")

	stingy := &UmpireTendencies{WalkRateAdjustment: -9}
	assert.Zero(t, stingy.Multiplier(Walk, 0.05), "shift never goes below zero")

	var none *UmpireTendencies
	assert.Equal(t, 1.0, none.Multiplier(Strikeout, 0.2))
	assert.Zero(t, none.StrikeoutAdjustment())
}

func TestUmpireClassification(t *testing.T) {
	tests := []struct {
		name           string
		umpire         *UmpireTendencies
		strikeCaller   bool
		hitterFriendly bool
		profile        string
	}{
		{"large strike zone", &UmpireTendencies{StrikeZoneSize: 105}, true, false, "strike_caller"},
		{"high K rate adjustment", &UmpireTendencies{StrikeZoneSize: 100, StrikeoutRateAdjustment: 1.0}, true, false, "strike_caller"},
		{"small strike zone", &UmpireTendencies{StrikeZoneSize: 95}, false, true, "hitter_friendly"},
		{"high walk rate", &UmpireTendencies{StrikeZoneSize: 100, WalkRateAdjustment: 1.0}, false, true, "hitter_friendly"},
		{"neutral umpire", &UmpireTendencies{StrikeZoneSize: 100}, false, false, "average"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.strikeCaller, tt.umpire.IsStrikeCaller())
			assert.Equal(t, tt.hitterFriendly, tt.umpire.IsHitterFriendly())
			assert.Equal(t, tt.profile, tt.umpire.Profile())
		})
	}

	var none *UmpireTendencies
	assert.Equal(t, "none", none.Profile())
}

func TestUmpireValid(t *testing.T) {
	var none *UmpireTendencies
	assert.True(t, none.Valid())
	assert.True(t, (&UmpireTendencies{StrikeZoneSize: 120, StrikeoutRateAdjustment: 5}).Valid())
	assert.False(t, (&UmpireTendencies{StrikeZoneSize: -1}).Valid())
	assert.False(t, (&UmpireTendencies{StrikeoutRateAdjustment: 12}).Valid())
	assert.False(t, (&UmpireTendencies{StrikeZoneSize: 400}).Valid(), "zone shift alone exceeds the bound")
}
