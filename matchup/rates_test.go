package matchup

import (
	"testing"

	"github.com/baseball-sim/sim-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegressRates(t *testing.T) {
	player := models.EventRates{models.Single: 0.30, models.Strikeout: 0.70}
	league := models.EventRates{models.Single: 0.10, models.Strikeout: 0.90}

	tests := []struct {
		name       string
		pa         int
		threshold  int
		wantSingle float64
	}{
		{"no sample uses league", 0, 200, 0.10},
		{"half weight", 100, 200, 0.20},
		{"at threshold", 200, 200, 0.30},
		{"beyond threshold is capped", 650, 200, 0.30},
		{"default threshold", 50, 0, 0.15},
		{"negative pa", -10, 200, 0.10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RegressRates(player, league, tt.pa, tt.threshold)
			assert.InDelta(t, tt.wantSingle, got[models.Single], 1e-9)
			assert.InDelta(t, 1.0, got.Sum(), 1e-9)
		})
	}
}

func TestNormalizeRates(t *testing.T) {
	got, err := NormalizeRates(models.EventRates{models.Single: 2, models.Walk: 6, models.PopOut: -1})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, got[models.Single], 1e-9)
	assert.InDelta(t, 0.75, got[models.Walk], 1e-9)
	assert.Zero(t, got[models.PopOut])

	_, err = NormalizeRates(models.EventRates{})
	assert.ErrorIs(t, err, ErrZeroSum)
	assert.Contains(t, err.Error(), "sum 0.0000")

	_, err = NormalizeRates(models.EventRates{models.Walk: -2})
	assert.ErrorIs(t, err, ErrZeroSum, "negatives carry no mass")
}

func TestValidateRates(t *testing.T) {
	assert.NoError(t, ValidateRates(SideBatter, leagueRates()))

	rates := leagueRates()
	rates[models.Walk] += 0.009
	assert.NoError(t, ValidateRates(SideBatter, rates), "within tolerance")

	rates[models.Walk] += 0.01
	assert.Error(t, ValidateRates(SidePitcher, rates))
}

func TestRoundRates(t *testing.T) {
	got := RoundRates(models.EventRates{models.Single: 0.123456, models.Walk: 0.0876}, 3)
	assert.InDelta(t, 0.123, got[models.Single], 1e-12)
	assert.InDelta(t, 0.088, got[models.Walk], 1e-12)
}
