package matchup

import (
	"fmt"
	"math"

	"github.com/baseball-sim/sim-engine/models"
)

// DefaultRegressionThreshold is the plate appearance count at which a
// player's own rates are trusted completely.
const DefaultRegressionThreshold = 200

// ValidateRates checks that rates sum to 1 within models.RateTolerance
func ValidateRates(side Side, rates models.EventRates) error {
	if !rates.SumsToOne() {
		return &RateSumError{Side: side, Sum: rates.Sum()}
	}
	return nil
}

// RegressRates blends a player's rates toward the league with weight
// min(pa/threshold, 1) on the player. A threshold of zero or less uses
// DefaultRegressionThreshold.
func RegressRates(player, league models.EventRates, pa, threshold int) models.EventRates {
	if threshold <= 0 {
		threshold = DefaultRegressionThreshold
	}
	weight := math.Min(float64(max(pa, 0))/float64(threshold), 1)

	out := make(models.EventRates, len(models.AllOutcomes))
	for _, o := range models.AllOutcomes {
		out[o] = weight*player[o] + (1-weight)*league[o]
	}
	return out
}

// NormalizeRates scales rates so they sum to exactly 1. Negative values
// are treated as zero.
func NormalizeRates(rates models.EventRates) (models.EventRates, error) {
	total := 0.0
	for _, o := range models.AllOutcomes {
		total += math.Max(rates[o], 0)
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: sum %.4f", ErrZeroSum, total)
	}

	out := make(models.EventRates, len(models.AllOutcomes))
	for _, o := range models.AllOutcomes {
		out[o] = math.Max(rates[o], 0) / total
	}
	return out, nil
}

// RoundRates rounds every rate to the given number of decimal places
func RoundRates(rates models.EventRates, decimals int) models.EventRates {
	scale := math.Pow(10, float64(decimals))
	out := make(models.EventRates, len(models.AllOutcomes))
	for _, o := range models.AllOutcomes {
		out[o] = math.Round(rates[o]*scale) / scale
	}
	return out
}
