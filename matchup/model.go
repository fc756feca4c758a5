// Package matchup predicts plate appearance outcome probabilities for a
// batter/pitcher pair and samples outcomes from them.
package matchup

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/baseball-sim/sim-engine/models"
)

// Epsilon is the floor applied to every rate before exponentiation
const Epsilon = 1e-6

// Fallback is returned by Sample when floating point rounding leaves the
// draw above the final cumulative sum.
const Fallback = models.GroundOut

// ErrZeroSum is returned when a rate vector has no finite mass to normalize
var ErrZeroSum = errors.New("rates sum to zero")

// Side names the input vector a validation error refers to
type Side string

const (
	SideBatter       Side = "batter"
	SidePitcher      Side = "pitcher"
	SideLeague       Side = "league"
	SideDistribution Side = "distribution"
)

// RateSumError reports a rate vector that does not sum to 1
type RateSumError struct {
	Side Side
	Sum  float64
}

func (e *RateSumError) Error() string {
	return fmt.Sprintf("%s rates sum to %.4f, expected 1.0", e.Side, e.Sum)
}

// RandomSource yields uniform draws in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Coefficients are the exponents applied to the batter, pitcher and league
// rates. The defaults reproduce the classic log5 odds-ratio form.
type Coefficients struct {
	Batter  float64 `json:"batter"`
	Pitcher float64 `json:"pitcher"`
	League  float64 `json:"league"`
}

// DefaultCoefficients returns α=1, β=1, γ=-1
func DefaultCoefficients() Coefficients {
	return Coefficients{Batter: 1, Pitcher: 1, League: -1}
}

// Model combines the three rate vectors of a matchup into one distribution.
// A Model is owned by one game; its coefficients may be changed at runtime.
type Model struct {
	mu     sync.RWMutex
	coeffs Coefficients
	rng    RandomSource
}

// Option configures a Model
type Option func(*Model)

// WithCoefficients overrides the default exponents
func WithCoefficients(c Coefficients) Option {
	return func(m *Model) {
		m.coeffs = c
	}
}

// NewModel creates a model drawing from rng
func NewModel(rng RandomSource, opts ...Option) *Model {
	m := &Model{
		coeffs: DefaultCoefficients(),
		rng:    rng,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Coefficients returns the exponents currently in use
func (m *Model) Coefficients() Coefficients {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.coeffs
}

// SetCoefficients replaces the exponents used by later predictions
func (m *Model) SetCoefficients(c Coefficients) {
	m.mu.Lock()
	m.coeffs = c
	m.mu.Unlock()
}

// Predict returns the normalized outcome distribution for a matchup.
// Each input vector must sum to 1 within models.RateTolerance. Park
// factors and umpire tendencies, when present, scale the raw values before
// normalization.
func (m *Model) Predict(mt models.Matchup) (models.Distribution, error) {
	batter := mt.BatterRates()
	pitcher := mt.PitcherRates()
	league := mt.LeagueRates()

	if err := ValidateRates(SideBatter, batter); err != nil {
		return nil, err
	}
	if err := ValidateRates(SidePitcher, pitcher); err != nil {
		return nil, err
	}
	if err := ValidateRates(SideLeague, league); err != nil {
		return nil, err
	}

	c := m.Coefficients()
	hand := mt.BatterHand()

	raw := make(models.EventRates, len(models.AllOutcomes))
	for _, o := range models.AllOutcomes {
		v := math.Pow(math.Max(batter[o], Epsilon), c.Batter) *
			math.Pow(math.Max(pitcher[o], Epsilon), c.Pitcher) *
			math.Pow(math.Max(league[o], Epsilon), c.League)
		raw[o] = v * mt.Park.Multiplier(o, hand) * mt.Umpire.Multiplier(o, league[o])
	}

	normalized, err := NormalizeRates(raw)
	if err != nil {
		return nil, fmt.Errorf("%s for %s vs %s: %w", SideDistribution, mt.Batter.ID, mt.Pitcher.ID, err)
	}

	dist := models.Distribution(normalized)
	if sum := dist.Sum(); math.Abs(sum-1.0) > models.DistributionTolerance {
		return nil, &RateSumError{Side: SideDistribution, Sum: sum}
	}
	return dist, nil
}

// Sample draws one outcome from d by walking the fixed outcome order
func (m *Model) Sample(d models.Distribution) models.Outcome {
	return SampleWith(m.rng, d)
}

// Simulate predicts and samples a single plate appearance
func (m *Model) Simulate(mt models.Matchup) (models.Outcome, error) {
	d, err := m.Predict(mt)
	if err != nil {
		return "", err
	}
	return m.Sample(d), nil
}

// SampleWith draws one outcome from d using rng
func SampleWith(rng RandomSource, d models.Distribution) models.Outcome {
	draw := rng.Float64()
	cumulative := 0.0
	for _, o := range models.AllOutcomes {
		cumulative += d[o]
		if cumulative >= draw && d[o] > 0 {
			return o
		}
	}
	return Fallback
}
