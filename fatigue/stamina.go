// Package fatigue tracks pitcher stamina, decides when to make a pitching
// change and picks who comes out of the bullpen.
package fatigue

import "github.com/baseball-sim/sim-engine/models"

// DefaultHardPitchLimit is the pitch count a full tank lasts at constant cost
const DefaultHardPitchLimit = 110

// RandomSource yields uniform draws in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// ReduceStamina charges pitches against stamina. Each pitch costs more the
// more tired the pitcher already is, and stamina never drops below zero.
func ReduceStamina(stamina float64, pitches, hardPitchLimit int) float64 {
	if hardPitchLimit <= 0 {
		hardPitchLimit = DefaultHardPitchLimit
	}
	perPitch := models.FullStamina / float64(hardPitchLimit)

	for i := 0; i < pitches; i++ {
		tiredness := (models.FullStamina - stamina) / models.FullStamina
		stamina -= perPitch * (1 + tiredness)
		if stamina <= 0 {
			return 0
		}
	}
	return stamina
}
