package fatigue

import "github.com/baseball-sim/sim-engine/models"

// CalculateLeverageIndex estimates how much the current situation matters.
// 1.0 is an average plate appearance; late, close games with runners on
// climb well above that.
func CalculateLeverageIndex(gs models.GameSituation) float64 {
	return 1.0 * inningMultiplier(gs.Inning) * scoreMultiplier(gs.ScoreDiff()) * runnerMultiplier(gs.Bases)
}

func inningMultiplier(inning int) float64 {
	switch {
	case inning >= 9:
		return 2.0
	case inning == 8:
		return 1.6
	case inning == 7:
		return 1.3
	case inning >= 4:
		return 1.0
	default:
		return 0.8
	}
}

func scoreMultiplier(diff int) float64 {
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 1.6
	case 1:
		return 1.4
	case 2:
		return 1.2
	case 3:
		return 1.0
	case 4:
		return 0.8
	default:
		return 0.6
	}
}

// runnerMultiplier weighs runners closer to home more heavily
func runnerMultiplier(bases uint8) float64 {
	m := 1.0
	if bases&models.OnFirst != 0 {
		m += 0.10
	}
	if bases&models.OnSecond != 0 {
		m += 0.15
	}
	if bases&models.OnThird != 0 {
		m += 0.25
	}
	return m
}
