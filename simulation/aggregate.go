package simulation

import (
	"sort"

	"github.com/baseball-sim/sim-engine/models"
)

// Thresholds for the game-shape statistics
const (
	BlowoutMargin      = 7
	HighScoringTotal   = 12
	highLeverageCutoff = 2.0
)

var overUnderLines = []struct {
	key  string
	line float64
}{
	{"over_8_5", 8.5},
	{"over_9_5", 9.5},
	{"over_10_5", 10.5},
}

// Aggregate folds per-game records into run-level probabilities and
// statistics. Percentages in Statistics are on a 0-100 scale.
func Aggregate(runID string, results []models.SimulationResult) *models.AggregatedResult {
	if len(results) == 0 {
		return &models.AggregatedResult{RunID: runID}
	}

	aggregated := &models.AggregatedResult{
		RunID:                 runID,
		TotalSimulations:      len(results),
		HomeScoreDistribution: make(map[int]int),
		AwayScoreDistribution: make(map[int]int),
		TotalScoreOverUnder:   make(map[string]float64),
		Statistics:            make(map[string]float64),
	}

	var totalHome, totalAway, totalPitches, totalChanges float64
	var extraInnings int

	for _, r := range results {
		switch r.Winner {
		case "home":
			aggregated.HomeWins++
		case "away":
			aggregated.AwayWins++
		default:
			aggregated.Ties++
		}

		aggregated.HomeScoreDistribution[r.HomeScore]++
		aggregated.AwayScoreDistribution[r.AwayScore]++

		totalHome += float64(r.HomeScore)
		totalAway += float64(r.AwayScore)
		totalPitches += float64(r.TotalPitches)
		totalChanges += float64(r.PitchingChanges)
		if r.Innings > RegulationInnings {
			extraInnings++
		}
	}

	n := float64(len(results))
	aggregated.HomeWinProbability = float64(aggregated.HomeWins) / n
	aggregated.AwayWinProbability = float64(aggregated.AwayWins) / n
	aggregated.TieProbability = float64(aggregated.Ties) / n

	aggregated.ExpectedHomeScore = totalHome / n
	aggregated.ExpectedAwayScore = totalAway / n
	aggregated.AveragePitches = totalPitches / n
	aggregated.AveragePitchingChanges = totalChanges / n
	aggregated.ExtraInningsPercentage = float64(extraInnings) / n * 100.0

	expectedTotal := aggregated.ExpectedHomeScore + aggregated.ExpectedAwayScore
	aggregated.TotalScoreOverUnder["average"] = expectedTotal
	for _, ou := range overUnderLines {
		aggregated.TotalScoreOverUnder[ou.key] = share(results, func(r models.SimulationResult) bool {
			return float64(r.HomeScore+r.AwayScore) > ou.line
		}) / 100.0
	}

	aggregated.Statistics["total_runs_average"] = expectedTotal
	aggregated.Statistics["score_variance"] = scoreVariance(results, expectedTotal)
	aggregated.Statistics["blowout_percentage"] = share(results, func(r models.SimulationResult) bool {
		return margin(r) >= BlowoutMargin
	})
	aggregated.Statistics["one_run_game_percentage"] = share(results, func(r models.SimulationResult) bool {
		return margin(r) == 1
	})
	aggregated.Statistics["shutout_percentage"] = share(results, func(r models.SimulationResult) bool {
		return r.HomeScore == 0 || r.AwayScore == 0
	})
	aggregated.Statistics["high_scoring_percentage"] = share(results, func(r models.SimulationResult) bool {
		return r.HomeScore+r.AwayScore >= HighScoringTotal
	})

	return aggregated
}

// share returns the percentage of results matching pred
func share(results []models.SimulationResult, pred func(models.SimulationResult) bool) float64 {
	count := 0
	for _, r := range results {
		if pred(r) {
			count++
		}
	}
	return float64(count) / float64(len(results)) * 100.0
}

func margin(r models.SimulationResult) int {
	m := r.HomeScore - r.AwayScore
	if m < 0 {
		return -m
	}
	return m
}

func scoreVariance(results []models.SimulationResult, expectedTotal float64) float64 {
	var sum float64
	for _, r := range results {
		diff := float64(r.HomeScore+r.AwayScore) - expectedTotal
		sum += diff * diff
	}
	return sum / float64(len(results))
}

// HighLeverageEvents picks the plays above the high-leverage cutoff,
// most leveraged first, capped at limit.
func HighLeverageEvents(events []PlayEvent, limit int) []PlayEvent {
	var out []PlayEvent
	for _, ev := range events {
		if ev.Leverage > highLeverageCutoff {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Leverage > out[j].Leverage })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
