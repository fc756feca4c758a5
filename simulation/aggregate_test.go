package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baseball-sim/sim-engine/models"
)

func TestAggregate(t *testing.T) {
	results := []models.SimulationResult{
		{HomeScore: 5, AwayScore: 4, Winner: "home", Innings: 9, TotalPitches: 280, PitchingChanges: 4},
		{HomeScore: 0, AwayScore: 8, Winner: "away", Innings: 9, TotalPitches: 300, PitchingChanges: 6},
		{HomeScore: 3, AwayScore: 3, Winner: "tie", Innings: 18, TotalPitches: 520, PitchingChanges: 10},
		{HomeScore: 10, AwayScore: 2, Winner: "home", Innings: 9, TotalPitches: 300, PitchingChanges: 4},
	}

	agg := Aggregate("run-1", results)

	assert.Equal(t, "run-1", agg.RunID)
	assert.Equal(t, 4, agg.TotalSimulations)
	assert.Equal(t, 2, agg.HomeWins)
	assert.Equal(t, 1, agg.AwayWins)
	assert.Equal(t, 1, agg.Ties)
	assert.InDelta(t, 0.5, agg.HomeWinProbability, 1e-9)
	assert.InDelta(t, 0.25, agg.AwayWinProbability, 1e-9)
	assert.InDelta(t, 0.25, agg.TieProbability, 1e-9)
	assert.InDelta(t, 4.5, agg.ExpectedHomeScore, 1e-9)
	assert.InDelta(t, 4.25, agg.ExpectedAwayScore, 1e-9)
	assert.InDelta(t, 350, agg.AveragePitches, 1e-9)
	assert.InDelta(t, 6, agg.AveragePitchingChanges, 1e-9)
	assert.InDelta(t, 25, agg.ExtraInningsPercentage, 1e-9)
	assert.Equal(t, map[int]int{5: 1, 0: 1, 3: 1, 10: 1}, agg.HomeScoreDistribution)
	assert.Equal(t, 1, agg.AwayScoreDistribution[8])

	// totals are 9, 8, 6 and 12
	assert.InDelta(t, 8.75, agg.TotalScoreOverUnder["average"], 1e-9)
	assert.InDelta(t, 0.5, agg.TotalScoreOverUnder["over_8_5"], 1e-9)
	assert.InDelta(t, 0.25, agg.TotalScoreOverUnder["over_9_5"], 1e-9)
	assert.InDelta(t, 0.25, agg.TotalScoreOverUnder["over_10_5"], 1e-9)

	stats := agg.Statistics
	assert.InDelta(t, 8.75, stats["total_runs_average"], 1e-9)
	assert.InDelta(t, (0.0625+0.5625+7.5625+10.5625)/4, stats["score_variance"], 1e-9)
	assert.InDelta(t, 50, stats["blowout_percentage"], 1e-9)
	assert.InDelta(t, 25, stats["one_run_game_percentage"], 1e-9)
	assert.InDelta(t, 25, stats["shutout_percentage"], 1e-9)
	assert.InDelta(t, 25, stats["high_scoring_percentage"], 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate("run-0", nil)
	require.NotNil(t, agg)
	assert.Equal(t, "run-0", agg.RunID)
	assert.Zero(t, agg.TotalSimulations)
}

func TestHighLeverageEvents(t *testing.T) {
	events := []PlayEvent{
		{Sequence: 1, Leverage: 1.0},
		{Sequence: 2, Leverage: 3.1},
		{Sequence: 3, Leverage: 2.5},
		{Sequence: 4, Leverage: 2.0},
		{Sequence: 5, Leverage: 3.1},
	}

	top := HighLeverageEvents(events, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 2, top[0].Sequence)
	assert.Equal(t, 5, top[1].Sequence)

	assert.Len(t, HighLeverageEvents(events, 0), 3)
	assert.Empty(t, HighLeverageEvents(events[:1], 10))
}
