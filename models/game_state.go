package models

import (
	"time"
)

// InningHalf is "top" or "bottom"
type InningHalf string

const (
	Top    InningHalf = "top"
	Bottom InningHalf = "bottom"
)

// Base occupancy bits shared by the baserunning state and game situations
const (
	OnFirst  uint8 = 1 << 0
	OnSecond uint8 = 1 << 1
	OnThird  uint8 = 1 << 2
	Loaded         = OnFirst | OnSecond | OnThird
)

// GameSituation is the context the pitching-management layer sees at a
// decision point. Scores are from the pitching team's point of view.
type GameSituation struct {
	Inning        int        `json:"inning"`
	InningHalf    InningHalf `json:"inning_half"`
	Outs          int        `json:"outs"`
	Bases         uint8      `json:"bases"`
	PitchingScore int        `json:"pitching_score"`
	BattingScore  int        `json:"batting_score"`
}

// ScoreDiff returns the pitching team's lead (negative when trailing)
func (gs GameSituation) ScoreDiff() int {
	return gs.PitchingScore - gs.BattingScore
}

// BasesLoaded reports whether all three bases are occupied
func (gs GameSituation) BasesLoaded() bool {
	return gs.Bases&Loaded == Loaded
}

// RunnersOn returns the number of occupied bases
func (gs GameSituation) RunnersOn() int {
	count := 0
	for _, bit := range []uint8{OnFirst, OnSecond, OnThird} {
		if gs.Bases&bit != 0 {
			count++
		}
	}
	return count
}

// IsSaveSituation reports the late-inning narrow lead a closer is saved for
func (gs GameSituation) IsSaveSituation() bool {
	diff := gs.ScoreDiff()
	return gs.Inning >= 9 && diff >= 1 && diff <= 3
}

// SimulationResult represents the final result of one simulated game
type SimulationResult struct {
	RunID            string    `json:"run_id"`
	SimulationNumber int       `json:"simulation_number"`
	HomeScore        int       `json:"home_score"`
	AwayScore        int       `json:"away_score"`
	Winner           string    `json:"winner"` // "home", "away" or "tie"
	Innings          int       `json:"innings"`
	TotalPitches     int       `json:"total_pitches"`
	PlateAppearances int       `json:"plate_appearances"`
	PitchingChanges  int       `json:"pitching_changes"`
	HomeHits         int       `json:"home_hits"`
	AwayHits         int       `json:"away_hits"`
	HomeLeftOnBase   int       `json:"home_left_on_base"`
	AwayLeftOnBase   int       `json:"away_left_on_base"`
	CreatedAt        time.Time `json:"created_at"`
}

// AggregatedResult represents the combined results of all simulations in a run
type AggregatedResult struct {
	RunID                  string             `json:"run_id"`
	TotalSimulations       int                `json:"total_simulations"`
	HomeWins               int                `json:"home_wins"`
	AwayWins               int                `json:"away_wins"`
	Ties                   int                `json:"ties"`
	HomeWinProbability     float64            `json:"home_win_probability"`
	AwayWinProbability     float64            `json:"away_win_probability"`
	TieProbability         float64            `json:"tie_probability"`
	ExpectedHomeScore      float64            `json:"expected_home_score"`
	ExpectedAwayScore      float64            `json:"expected_away_score"`
	HomeScoreDistribution  map[int]int        `json:"home_score_distribution"`
	AwayScoreDistribution  map[int]int        `json:"away_score_distribution"`
	AveragePitches         float64            `json:"average_pitches"`
	AveragePitchingChanges float64            `json:"average_pitching_changes"`
	ExtraInningsPercentage float64            `json:"extra_innings_percentage"`
	TotalScoreOverUnder    map[string]float64 `json:"total_score_over_under"`
	Statistics             map[string]float64 `json:"statistics"`
}
