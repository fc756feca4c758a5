package simulation

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/baseball-sim/sim-engine/baserunning"
	"github.com/baseball-sim/sim-engine/fatigue"
	"github.com/baseball-sim/sim-engine/matchup"
	"github.com/baseball-sim/sim-engine/models"
)

const (
	RegulationInnings = 9
	DefaultMaxInnings = 18

	minPitchesPerPA = 3
	maxPitchesPerPA = 8
)

// GameConfig tunes a single game
type GameConfig struct {
	MaxInnings     int  // game is called a tie after this many innings
	HardPitchLimit int  // pitches a fresh arm lasts at constant cost
	KeepEvents     bool // return the play-by-play with the result

	Umpire *models.UmpireTendencies // nil for a league-average umpire
}

// PitchingChange records a substitution made before a plate appearance
type PitchingChange struct {
	OutgoingID string `json:"outgoing_id"`
	IncomingID string `json:"incoming_id"`
	Reason     string `json:"reason"`
}

// PlayEvent is one plate appearance as it happened
type PlayEvent struct {
	Sequence       int                 `json:"sequence"`
	Inning         int                 `json:"inning"`
	Half           models.InningHalf   `json:"half"`
	Outcome        models.Outcome      `json:"outcome"`
	BatterID       string              `json:"batter_id"`
	PitcherID      string              `json:"pitcher_id"`
	Pitches        int                 `json:"pitches"`
	OutsBefore     int                 `json:"outs_before"`
	OutsAfter      int                 `json:"outs_after"`
	RunsScored     int                 `json:"runs_scored"`
	ScorerIDs      []string            `json:"scorer_ids,omitempty"`
	OutRunnerID    string              `json:"out_runner_id,omitempty"`
	Before         baserunning.State   `json:"before"`
	After          baserunning.State   `json:"after"`
	Advancement    []baserunning.Event `json:"advancement,omitempty"`
	Leverage       float64             `json:"leverage"`
	HomeScore      int                 `json:"home_score"`
	AwayScore      int                 `json:"away_score"`
	PitchingChange *PitchingChange     `json:"pitching_change,omitempty"`
}

// GameResult is the outcome of one simulated game
type GameResult struct {
	HomeTeamID      string      `json:"home_team_id"`
	AwayTeamID      string      `json:"away_team_id"`
	HomeScore       int         `json:"home_score"`
	AwayScore       int         `json:"away_score"`
	Winner          string      `json:"winner"`
	Innings         int         `json:"innings"`
	WalkOff         bool        `json:"walk_off"`
	TotalPitches    int         `json:"total_pitches"`
	PitchingChanges int         `json:"pitching_changes"`
	Box             BoxScore    `json:"box_score"`
	Events          []PlayEvent `json:"events,omitempty"`
	KeyEvents       []PlayEvent `json:"key_events,omitempty"`
}

// Summary flattens the game into the per-simulation record
func (r *GameResult) Summary(runID string, simulationNumber int) models.SimulationResult {
	return models.SimulationResult{
		RunID:            runID,
		SimulationNumber: simulationNumber,
		HomeScore:        r.HomeScore,
		AwayScore:        r.AwayScore,
		Winner:           r.Winner,
		Innings:          r.Innings,
		TotalPitches:     r.TotalPitches,
		PlateAppearances: r.Box.Home.PlateAppearances() + r.Box.Away.PlateAppearances(),
		PitchingChanges:  r.PitchingChanges,
		HomeHits:         r.Box.Home.Hits,
		AwayHits:         r.Box.Away.Hits,
		HomeLeftOnBase:   r.Box.Home.LeftOnBase,
		AwayLeftOnBase:   r.Box.Away.LeftOnBase,
	}
}

// side is one team's mutable state within a game
type side struct {
	team      *Team
	bullpen   *models.BullpenState
	pitcher   models.PitcherRole
	batterIdx int
	score     int
}

func (s *side) nextBatter() models.BatterProfile {
	b := s.team.Lineup[s.batterIdx]
	s.batterIdx = (s.batterIdx + 1) % len(s.team.Lineup)
	return b
}

// Game plays one game between two teams. A Game owns its random source,
// bullpens and base state, and must not be shared between goroutines.
type Game struct {
	home, away *side
	league     models.LeagueProfile
	model      *matchup.Model
	rng        *rand.Rand
	cfg        GameConfig
	logger     zerolog.Logger

	events  []PlayEvent
	pitches int
	changes int
	walkOff bool
}

// NewGame sets up a game. gameNumber picks each team's rotation turn.
func NewGame(home, away *Team, league models.LeagueProfile, gameNumber int, rng *rand.Rand, coeffs matchup.Coefficients, cfg GameConfig, logger zerolog.Logger) *Game {
	if cfg.MaxInnings < RegulationInnings {
		cfg.MaxInnings = DefaultMaxInnings
	}
	if cfg.HardPitchLimit <= 0 {
		cfg.HardPitchLimit = fatigue.DefaultHardPitchLimit
	}

	newSide := func(t *Team) *side {
		starter := t.StartingPitcher(gameNumber)
		bullpen := t.NewBullpen(starter)
		return &side{team: t, bullpen: bullpen, pitcher: bullpen.Starter}
	}

	return &Game{
		home:   newSide(home),
		away:   newSide(away),
		league: league,
		model:  matchup.NewModel(rng, matchup.WithCoefficients(coeffs)),
		rng:    rng,
		cfg:    cfg,
		logger: logger,
	}
}

// Play runs the game to completion. The only failure is malformed rate
// data reaching the matchup model.
func (g *Game) Play() (*GameResult, error) {
	inning := 1
	for ; ; inning++ {
		if err := g.playHalf(inning, models.Top, g.away, g.home); err != nil {
			return nil, err
		}
		if inning >= RegulationInnings && g.home.score > g.away.score {
			break
		}

		if err := g.playHalf(inning, models.Bottom, g.home, g.away); err != nil {
			return nil, err
		}
		if inning >= RegulationInnings && g.home.score != g.away.score {
			break
		}
		if inning >= g.cfg.MaxInnings {
			break
		}
	}

	result := &GameResult{
		HomeTeamID:      g.home.team.ID,
		AwayTeamID:      g.away.team.ID,
		HomeScore:       g.home.score,
		AwayScore:       g.away.score,
		Winner:          winner(g.home.score, g.away.score),
		Innings:         inning,
		WalkOff:         g.walkOff,
		TotalPitches:    g.pitches,
		PitchingChanges: g.changes,
		Box:             NewBoxScore(g.home.team.ID, g.away.team.ID, g.events),
	}
	if g.cfg.KeepEvents {
		result.Events = g.events
	}
	return result, nil
}

func winner(home, away int) string {
	switch {
	case home > away:
		return "home"
	case away > home:
		return "away"
	default:
		return "tie"
	}
}

// playHalf runs one half-inning; the bases always start empty
func (g *Game) playHalf(inning int, half models.InningHalf, batting, fielding *side) error {
	state := baserunning.NewState()

	for !state.IsInningOver() {
		gs := models.GameSituation{
			Inning:        inning,
			InningHalf:    half,
			Outs:          state.Outs,
			Bases:         state.Bases,
			PitchingScore: fielding.score,
			BattingScore:  batting.score,
		}
		change := g.managePitcher(gs, fielding)

		batter := batting.nextBatter()
		pitcher, ok := fielding.team.Pitcher(fielding.pitcher.PitcherID)
		if !ok {
			return fmt.Errorf("pitcher %s not on %s staff", fielding.pitcher.PitcherID, fielding.team.ID)
		}

		mt := models.Matchup{
			Batter:  batter,
			Pitcher: pitcher,
			League:  g.league,
			Park:    &g.home.team.Park,
			Umpire:  g.cfg.Umpire,
		}
		outcome, err := g.model.Simulate(mt)
		if err != nil {
			return fmt.Errorf("inning %d %s: %w", inning, half, err)
		}

		res, err := baserunning.Transition(state, outcome, batter.ID)
		if err != nil {
			return err
		}

		pitches := minPitchesPerPA + g.rng.Intn(maxPitchesPerPA-minPitchesPerPA+1)
		g.chargePitcher(&fielding.pitcher, outcome, res.RunsScored, pitches)
		batting.score += res.RunsScored

		g.events = append(g.events, PlayEvent{
			Sequence:       len(g.events) + 1,
			Inning:         inning,
			Half:           half,
			Outcome:        outcome,
			BatterID:       batter.ID,
			PitcherID:      pitcher.ID,
			Pitches:        pitches,
			OutsBefore:     state.Outs,
			OutsAfter:      res.Next.Outs,
			RunsScored:     res.RunsScored,
			ScorerIDs:      res.ScorerIDs,
			OutRunnerID:    res.OutRunnerID,
			Before:         state,
			After:          res.Next,
			Advancement:    res.Advancement,
			Leverage:       fatigue.CalculateLeverageIndex(gs),
			HomeScore:      g.home.score,
			AwayScore:      g.away.score,
			PitchingChange: change,
		})

		state = res.Next

		if half == models.Bottom && inning >= RegulationInnings && batting.score > fielding.score {
			g.walkOff = true
			return nil
		}
	}
	return nil
}

// managePitcher makes a pitching change when the fatigue rules call for
// one and somebody is left to bring in.
func (g *Game) managePitcher(gs models.GameSituation, fielding *side) *PitchingChange {
	decision := fatigue.ShouldPullPitcher(gs, fielding.pitcher, fielding.bullpen, g.rng)
	if !decision.ShouldChange {
		return nil
	}

	next, ok := fatigue.SelectReliever(gs, fielding.bullpen, fielding.pitcher.PitcherID)
	if !ok {
		return nil
	}

	change := &PitchingChange{
		OutgoingID: fielding.pitcher.PitcherID,
		IncomingID: next.PitcherID,
		Reason:     decision.Reason,
	}
	fielding.bullpen.MarkUsed(fielding.pitcher.PitcherID)
	fielding.bullpen.MarkUsed(next.PitcherID)
	fielding.pitcher = next
	g.changes++

	g.logger.Debug().
		Str("team", fielding.team.ID).
		Int("inning", gs.Inning).
		Str("out", change.OutgoingID).
		Str("in", change.IncomingID).
		Str("reason", change.Reason).
		Msg("Pitching change")
	return change
}

func (g *Game) chargePitcher(p *models.PitcherRole, outcome models.Outcome, runs, pitches int) {
	p.BattersFaced++
	p.PitchCount += pitches
	p.Stamina = fatigue.ReduceStamina(p.Stamina, pitches, g.cfg.HardPitchLimit)
	p.RunsAllowed += runs
	if outcome.IsHit() {
		p.HitsAllowed++
	}
	if outcome.IsWalk() || outcome == models.HitByPitch {
		p.WalksAllowed++
	}
	g.pitches += pitches
}
