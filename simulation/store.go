package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/baseball-sim/sim-engine/models"
)

// ResultStore persists simulation runs beyond the engine's memory
type ResultStore interface {
	CreateRun(ctx context.Context, run *RunStatus) error
	UpdateRunStatus(ctx context.Context, runID, status string, completedRuns int) error
	SaveResults(ctx context.Context, results []models.SimulationResult) error
	SaveAggregate(ctx context.Context, aggregated *models.AggregatedResult) error
	SavePlayEvents(ctx context.Context, runID string, simulationNumber int, events []PlayEvent) error
	GetRunStatus(ctx context.Context, runID string) (*RunStatus, error)
	GetAggregate(ctx context.Context, runID string) (*models.AggregatedResult, error)
}

// DB is the subset of *pgxpool.Pool the store needs
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NopStore keeps nothing; lookups always miss
type NopStore struct{}

func (NopStore) CreateRun(context.Context, *RunStatus) error { return nil }
func (NopStore) UpdateRunStatus(context.Context, string, string, int) error { return nil }
func (NopStore) SaveResults(context.Context, []models.SimulationResult) error { return nil }
func (NopStore) SaveAggregate(context.Context, *models.AggregatedResult) error { return nil }
func (NopStore) SavePlayEvents(context.Context, string, int, []PlayEvent) error { return nil }
func (NopStore) GetRunStatus(context.Context, string) (*RunStatus, error) { return nil, ErrRunNotFound }
func (NopStore) GetAggregate(context.Context, string) (*models.AggregatedResult, error) {
	return nil, ErrRunNotFound
}

// PostgresStore writes runs, per-game results, aggregates and play-by-play
// to postgres
type PostgresStore struct {
	db     DB
	logger zerolog.Logger
}

func NewPostgresStore(db DB, logger zerolog.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

const schema = `
CREATE TABLE IF NOT EXISTS simulation_runs (
	id UUID PRIMARY KEY,
	season TEXT NOT NULL,
	home_team TEXT NOT NULL,
	away_team TEXT NOT NULL,
	seed BIGINT NOT NULL,
	total_runs INTEGER NOT NULL,
	completed_runs INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS simulation_results (
	run_id UUID NOT NULL REFERENCES simulation_runs(id) ON DELETE CASCADE,
	simulation_number INTEGER NOT NULL,
	home_score INTEGER NOT NULL,
	away_score INTEGER NOT NULL,
	winner TEXT NOT NULL,
	innings INTEGER NOT NULL,
	total_pitches INTEGER NOT NULL,
	plate_appearances INTEGER NOT NULL,
	pitching_changes INTEGER NOT NULL,
	home_hits INTEGER NOT NULL,
	away_hits INTEGER NOT NULL,
	home_left_on_base INTEGER NOT NULL,
	away_left_on_base INTEGER NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL,
	PRIMARY KEY (run_id, simulation_number)
);

CREATE TABLE IF NOT EXISTS simulation_aggregates (
	run_id UUID PRIMARY KEY REFERENCES simulation_runs(id) ON DELETE CASCADE,
	total_simulations INTEGER NOT NULL,
	home_wins INTEGER NOT NULL,
	away_wins INTEGER NOT NULL,
	ties INTEGER NOT NULL,
	home_win_probability DOUBLE PRECISION NOT NULL,
	away_win_probability DOUBLE PRECISION NOT NULL,
	tie_probability DOUBLE PRECISION NOT NULL,
	expected_home_score DOUBLE PRECISION NOT NULL,
	expected_away_score DOUBLE PRECISION NOT NULL,
	average_pitches DOUBLE PRECISION NOT NULL,
	average_pitching_changes DOUBLE PRECISION NOT NULL,
	extra_innings_percentage DOUBLE PRECISION NOT NULL,
	home_score_distribution JSONB NOT NULL,
	away_score_distribution JSONB NOT NULL,
	total_score_over_under JSONB NOT NULL,
	statistics JSONB NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS play_events (
	run_id UUID NOT NULL REFERENCES simulation_runs(id) ON DELETE CASCADE,
	simulation_number INTEGER NOT NULL,
	sequence INTEGER NOT NULL,
	inning INTEGER NOT NULL,
	half TEXT NOT NULL,
	outcome TEXT NOT NULL,
	batter_id TEXT NOT NULL,
	pitcher_id TEXT NOT NULL,
	outs_before INTEGER NOT NULL,
	outs_after INTEGER NOT NULL,
	runs_scored INTEGER NOT NULL,
	leverage DOUBLE PRECISION NOT NULL,
	detail JSONB NOT NULL,
	PRIMARY KEY (run_id, simulation_number, sequence)
);`

// EnsureSchema creates the tables when they are missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *RunStatus) error {
	query := `
		INSERT INTO simulation_runs (
			id, season, home_team, away_team, seed, total_runs, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(ctx, query,
		run.RunID, run.Season, run.HomeTeam, run.AwayTeam,
		run.Seed, run.TotalRuns, run.Status, run.StartTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create run %s: %w", run.RunID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID, status string, completedRuns int) error {
	query := `
		UPDATE simulation_runs
		SET status = $2, completed_runs = $3, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query, runID, status, completedRuns)
	if err != nil {
		return fmt.Errorf("failed to update run status for %s: %w", runID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

var resultColumns = []string{
	"run_id", "simulation_number", "home_score", "away_score", "winner",
	"innings", "total_pitches", "plate_appearances", "pitching_changes",
	"home_hits", "away_hits", "home_left_on_base", "away_left_on_base",
	"created_at",
}

// SaveResults bulk-copies per-game results in one transaction
func (s *PostgresStore) SaveResults(ctx context.Context, results []models.SimulationResult) error {
	if len(results) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{
			r.RunID, r.SimulationNumber, r.HomeScore, r.AwayScore, r.Winner,
			r.Innings, r.TotalPitches, r.PlateAppearances, r.PitchingChanges,
			r.HomeHits, r.AwayHits, r.HomeLeftOnBase, r.AwayLeftOnBase,
			r.CreatedAt,
		})
	}
	return s.copyRows(ctx, "simulation_results", resultColumns, rows)
}

var eventColumns = []string{
	"run_id", "simulation_number", "sequence", "inning", "half", "outcome",
	"batter_id", "pitcher_id", "outs_before", "outs_after", "runs_scored",
	"leverage", "detail",
}

// SavePlayEvents bulk-copies one game's play-by-play
func (s *PostgresStore) SavePlayEvents(ctx context.Context, runID string, simulationNumber int, events []PlayEvent) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(events))
	for _, ev := range events {
		detail, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal play event %d: %w", ev.Sequence, err)
		}
		rows = append(rows, []any{
			runID, simulationNumber, ev.Sequence, ev.Inning, string(ev.Half), string(ev.Outcome),
			ev.BatterID, ev.PitcherID, ev.OutsBefore, ev.OutsAfter, ev.RunsScored,
			ev.Leverage, detail,
		})
	}
	return s.copyRows(ctx, "play_events", eventColumns, rows)
}

func (s *PostgresStore) copyRows(ctx context.Context, table string, columns []string, rows [][]any) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Warn().Err(rbErr).Str("table", table).Msg("Rollback failed")
		}
		return fmt.Errorf("failed to copy into %s: %w", table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}

	s.logger.Debug().Str("table", table).Int64("rows", n).Msg("Stored rows")
	return nil
}

// SaveAggregate upserts the run-level aggregate
func (s *PostgresStore) SaveAggregate(ctx context.Context, result *models.AggregatedResult) error {
	homeDist, err := json.Marshal(result.HomeScoreDistribution)
	if err != nil {
		return fmt.Errorf("failed to marshal home score distribution: %w", err)
	}
	awayDist, err := json.Marshal(result.AwayScoreDistribution)
	if err != nil {
		return fmt.Errorf("failed to marshal away score distribution: %w", err)
	}
	overUnder, err := json.Marshal(result.TotalScoreOverUnder)
	if err != nil {
		return fmt.Errorf("failed to marshal over/under: %w", err)
	}
	statistics, err := json.Marshal(result.Statistics)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}

	query := `
		INSERT INTO simulation_aggregates (
			run_id, total_simulations, home_wins, away_wins, ties,
			home_win_probability, away_win_probability, tie_probability,
			expected_home_score, expected_away_score,
			average_pitches, average_pitching_changes, extra_innings_percentage,
			home_score_distribution, away_score_distribution,
			total_score_over_under, statistics
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (run_id) DO UPDATE SET
			total_simulations = EXCLUDED.total_simulations,
			home_wins = EXCLUDED.home_wins,
			away_wins = EXCLUDED.away_wins,
			ties = EXCLUDED.ties,
			home_win_probability = EXCLUDED.home_win_probability,
			away_win_probability = EXCLUDED.away_win_probability,
			tie_probability = EXCLUDED.tie_probability,
			expected_home_score = EXCLUDED.expected_home_score,
			expected_away_score = EXCLUDED.expected_away_score,
			average_pitches = EXCLUDED.average_pitches,
			average_pitching_changes = EXCLUDED.average_pitching_changes,
			extra_innings_percentage = EXCLUDED.extra_innings_percentage,
			home_score_distribution = EXCLUDED.home_score_distribution,
			away_score_distribution = EXCLUDED.away_score_distribution,
			total_score_over_under = EXCLUDED.total_score_over_under,
			statistics = EXCLUDED.statistics
	`

	_, err = s.db.Exec(ctx, query,
		result.RunID,
		result.TotalSimulations,
		result.HomeWins,
		result.AwayWins,
		result.Ties,
		result.HomeWinProbability,
		result.AwayWinProbability,
		result.TieProbability,
		result.ExpectedHomeScore,
		result.ExpectedAwayScore,
		result.AveragePitches,
		result.AveragePitchingChanges,
		result.ExtraInningsPercentage,
		homeDist,
		awayDist,
		overUnder,
		statistics,
	)
	if err != nil {
		return fmt.Errorf("failed to store aggregated results: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRunStatus(ctx context.Context, runID string) (*RunStatus, error) {
	query := `
		SELECT id, season, home_team, away_team, seed, total_runs,
		       completed_runs, status, created_at
		FROM simulation_runs
		WHERE id = $1
	`

	var status RunStatus
	err := s.db.QueryRow(ctx, query, runID).Scan(
		&status.RunID,
		&status.Season,
		&status.HomeTeam,
		&status.AwayTeam,
		&status.Seed,
		&status.TotalRuns,
		&status.CompletedRuns,
		&status.Status,
		&status.StartTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run status: %w", err)
	}
	return &status, nil
}

func (s *PostgresStore) GetAggregate(ctx context.Context, runID string) (*models.AggregatedResult, error) {
	query := `
		SELECT run_id, total_simulations, home_wins, away_wins, ties,
		       home_win_probability, away_win_probability, tie_probability,
		       expected_home_score, expected_away_score,
		       average_pitches, average_pitching_changes, extra_innings_percentage,
		       home_score_distribution, away_score_distribution,
		       total_score_over_under, statistics
		FROM simulation_aggregates
		WHERE run_id = $1
	`

	var result models.AggregatedResult
	var homeDist, awayDist, overUnder, statistics []byte

	err := s.db.QueryRow(ctx, query, runID).Scan(
		&result.RunID,
		&result.TotalSimulations,
		&result.HomeWins,
		&result.AwayWins,
		&result.Ties,
		&result.HomeWinProbability,
		&result.AwayWinProbability,
		&result.TieProbability,
		&result.ExpectedHomeScore,
		&result.ExpectedAwayScore,
		&result.AveragePitches,
		&result.AveragePitchingChanges,
		&result.ExtraInningsPercentage,
		&homeDist,
		&awayDist,
		&overUnder,
		&statistics,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load simulation result: %w", err)
	}

	fields := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"home score distribution", homeDist, &result.HomeScoreDistribution},
		{"away score distribution", awayDist, &result.AwayScoreDistribution},
		{"over/under", overUnder, &result.TotalScoreOverUnder},
		{"statistics", statistics, &result.Statistics},
	}
	for _, f := range fields {
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			s.logger.Warn().Err(err).Str("run_id", runID).Msgf("Failed to parse %s", f.name)
		}
	}
	return &result, nil
}
