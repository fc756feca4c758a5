// Package simulation plays full games from the base/out machine, the
// matchup model and the bullpen rules, and runs Monte Carlo batches of them
// over a worker pool.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/baseball-sim/sim-engine/matchup"
	"github.com/baseball-sim/sim-engine/models"
	"github.com/baseball-sim/sim-engine/season"
)

// Run states
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "error"
	StatusCancelled = "cancelled"
)

const (
	// RunRetention is how long finished runs stay in memory
	RunRetention = 24 * time.Hour

	progressEvery  = 100
	storeTimeout   = 5 * time.Second
	keyEventsLimit = 50
)

var (
	ErrRunNotFound    = errors.New("simulation run not found")
	ErrRunNotComplete = errors.New("simulation run not complete")
	ErrInvalidRequest = errors.New("invalid simulation request")
)

// SeasonSource supplies season packages, typically a *season.Cache
type SeasonSource interface {
	Get(ctx context.Context, season string) (*season.Package, error)
}

// SimulationRequest describes a batch of games between two teams
type SimulationRequest struct {
	Season         string `json:"season"`
	HomeTeam       string `json:"home_team"`
	AwayTeam       string `json:"away_team"`
	SimulationRuns int    `json:"simulation_runs"`
	Seed           int64  `json:"seed"`
	GameNumber     int    `json:"game_number"`
	KeepEvents     bool   `json:"keep_events"`

	Umpire *models.UmpireTendencies `json:"umpire,omitempty"`
}

func (r SimulationRequest) validate() error {
	switch {
	case r.Season == "":
		return fmt.Errorf("%w: season is required", ErrInvalidRequest)
	case r.HomeTeam == "" || r.AwayTeam == "":
		return fmt.Errorf("%w: home_team and away_team are required", ErrInvalidRequest)
	case r.HomeTeam == r.AwayTeam:
		return fmt.Errorf("%w: a team cannot play itself", ErrInvalidRequest)
	case r.SimulationRuns < 0:
		return fmt.Errorf("%w: simulation_runs must not be negative", ErrInvalidRequest)
	case !r.Umpire.Valid():
		return fmt.Errorf("%w: umpire adjustments must stay within %.0f points", ErrInvalidRequest, models.MaxUmpireAdjustment)
	}
	return nil
}

// RunStatus tracks the progress of a simulation run
type RunStatus struct {
	RunID         string     `json:"run_id"`
	Season        string     `json:"season"`
	HomeTeam      string     `json:"home_team"`
	AwayTeam      string     `json:"away_team"`
	Seed          int64      `json:"seed"`
	TotalRuns     int        `json:"total_runs"`
	CompletedRuns int        `json:"completed_runs"`
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	StartTime     time.Time  `json:"start_time"`
	CompletedTime *time.Time `json:"completed_time,omitempty"`

	Results          []models.SimulationResult `json:"-"`
	AggregatedResult *models.AggregatedResult  `json:"-"`
}

// EngineConfig tunes the Monte Carlo engine
type EngineConfig struct {
	Workers             int
	SimulationRuns      int // default when a request leaves it unset
	RegressionThreshold int
	Coefficients        matchup.Coefficients
	Game                GameConfig
}

// Stats is a snapshot of the engine counters
type Stats struct {
	RunsStarted      int64 `json:"runs_started"`
	RunsCompleted    int64 `json:"runs_completed"`
	RunsFailed       int64 `json:"runs_failed"`
	ActiveRuns       int   `json:"active_runs"`
	GamesSimulated   int64 `json:"games_simulated"`
	PlateAppearances int64 `json:"plate_appearances"`
	PitchingChanges  int64 `json:"pitching_changes"`
}

// Engine runs simulation batches and remembers their status
type Engine struct {
	seasons SeasonSource
	store   ResultStore
	logger  zerolog.Logger
	cfg     EngineConfig
	now     func() time.Time

	runsStarted      atomic.Int64
	runsCompleted    atomic.Int64
	runsFailed       atomic.Int64
	gamesSimulated   atomic.Int64
	plateAppearances atomic.Int64
	pitchingChanges  atomic.Int64

	mu         sync.RWMutex
	activeRuns map[string]*RunStatus
}

// NewEngine creates a new simulation engine. A nil store keeps results in
// memory only.
func NewEngine(seasons SeasonSource, store ResultStore, cfg EngineConfig, logger zerolog.Logger) *Engine {
	if store == nil {
		store = NopStore{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.SimulationRuns <= 0 {
		cfg.SimulationRuns = 1000
	}
	return &Engine{
		seasons:    seasons,
		store:      store,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
		activeRuns: make(map[string]*RunStatus),
	}
}

// matchupSetup is everything resolved once per request
type matchupSetup struct {
	league     models.LeagueProfile
	home, away *Team
}

func (e *Engine) prepare(ctx context.Context, req SimulationRequest) (*matchupSetup, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	pkg, err := e.seasons.Get(ctx, req.Season)
	if err != nil {
		return nil, err
	}
	home, err := BuildTeam(pkg, req.HomeTeam, e.cfg.RegressionThreshold)
	if err != nil {
		return nil, err
	}
	away, err := BuildTeam(pkg, req.AwayTeam, e.cfg.RegressionThreshold)
	if err != nil {
		return nil, err
	}
	return &matchupSetup{league: pkg.League, home: home, away: away}, nil
}

func (e *Engine) normalize(req SimulationRequest) SimulationRequest {
	if req.SimulationRuns == 0 {
		req.SimulationRuns = e.cfg.SimulationRuns
	}
	if req.Seed == 0 {
		req.Seed = e.now().UnixNano()
	}
	return req
}

// StartRun validates the request, then plays it in the background under
// ctx. The returned status is a snapshot taken before any game is played.
func (e *Engine) StartRun(ctx context.Context, req SimulationRequest) (*RunStatus, error) {
	req = e.normalize(req)
	setup, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	status := e.register(ctx, runID, req)

	go func() {
		if _, err := e.run(ctx, runID, req, setup); err != nil {
			e.logger.Error().Err(err).Str("run_id", runID).Msg("Simulation run failed")
		}
	}()
	return status, nil
}

// RunSimulation plays the batch synchronously and returns the aggregate
func (e *Engine) RunSimulation(ctx context.Context, runID string, req SimulationRequest) (*models.AggregatedResult, error) {
	req = e.normalize(req)
	setup, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	e.register(ctx, runID, req)
	return e.run(ctx, runID, req, setup)
}

func (e *Engine) register(ctx context.Context, runID string, req SimulationRequest) *RunStatus {
	status := &RunStatus{
		RunID:     runID,
		Season:    req.Season,
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		Seed:      req.Seed,
		TotalRuns: req.SimulationRuns,
		Status:    StatusRunning,
		StartTime: e.now(),
	}

	e.mu.Lock()
	e.activeRuns[runID] = status
	snapshot := *status
	e.mu.Unlock()
	e.runsStarted.Add(1)

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := e.store.CreateRun(storeCtx, &snapshot); err != nil {
		e.logger.Warn().Err(err).Str("run_id", runID).Msg("Failed to persist run")
	}
	return &snapshot
}

func (e *Engine) run(ctx context.Context, runID string, req SimulationRequest, setup *matchupSetup) (*models.AggregatedResult, error) {
	start := e.now()
	logger := e.logger.With().Str("run_id", runID).Logger()
	logger.Info().
		Str("season", req.Season).
		Str("home", req.HomeTeam).
		Str("away", req.AwayTeam).
		Int("simulations", req.SimulationRuns).
		Int64("seed", req.Seed).
		Str("park", setup.home.Park.Profile()).
		Str("umpire", req.Umpire.Profile()).
		Msg("Simulation run started")

	results, events, err := e.playAll(ctx, runID, req, setup)
	if err != nil {
		e.finish(runID, nil, nil, err)
		return nil, err
	}

	// results arrive in completion order
	sortResults(results)
	aggregated := Aggregate(runID, results)

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout*2)
	defer cancel()
	if err := e.store.SaveResults(storeCtx, results); err != nil {
		logger.Error().Err(err).Msg("Failed to store simulation results")
	}
	if err := e.store.SaveAggregate(storeCtx, aggregated); err != nil {
		logger.Error().Err(err).Msg("Failed to store aggregated results")
	}
	if len(events) > 0 {
		if err := e.store.SavePlayEvents(storeCtx, runID, 1, events); err != nil {
			logger.Error().Err(err).Msg("Failed to store play events")
		}
	}

	e.finish(runID, results, aggregated, nil)
	logger.Info().
		Dur("elapsed", e.now().Sub(start)).
		Float64("home_win_probability", aggregated.HomeWinProbability).
		Msg("Simulation run completed")
	return aggregated, nil
}

// playAll fans the games out over the worker pool. Each game gets its own
// seeded random source so a run is reproducible for a fixed seed.
func (e *Engine) playAll(ctx context.Context, runID string, req SimulationRequest, setup *matchupSetup) ([]models.SimulationResult, []PlayEvent, error) {
	total := req.SimulationRuns
	workers := e.cfg.Workers
	if workers > total {
		workers = total
	}

	resultsChan := make(chan models.SimulationResult, total)
	var firstEvents []PlayEvent

	g, gctx := errgroup.WithContext(ctx)

	simulationsPerWorker := total / workers
	remainder := total % workers
	next := 1

	for i := 0; i < workers; i++ {
		workerSims := simulationsPerWorker
		if i < remainder {
			workerSims++
		}
		first := next
		next += workerSims

		g.Go(func() error {
			for simNumber := first; simNumber < first+workerSims; simNumber++ {
				if err := gctx.Err(); err != nil {
					return err
				}

				cfg := e.gameConfig(req, req.KeepEvents && simNumber == 1)
				rng := rand.New(rand.NewSource(req.Seed + int64(simNumber)))
				game := NewGame(setup.home, setup.away, setup.league, req.GameNumber, rng, e.cfg.Coefficients, cfg, e.logger)

				result, err := game.Play()
				if err != nil {
					return fmt.Errorf("simulation %d: %w", simNumber, err)
				}
				if cfg.KeepEvents {
					firstEvents = result.Events
				}

				summary := result.Summary(runID, simNumber)
				summary.CreatedAt = e.now()
				e.record(summary)
				resultsChan <- summary
				e.updateProgress(ctx, runID)
			}
			return nil
		})
	}

	err := g.Wait()
	close(resultsChan)
	if err != nil {
		return nil, nil, err
	}

	results := make([]models.SimulationResult, 0, total)
	for r := range resultsChan {
		results = append(results, r)
	}
	return results, firstEvents, nil
}

func (e *Engine) record(r models.SimulationResult) {
	e.gamesSimulated.Add(1)
	e.plateAppearances.Add(int64(r.PlateAppearances))
	e.pitchingChanges.Add(int64(r.PitchingChanges))
}

// updateProgress bumps the completed count, persisting every progressEvery games
func (e *Engine) updateProgress(ctx context.Context, runID string) {
	e.mu.Lock()
	status, exists := e.activeRuns[runID]
	if !exists {
		e.mu.Unlock()
		return
	}
	status.CompletedRuns++
	completed := status.CompletedRuns
	e.mu.Unlock()

	if completed%progressEvery != 0 {
		return
	}
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := e.store.UpdateRunStatus(storeCtx, runID, StatusRunning, completed); err != nil {
		e.logger.Warn().Err(err).Str("run_id", runID).Msg("Failed to update progress")
	}
}

func (e *Engine) finish(runID string, results []models.SimulationResult, aggregated *models.AggregatedResult, runErr error) {
	state := StatusCompleted
	switch {
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		state = StatusCancelled
	case runErr != nil:
		state = StatusFailed
	}

	e.mu.Lock()
	status, exists := e.activeRuns[runID]
	completed := 0
	if exists {
		now := e.now()
		status.Status = state
		status.CompletedTime = &now
		if runErr != nil {
			status.Error = runErr.Error()
		} else {
			status.CompletedRuns = len(results)
			status.Results = results
			status.AggregatedResult = aggregated
		}
		completed = status.CompletedRuns
	}
	e.mu.Unlock()

	if runErr != nil {
		e.runsFailed.Add(1)
	} else {
		e.runsCompleted.Add(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := e.store.UpdateRunStatus(ctx, runID, state, completed); err != nil {
		e.logger.Warn().Err(err).Str("run_id", runID).Msg("Failed to update run status")
	}
}

func (e *Engine) gameConfig(req SimulationRequest, keepEvents bool) GameConfig {
	cfg := e.cfg.Game
	cfg.KeepEvents = keepEvents
	cfg.Umpire = req.Umpire
	return cfg
}

// SimulateGame plays a single game and returns the full play-by-play
func (e *Engine) SimulateGame(ctx context.Context, req SimulationRequest) (*GameResult, error) {
	req = e.normalize(req)
	setup, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	cfg := e.gameConfig(req, true)
	rng := rand.New(rand.NewSource(req.Seed))
	result, err := NewGame(setup.home, setup.away, setup.league, req.GameNumber, rng, e.cfg.Coefficients, cfg, e.logger).Play()
	if err != nil {
		return nil, err
	}
	result.KeyEvents = HighLeverageEvents(result.Events, keyEventsLimit)
	e.record(result.Summary("", 1))
	return result, nil
}

// GetRunStatus returns a snapshot of a run, falling back to the store for
// runs this process no longer remembers.
func (e *Engine) GetRunStatus(ctx context.Context, runID string) (*RunStatus, error) {
	e.mu.RLock()
	status, exists := e.activeRuns[runID]
	var snapshot RunStatus
	if exists {
		snapshot = *status
	}
	e.mu.RUnlock()

	if exists {
		snapshot.Results = nil
		snapshot.AggregatedResult = nil
		return &snapshot, nil
	}
	return e.store.GetRunStatus(ctx, runID)
}

// GetRunResult returns the completed result of a simulation run
func (e *Engine) GetRunResult(ctx context.Context, runID string) (*models.AggregatedResult, error) {
	e.mu.RLock()
	status, exists := e.activeRuns[runID]
	var aggregated *models.AggregatedResult
	var state string
	if exists {
		aggregated, state = status.AggregatedResult, status.Status
	}
	e.mu.RUnlock()

	if exists {
		if aggregated != nil {
			return aggregated, nil
		}
		return nil, fmt.Errorf("%w: run %s is %s", ErrRunNotComplete, runID, state)
	}
	return e.store.GetAggregate(ctx, runID)
}

// CleanupOldRuns removes runs started before the retention window
func (e *Engine) CleanupOldRuns() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-RunRetention)
	removed := 0
	for runID, status := range e.activeRuns {
		if status.StartTime.Before(cutoff) && status.Status != StatusRunning {
			delete(e.activeRuns, runID)
			removed++
		}
	}
	return removed
}

// StartCleanup runs CleanupOldRuns every interval until ctx is done
func (e *Engine) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := e.CleanupOldRuns(); n > 0 {
					e.logger.Debug().Int("removed", n).Msg("Cleaned up old simulation runs")
				}
			}
		}
	}()
}

// Stats returns a snapshot of the engine counters
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	active := 0
	for _, s := range e.activeRuns {
		if s.Status == StatusRunning {
			active++
		}
	}
	e.mu.RUnlock()

	return Stats{
		RunsStarted:      e.runsStarted.Load(),
		RunsCompleted:    e.runsCompleted.Load(),
		RunsFailed:       e.runsFailed.Load(),
		ActiveRuns:       active,
		GamesSimulated:   e.gamesSimulated.Load(),
		PlateAppearances: e.plateAppearances.Load(),
		PitchingChanges:  e.pitchingChanges.Load(),
	}
}

func sortResults(results []models.SimulationResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].SimulationNumber < results[j].SimulationNumber
	})
}
