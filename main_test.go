package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baseball-sim/sim-engine/config"
	"github.com/baseball-sim/sim-engine/matchup"
	"github.com/baseball-sim/sim-engine/models"
	"github.com/baseball-sim/sim-engine/season"
	"github.com/baseball-sim/sim-engine/simulation"
)

func newTestServer(t *testing.T, ctx context.Context) *Server {
	t.Helper()
	cfg := &config.Config{
		Port:           "0",
		Workers:        2,
		SimulationRuns: 10,
		MaxInnings:     15,
		CORSOrigins:    []string{"*"},
	}
	seasons := season.NewCache(season.FileLoader{Dir: "season/testdata"}, time.Minute)
	engine := simulation.NewEngine(seasons, nil, simulation.EngineConfig{
		Workers:             cfg.Workers,
		SimulationRuns:      cfg.SimulationRuns,
		RegressionThreshold: matchup.DefaultRegressionThreshold,
		Coefficients:        matchup.DefaultCoefficients(),
		Game:                simulation.GameConfig{MaxInnings: cfg.MaxInnings},
	}, zerolog.Nop())
	return newServer(ctx, cfg, engine, seasons, zerolog.Nop())
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

const validBody = `{"season":"2024","home_team":"PDX","away_team":"AUS","simulation_runs":8,"seed":7}`

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t, context.Background())

	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disabled", body["database"])
	assert.EqualValues(t, 2, body["workers"])
}

func TestSimulateLifecycle(t *testing.T) {
	s := newTestServer(t, context.Background())

	rec := do(t, s, http.MethodPost, "/simulate", validBody)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var started SimulationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	require.NotEmpty(t, started.RunID)
	assert.Equal(t, "started", started.Status)
	assert.Equal(t, int64(7), started.Seed)

	require.Eventually(t, func() bool {
		rec := do(t, s, http.MethodGet, "/simulation/"+started.RunID+"/status", "")
		if rec.Code != http.StatusOK {
			return false
		}
		var status struct {
			Status   string  `json:"status"`
			Progress float64 `json:"progress"`
		}
		return json.Unmarshal(rec.Body.Bytes(), &status) == nil &&
			status.Status == simulation.StatusCompleted && status.Progress == 1
	}, 10*time.Second, 10*time.Millisecond)

	rec = do(t, s, http.MethodGet, "/simulation/"+started.RunID+"/result", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var agg models.AggregatedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agg))
	assert.Equal(t, started.RunID, agg.RunID)
	assert.Equal(t, 8, agg.TotalSimulations)
	assert.Equal(t, 8, agg.HomeWins+agg.AwayWins+agg.Ties)
}

func TestResultOfUnfinishedRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newTestServer(t, ctx)
	_, err := s.seasons.Get(context.Background(), "2024")
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/simulate", validBody)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var started SimulationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))

	require.Eventually(t, func() bool {
		status, err := s.engine.GetRunStatus(context.Background(), started.RunID)
		return err == nil && status.Status == simulation.StatusCancelled
	}, 10*time.Second, 10*time.Millisecond)

	rec = do(t, s, http.MethodGet, "/simulation/"+started.RunID+"/result", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestSimulateGameHandler(t *testing.T) {
	s := newTestServer(t, context.Background())

	rec := do(t, s, http.MethodPost, "/simulate/game", validBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var game simulation.GameResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &game))
	assert.Equal(t, "PDX", game.HomeTeamID)
	assert.Equal(t, "AUS", game.AwayTeamID)
	assert.NotEmpty(t, game.Events)
	assert.Equal(t, game.HomeScore, game.Box.Home.Runs)
	assert.Equal(t, game.AwayScore, game.Box.Away.Runs)
}

func TestHandlerErrors(t *testing.T) {
	s := newTestServer(t, context.Background())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed body", http.MethodPost, "/simulate", `{"season":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/simulate", `{"season":"2024","umpire":"x"}`, http.StatusBadRequest},
		{"same team", http.MethodPost, "/simulate", `{"season":"2024","home_team":"PDX","away_team":"PDX"}`, http.StatusBadRequest},
		{"bad season name", http.MethodPost, "/simulate/game", `{"season":"../etc","home_team":"PDX","away_team":"AUS"}`, http.StatusBadRequest},
		{"unknown season", http.MethodPost, "/simulate", `{"season":"1901","home_team":"PDX","away_team":"AUS"}`, http.StatusNotFound},
		{"unknown team", http.MethodPost, "/simulate/game", `{"season":"2024","home_team":"PDX","away_team":"NYC"}`, http.StatusNotFound},
		{"unknown run status", http.MethodGet, "/simulation/nope/status", "", http.StatusNotFound},
		{"unknown run result", http.MethodGet, "/simulation/nope/result", "", http.StatusNotFound},
		{"wrong method", http.MethodGet, "/simulate", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	s := newTestServer(t, context.Background())

	do(t, s, http.MethodGet, "/health", "")
	do(t, s, http.MethodPost, "/simulate/game", validBody)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Application.RequestCount, "metrics request is counted after it responds")
	assert.Zero(t, resp.Application.ErrorCount)
	assert.Equal(t, 2, resp.Application.ConfiguredWorkers)
	assert.Equal(t, int64(1), resp.Simulation.GamesSimulated)
	assert.Equal(t, int64(1), resp.Cache.Misses)
	assert.Equal(t, 1, resp.Cache.Entries)
	assert.Nil(t, resp.Database)
	assert.Positive(t, resp.System.Goroutines)
}

func TestMetricsObserve(t *testing.T) {
	m := newMetrics()
	m.Observe(http.StatusOK, 10*time.Millisecond)
	m.Observe(http.StatusNotFound, 20*time.Millisecond)
	m.Observe(http.StatusInternalServerError, 30*time.Millisecond)

	app, _ := m.snapshot()
	assert.Equal(t, int64(3), app.RequestCount)
	assert.Equal(t, int64(1), app.ErrorCount)
	assert.InDelta(t, 1.0/3, app.ErrorRate, 1e-9)
	assert.InDelta(t, 20, app.AvgResponseTimeMs, 1e-9)
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"seconds", 42 * time.Second, "42s"},
		{"minutes", 3*time.Minute + 5*time.Second, "3m 5s"},
		{"hours", 2*time.Hour + 1*time.Minute, "2h 1m 0s"},
		{"days", 49*time.Hour + 30*time.Second, "2d 1h 0m 30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatUptime(tt.d))
		})
	}
}
