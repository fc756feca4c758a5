package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/baseball-sim/sim-engine/config"
	"github.com/baseball-sim/sim-engine/logging"
	"github.com/baseball-sim/sim-engine/season"
	"github.com/baseball-sim/sim-engine/simulation"
)

const (
	maxBodyBytes         = 1 << 20
	seasonCleanupEvery   = 5 * time.Minute
	runCleanupEvery      = time.Hour
	shutdownGracePeriod  = 30 * time.Second
	healthPingTimeout    = 2 * time.Second
	databaseSetupTimeout = 10 * time.Second
)

type Server struct {
	ctx        context.Context // parent of background runs
	db         *pgxpool.Pool   // nil when persistence is disabled
	router     *mux.Router
	httpServer *http.Server
	config     *config.Config
	engine     *simulation.Engine
	seasons    *season.Cache
	metrics    *Metrics
	logger     zerolog.Logger
}

type SimulationResponse struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
}

type SimulationStatus struct {
	*simulation.RunStatus
	Progress float64 `json:"progress"`
}

func NewServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	seasons := season.NewCache(season.FileLoader{Dir: cfg.SeasonDir}, cfg.SeasonCacheTTL, season.WithLogger(logger))
	seasons.StartCleanup(ctx, seasonCleanupEvery)

	var store simulation.ResultStore = simulation.NopStore{}
	var db *pgxpool.Pool
	if cfg.DBEnabled {
		var err error
		if db, err = openDatabase(ctx, cfg); err != nil {
			return nil, err
		}
		pg := simulation.NewPostgresStore(db, logger)
		setupCtx, cancel := context.WithTimeout(ctx, databaseSetupTimeout)
		defer cancel()
		if err := pg.EnsureSchema(setupCtx); err != nil {
			db.Close()
			return nil, err
		}
		store = pg
	} else {
		logger.Info().Msg("DB_ENABLED is false, results are kept in memory only")
	}

	engine := simulation.NewEngine(seasons, store, simulation.EngineConfig{
		Workers:             cfg.Workers,
		SimulationRuns:      cfg.SimulationRuns,
		RegressionThreshold: cfg.RegressionThreshold,
		Coefficients:        cfg.Coefficients(),
		Game: simulation.GameConfig{
			MaxInnings:     cfg.MaxInnings,
			HardPitchLimit: cfg.HardPitchLimit,
		},
	}, logger)
	engine.StartCleanup(ctx, runCleanupEvery)

	s := newServer(ctx, cfg, engine, seasons, logger)
	s.db = db
	return s, nil
}

func newServer(ctx context.Context, cfg *config.Config, engine *simulation.Engine, seasons *season.Cache, logger zerolog.Logger) *Server {
	s := &Server{
		ctx:     ctx,
		config:  cfg,
		router:  mux.NewRouter(),
		engine:  engine,
		seasons: seasons,
		metrics: newMetrics(),
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

func openDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}

	dbConfig.MaxConns = int32(cfg.Workers * 2)
	dbConfig.MinConns = int32(cfg.Workers / 2)
	dbConfig.MaxConnLifetime = time.Hour
	dbConfig.MaxConnIdleTime = time.Minute * 30

	db, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, databaseSetupTimeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	s.router.HandleFunc("/simulate", s.simulateHandler).Methods("POST")
	s.router.HandleFunc("/simulate/game", s.simulateGameHandler).Methods("POST")
	s.router.HandleFunc("/simulation/{id}/status", s.simulationStatusHandler).Methods("GET")
	s.router.HandleFunc("/simulation/{id}/result", s.simulationResultHandler).Methods("GET")

	s.router.Use(s.loggingMiddleware)
}

// Handler wraps the router in recovery, compression and CORS
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
	return cors.New(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(h)
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // single games with full play-by-play
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info().
		Str("port", s.config.Port).
		Int("workers", s.config.Workers).
		Str("season_dir", s.config.SeasonDir).
		Msg("Starting Simulation Engine")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down Simulation Engine...")

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.db != nil {
		s.db.Close()
	}
	return err
}

// Handlers
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":   "healthy",
		"time":     time.Now().UTC(),
		"workers":  s.config.Workers,
		"database": "disabled",
		"seasons":  s.seasons.Len(),
	}
	code := http.StatusOK

	if s.db != nil {
		health["database"] = "connected"
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			health["database"] = "disconnected"
			health["status"] = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, health)
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (simulation.SimulationRequest, bool) {
	var req simulation.SimulationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) simulateHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	// runs outlive the request and stop with the server
	status, err := s.engine.StartRun(s.ctx, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, SimulationResponse{
		RunID:     status.RunID,
		Status:    "started",
		Message:   fmt.Sprintf("Simulation started with %d runs", status.TotalRuns),
		Seed:      status.Seed,
		CreatedAt: status.StartTime.UTC(),
	})
}

func (s *Server) simulateGameHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := s.engine.SimulateGame(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) simulationStatusHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	status, err := s.engine.GetRunStatus(r.Context(), runID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := SimulationStatus{RunStatus: status}
	if status.TotalRuns > 0 {
		resp.Progress = float64(status.CompletedRuns) / float64(status.TotalRuns)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) simulationResultHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	result, err := s.engine.GetRunResult(r.Context(), runID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeError maps domain errors onto status codes
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, simulation.ErrInvalidRequest), errors.Is(err, season.ErrInvalidSeason):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, simulation.ErrRunNotFound),
		errors.Is(err, season.ErrSeasonNotFound),
		errors.Is(err, season.ErrTeamNotFound),
		errors.Is(err, season.ErrPlayerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, simulation.ErrRunNotComplete):
		http.Error(w, "Simulation not yet complete", http.StatusAccepted)
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Middleware
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		duration := time.Since(start)
		s.metrics.Observe(lrw.statusCode, duration)
		s.logger.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Int("status", lrw.statusCode).
			Dur("duration", duration).
			Msg("Request handled")
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// recoveryLogger routes recovered panics to zerolog
type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := NewServer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create server")
	}

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server shutdown failed")
	}
	logger.Info().Msg("Server shutdown complete")
}
