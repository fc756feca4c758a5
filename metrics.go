package main

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/baseball-sim/sim-engine/season"
	"github.com/baseball-sim/sim-engine/simulation"
)

// Metrics tracks request counters for the HTTP surface
type Metrics struct {
	mu                sync.RWMutex
	requestCount      int64
	errorCount        int64
	totalResponseTime time.Duration
	startTime         time.Time
}

type MetricsResponse struct {
	System      SystemMetrics      `json:"system"`
	Application ApplicationMetrics `json:"application"`
	Simulation  simulation.Stats   `json:"simulation"`
	Cache       season.CacheStats  `json:"cache"`
	Database    *DatabaseMetrics   `json:"database,omitempty"`
	Uptime      string             `json:"uptime"`
}

type SystemMetrics struct {
	Goroutines   int    `json:"goroutines"`
	MemoryAlloc  uint64 `json:"memory_alloc_mb"`
	MemoryTotal  uint64 `json:"memory_total_mb"`
	MemorySystem uint64 `json:"memory_system_mb"`
	GCRuns       uint32 `json:"gc_runs"`
	CPUCount     int    `json:"cpu_count"`
}

type ApplicationMetrics struct {
	RequestCount        int64   `json:"request_count"`
	ErrorCount          int64   `json:"error_count"`
	ErrorRate           float64 `json:"error_rate"`
	AvgResponseTimeMs   float64 `json:"avg_response_time_ms"`
	RequestsPerSecond   float64 `json:"requests_per_second"`
	ConfiguredWorkers   int     `json:"configured_workers"`
	DefaultRunsPerBatch int     `json:"default_runs_per_batch"`
}

type DatabaseMetrics struct {
	TotalConnections    int32 `json:"total_connections"`
	IdleConnections     int32 `json:"idle_connections"`
	AcquiredConnections int32 `json:"acquired_connections"`
	MaxConnections      int32 `json:"max_connections"`
}

func newMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// Observe records one handled request; 5xx responses count as errors
func (m *Metrics) Observe(status int, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount++
	m.totalResponseTime += elapsed
	if status >= http.StatusInternalServerError {
		m.errorCount++
	}
}

func (m *Metrics) snapshot() (ApplicationMetrics, time.Duration) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uptime := time.Since(m.startTime)
	app := ApplicationMetrics{
		RequestCount: m.requestCount,
		ErrorCount:   m.errorCount,
	}
	if m.requestCount > 0 {
		app.ErrorRate = float64(m.errorCount) / float64(m.requestCount)
		app.AvgResponseTimeMs = float64(m.totalResponseTime.Milliseconds()) / float64(m.requestCount)
	}
	if secs := uptime.Seconds(); secs > 0 {
		app.RequestsPerSecond = float64(m.requestCount) / secs
	}
	return app, uptime
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	app, uptime := s.metrics.snapshot()
	app.ConfiguredWorkers = s.config.Workers
	app.DefaultRunsPerBatch = s.config.SimulationRuns

	resp := MetricsResponse{
		System: SystemMetrics{
			Goroutines:   runtime.NumGoroutine(),
			MemoryAlloc:  memStats.Alloc / 1024 / 1024,
			MemoryTotal:  memStats.TotalAlloc / 1024 / 1024,
			MemorySystem: memStats.Sys / 1024 / 1024,
			GCRuns:       memStats.NumGC,
			CPUCount:     runtime.NumCPU(),
		},
		Application: app,
		Simulation:  s.engine.Stats(),
		Cache:       s.seasons.Stats(),
		Uptime:      formatUptime(uptime),
	}

	if s.db != nil {
		stat := s.db.Stat()
		resp.Database = &DatabaseMetrics{
			TotalConnections:    stat.TotalConns(),
			IdleConnections:     stat.IdleConns(),
			AcquiredConnections: stat.AcquiredConns(),
			MaxConnections:      stat.MaxConns(),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
