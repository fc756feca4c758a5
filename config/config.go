// Package config loads the service configuration from the environment
package config

import (
	"fmt"
	"net"
	"net/url"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/baseball-sim/sim-engine/matchup"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8081"`

	DBEnabled  bool   `env:"DB_ENABLED" envDefault:"false"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"baseball_user"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"baseball_pass"`
	DBName     string `env:"DB_NAME" envDefault:"baseball_sim"`

	Workers        int `env:"WORKERS" envDefault:"0"`
	SimulationRuns int `env:"SIMULATION_RUNS" envDefault:"1000"`

	SeasonDir      string        `env:"SEASON_DIR" envDefault:"./seasons"`
	SeasonCacheTTL time.Duration `env:"SEASON_CACHE_TTL" envDefault:"30m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	MaxInnings          int `env:"MAX_INNINGS" envDefault:"18"`
	RegressionThreshold int `env:"REGRESSION_THRESHOLD" envDefault:"200"`
	HardPitchLimit      int `env:"HARD_PITCH_LIMIT" envDefault:"110"`

	BatterExponent  float64 `env:"MODEL_BATTER_EXPONENT" envDefault:"1"`
	PitcherExponent float64 `env:"MODEL_PITCHER_EXPONENT" envDefault:"1"`
	LeagueExponent  float64 `env:"MODEL_LEAGUE_EXPONENT" envDefault:"-1"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load parses the environment into a Config
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.SimulationRuns <= 0 {
		return nil, fmt.Errorf("SIMULATION_RUNS must be positive, got %d", cfg.SimulationRuns)
	}
	if cfg.MaxInnings < 9 {
		return nil, fmt.Errorf("MAX_INNINGS must be at least 9, got %d", cfg.MaxInnings)
	}
	return &cfg, nil
}

// DatabaseURL builds the postgres connection string
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	return u.String()
}

// Coefficients returns the matchup model exponents
func (c *Config) Coefficients() matchup.Coefficients {
	return matchup.Coefficients{
		Batter:  c.BatterExponent,
		Pitcher: c.PitcherExponent,
		League:  c.LeagueExponent,
	}
}
