package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Health    HealthConfig    `yaml:"health"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// SimulatorConfig holds the occupancy sample generator configuration.
type SimulatorConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	RoomPoolSize    int           `yaml:"room_pool_size"`
	BatchSize       int           `yaml:"batch_size"`
	LevelMean       float64       `yaml:"level_mean"`
	LevelStdDev     float64       `yaml:"level_std_dev"`
}

// HealthConfig holds the health monitor configuration.
type HealthConfig struct {
	APIBase         string        `yaml:"api_base"`
	TimeoutSeconds  int           `yaml:"timeout_seconds"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
	CSVPath         string        `yaml:"csv_path"`
	WindowMinutes   int           `yaml:"window_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}

	if cfg.Simulator.IntervalSeconds <= 0 {
		cfg.Simulator.IntervalSeconds = 4
	}
	cfg.Simulator.Interval = time.Duration(cfg.Simulator.IntervalSeconds) * time.Second

	if cfg.Simulator.RoomPoolSize <= 0 {
		cfg.Simulator.RoomPoolSize = 200
	}
	if cfg.Simulator.BatchSize <= 0 {
		cfg.Simulator.BatchSize = 10
	}
	if cfg.Simulator.LevelMean == 0 {
		cfg.Simulator.LevelMean = 10
	}
	if cfg.Simulator.LevelStdDev == 0 {
		cfg.Simulator.LevelStdDev = 20
	}

	if cfg.Health.TimeoutSeconds <= 0 {
		cfg.Health.TimeoutSeconds = 3
	}
	if cfg.Health.IntervalSeconds <= 0 {
		cfg.Health.IntervalSeconds = 30
	}
	cfg.Health.Interval = time.Duration(cfg.Health.IntervalSeconds) * time.Second

	if cfg.Health.CSVPath == "" {
		cfg.Health.CSVPath = "./data/backend_health.csv"
	}
	if cfg.Health.WindowMinutes <= 0 {
		cfg.Health.WindowMinutes = 60
	}
	if cfg.Health.APIBase == "" {
		log.Printf("health.api_base is not set; defaulting to http://localhost:%d", cfg.Server.Port)
		cfg.Health.APIBase = "http://localhost:8000"
	}

	return &cfg, nil
}
