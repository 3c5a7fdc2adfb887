package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the recipe catalog configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Import   ImportConfig   `yaml:"import"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	BasePath        string   `yaml:"base_path"`
	QueryTimeout    string   `yaml:"query_timeout"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins"` // "*" allows any origin
}

// DatabaseConfig configures the recipe store.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // postgres, sqlite
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// ImportConfig configures the import command.
type ImportConfig struct {
	Path      string `yaml:"path"`
	BatchSize int    `yaml:"batch_size"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3001",
			BasePath:        "/api",
			QueryTimeout:    "5s",
			ShutdownTimeout: "10s",
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			URL:          "postgres://localhost:5432/recipes?sslmode=disable",
			MaxOpenConns: 10,
		},
		Import: ImportConfig{
			Path:      "data/recipes.json",
			BatchSize: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// variables from a .env file in the working directory and the environment.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
	}
	if v := os.Getenv("IMPORT_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IMPORT_BATCH_SIZE %q: %w", v, err)
		}
		c.Import.BatchSize = n
	}
	return nil
}

// maxBatchSize keeps a batch under the bind parameter limits of both drivers.
const maxBatchSize = 1000

// Validate checks the configuration for values the binaries cannot run with.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Import.BatchSize < 1 || c.Import.BatchSize > maxBatchSize {
		return fmt.Errorf("import.batch_size must be between 1 and %d, got %d", maxBatchSize, c.Import.BatchSize)
	}
	if _, err := time.ParseDuration(c.Server.QueryTimeout); err != nil {
		return fmt.Errorf("invalid server.query_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid server.shutdown_timeout: %w", err)
	}
	return nil
}

// GetQueryTimeout returns the per-request store timeout.
func (c *Config) GetQueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.QueryTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetShutdownTimeout returns how long the server waits for in-flight requests.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
