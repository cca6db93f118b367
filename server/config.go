package server

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the backend server configuration.
//
// Values load from environment variables, optionally layered over a YAML
// file. Environment variables win.
type Config struct {
	// Addr is the listen address.
	Addr string `env:"ABTEST_ADDR" envDefault:":8080" yaml:"addr"`

	// DatabasePath is the SQLite database location.
	DatabasePath string `env:"ABTEST_DB_PATH" envDefault:"abtest.db" yaml:"databasePath"`

	// ShutdownTimeout bounds graceful shutdown on termination.
	ShutdownTimeout time.Duration `env:"ABTEST_SHUTDOWN_TIMEOUT" envDefault:"10s" yaml:"shutdownTimeout"`

	// MetricsAddr exposes Prometheus metrics when non-empty.
	MetricsAddr string `env:"ABTEST_METRICS_ADDR" yaml:"metricsAddr"`

	// Debug enables verbose request logging.
	Debug bool `env:"ABTEST_DEBUG" yaml:"debug"`
}

// LoadConfig builds the configuration from an optional YAML file and the
// environment. An empty path skips the file layer.
//
// Parameters:
//   - path: YAML config file path, "" for environment only
//
// Returns:
//   - Config: Parsed configuration
//   - error: File read, YAML, or env parse failure
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}
