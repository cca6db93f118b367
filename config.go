package abtest

import (
	"fmt"
	"time"
)

// Config is the configuration for the Manager.
//
// All duration fields accept standard Go duration strings like "30s", "5m",
// "720h" when loaded from YAML.
type Config struct {
	// BaseURL is the assignment backend base URL, e.g. "http://abtest:8080".
	// Empty disables the backend: resolutions use caches and sampling only.
	BaseURL string `yaml:"baseUrl"`

	// RequestTimeout bounds each backend HTTP request.
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	// CookieTTL is the lifetime of cookie-tier entries. The durable tier
	// never expires regardless of this value.
	CookieTTL time.Duration `yaml:"cookieTtl"`

	// FallbackVariant is served when resolution fails and NoFallback is
	// false. It does not need to exist in the experiment's variant list.
	FallbackVariant string `yaml:"fallbackVariant"`

	// NoFallback disables fallback substitution: resolution failures surface
	// as errors instead of the FallbackVariant.
	NoFallback bool `yaml:"noFallback"`

	// Seed shuffles deterministic hashed sampling. Ignored unless a hashed
	// random source is configured.
	Seed uint64 `yaml:"seed"`

	// Debug enables verbose resolution logging.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns a Config with production defaults.
//
// Returns:
//   - Config: Configuration with sensible production values
func DefaultConfig() Config {
	return Config{
		RequestTimeout:  5 * time.Second,
		CookieTTL:       30 * 24 * time.Hour,
		FallbackVariant: "control",
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.CookieTTL == 0 {
		cfg.CookieTTL = defaults.CookieTTL
	}
	if cfg.FallbackVariant == "" && !cfg.NoFallback {
		cfg.FallbackVariant = defaults.FallbackVariant
	}
	// Note: BaseURL of "" is valid (backend disabled), so no default applies.
}

// Validate checks configuration constraints and returns an error for invalid
// values.
//
// Hard validation rules:
//   - RequestTimeout > 0 (backend calls must be bounded)
//   - CookieTTL >= 0 (negative lifetimes are meaningless)
//   - FallbackVariant non-empty unless NoFallback is set
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("%w: RequestTimeout must be > 0, got %v", ErrInvalidConfig, cfg.RequestTimeout)
	}

	if cfg.CookieTTL < 0 {
		return fmt.Errorf("%w: CookieTTL must be >= 0, got %v", ErrInvalidConfig, cfg.CookieTTL)
	}

	if !cfg.NoFallback && cfg.FallbackVariant == "" {
		return fmt.Errorf("%w: FallbackVariant must be set unless NoFallback is enabled", ErrInvalidConfig)
	}

	return nil
}

// TestConfig returns a Config optimized for fast test execution.
//
// Returns:
//   - Config: Configuration with short timeouts for tests
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.RequestTimeout = 500 * time.Millisecond
	cfg.CookieTTL = time.Minute

	return cfg
}
