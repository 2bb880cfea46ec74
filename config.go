package gecco

import (
	"fmt"
	"time"
)

// Config is the configuration for a Corrector.
//
// All duration fields accept standard Go duration strings like "30s", "5m"
// when unmarshaled from YAML.
type Config struct {
	// Workers is the number of worker goroutines draining the dispatch
	// queue during a run. Each worker owns private clients to the remote
	// endpoints it talks to.
	// Recommended: number of CPU cores for local-heavy pipelines, higher
	// for remote-heavy pipelines since workers block on network I/O.
	Workers int `yaml:"workers"`

	// MinPollInterval is the minimum time between load polls of the same
	// module-server endpoint. Cached load samples younger than this are
	// reused, amortizing poll cost across runs.
	// Recommended: tens of seconds.
	MinPollInterval time.Duration `yaml:"minPollInterval"`

	// PollTimeout bounds one load poll round trip. An endpoint that does
	// not answer within it is excluded until its next poll window.
	// Recommended: 2 seconds.
	PollTimeout time.Duration `yaml:"pollTimeout"`

	// DialTimeout bounds connection establishment to a module server.
	// Recommended: 5 seconds.
	DialTimeout time.Duration `yaml:"dialTimeout"`

	// RequestTimeout bounds one module request/response round trip,
	// including model-heavy server-side work.
	// Recommended: 30 seconds.
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Workers:         4,
		MinPollInterval: 30 * time.Second,
		PollTimeout:     2 * time.Second,
		DialTimeout:     5 * time.Second,
		RequestTimeout:  30 * time.Second,
	}
}

// SetDefaults fills in missing configuration values with production
// defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Workers == 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.MinPollInterval == 0 {
		cfg.MinPollInterval = defaults.MinPollInterval
	}
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = defaults.PollTimeout
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaults.DialTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
}

// Validate checks configuration constraints and returns an error for
// invalid values.
//
// Hard Validation Rules:
//   - Workers >= 1
//   - MinPollInterval > 0
//   - 0 < PollTimeout <= MinPollInterval
//   - DialTimeout > 0
//   - RequestTimeout > 0
//
// Returns:
//   - error: Validation error with a clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d",
			ErrInvalidConfig, cfg.Workers)
	}
	if cfg.MinPollInterval <= 0 {
		return fmt.Errorf("%w: minPollInterval must be positive, got %v",
			ErrInvalidConfig, cfg.MinPollInterval)
	}
	if cfg.PollTimeout <= 0 {
		return fmt.Errorf("%w: pollTimeout must be positive, got %v",
			ErrInvalidConfig, cfg.PollTimeout)
	}
	if cfg.PollTimeout > cfg.MinPollInterval {
		return fmt.Errorf("%w: pollTimeout (%v) must not exceed minPollInterval (%v)",
			ErrInvalidConfig, cfg.PollTimeout, cfg.MinPollInterval)
	}
	if cfg.DialTimeout <= 0 {
		return fmt.Errorf("%w: dialTimeout must be positive, got %v",
			ErrInvalidConfig, cfg.DialTimeout)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("%w: requestTimeout must be positive, got %v",
			ErrInvalidConfig, cfg.RequestTimeout)
	}

	return nil
}

// ValidateWithWarnings performs Validate and additionally logs warnings
// for values that are legal but likely misconfigured.
//
// Parameters:
//   - logger: Logger warnings are written to
//
// Returns:
//   - error: Validation error from the hard rules, nil if valid
func (cfg *Config) ValidateWithWarnings(logger Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Workers > 64 {
		logger.Warn("workers is unusually high; remote module servers may be overwhelmed",
			"workers", cfg.Workers)
	}
	if cfg.MinPollInterval < time.Second {
		logger.Warn("minPollInterval below 1s defeats load-poll caching",
			"minPollInterval", cfg.MinPollInterval)
	}
	if cfg.RequestTimeout < cfg.DialTimeout {
		logger.Warn("requestTimeout is shorter than dialTimeout; first requests may never succeed",
			"requestTimeout", cfg.RequestTimeout, "dialTimeout", cfg.DialTimeout)
	}

	return nil
}

// TestConfig returns a Config with fast timings for tests.
//
// Returns:
//   - Config: Configuration suitable for fast test execution
func TestConfig() Config {
	return Config{
		Workers:         2,
		MinPollInterval: 50 * time.Millisecond,
		PollTimeout:     25 * time.Millisecond,
		DialTimeout:     time.Second,
		RequestTimeout:  2 * time.Second,
	}
}
