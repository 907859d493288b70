package config

import (
	"github.com/devplan/devplan/internal/errors"
)

// validLogLevels are the accepted log.level values.
var validLogLevels = map[string]bool{ //nolint:gochecknoglobals // Read-only lookup table
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - Gen timeout must be positive, max retries between 0 and 10
//   - GitHub timeouts must be positive
//   - Cache backend must be "memory" or "redis"; redis requires an address
//   - Follow-up interval must be positive
//   - Log level must be debug, info, warn, or error
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if err := validateGenConfig(&cfg.Gen); err != nil {
		return err
	}
	if err := validateGitHubConfig(&cfg.GitHub); err != nil {
		return err
	}
	if err := validateCacheConfig(&cfg.Cache); err != nil {
		return err
	}
	if cfg.FollowUp.Interval <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"followup.interval must be positive, got %s", cfg.FollowUp.Interval)
	}
	if cfg.Log.Level != "" && !validLogLevels[cfg.Log.Level] {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"log.level must be debug, info, warn, or error, got %q", cfg.Log.Level)
	}
	return nil
}

func validateGenConfig(cfg *GenConfig) error {
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"gen.timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.MaxRetries < 0 || cfg.MaxRetries > 10 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"gen.max_retries must be between 0 and 10, got %d", cfg.MaxRetries)
	}
	return nil
}

func validateGitHubConfig(cfg *GitHubConfig) error {
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"github.timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.SearchTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"github.search_timeout must be positive, got %s", cfg.SearchTimeout)
	}
	return nil
}

func validateCacheConfig(cfg *CacheConfig) error {
	switch cfg.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if cfg.RedisAddr == "" {
			return errors.Wrap(errors.ErrConfigInvalid,
				"cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.Wrapf(errors.ErrConfigInvalid,
			"cache.backend must be %q or %q, got %q", CacheBackendMemory, CacheBackendRedis, cfg.Backend)
	}
	return nil
}
