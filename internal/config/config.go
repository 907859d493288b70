// Package config provides configuration management for devplan with layered
// precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (DEVPLAN_* prefix)
//  3. Project config (.devplan/config.yaml)
//  4. Global config (~/.devplan/config.yaml)
//  5. Built-in defaults
//
// Each higher level overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import (
	"time"

	"github.com/devplan/devplan/internal/constants"
)

// Config is the root configuration structure for devplan.
type Config struct {
	// Gen contains settings for the text-generation service.
	Gen GenConfig `yaml:"gen" mapstructure:"gen"`

	// GitHub contains settings for the repository host.
	GitHub GitHubConfig `yaml:"github" mapstructure:"github"`

	// Cache contains settings for the repository-context cache.
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// Roster contains settings for the team roster.
	Roster RosterConfig `yaml:"roster" mapstructure:"roster"`

	// FollowUp contains settings for clarification follow-up reminders.
	FollowUp FollowUpConfig `yaml:"followup" mapstructure:"followup"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// GenConfig contains settings for the text-generation service.
type GenConfig struct {
	// APIKey authenticates against the generation service.
	// Usually supplied via DEVPLAN_GEN_API_KEY rather than the config file.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Model is the model identifier.
	// Default: "gemini-2.0-flash-exp"
	Model string `yaml:"model" mapstructure:"model"`

	// Timeout is the maximum duration for a single generation call.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries bounds transient-failure retries per generation call.
	// Default: 3, Valid range: 0-10
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
}

// GitHubConfig contains settings for the repository host.
type GitHubConfig struct {
	// Token is the API token. Usually supplied via DEVPLAN_GITHUB_TOKEN.
	Token string `yaml:"token" mapstructure:"token"`

	// BaseURL overrides the API base URL, for GitHub Enterprise.
	// Default: "" (api.github.com)
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds tree and file fetches.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// SearchTimeout bounds code-search requests.
	// Default: 30s
	SearchTimeout time.Duration `yaml:"search_timeout" mapstructure:"search_timeout"`
}

// Cache backend names.
const (
	// CacheBackendMemory keeps contexts in process memory.
	CacheBackendMemory = "memory"

	// CacheBackendRedis keeps contexts in Redis so they survive restarts
	// and are shared across devplan processes.
	CacheBackendRedis = "redis"
)

// CacheConfig contains settings for the repository-context cache.
type CacheConfig struct {
	// Backend selects the cache implementation: "memory" or "redis".
	// Default: "memory"
	Backend string `yaml:"backend" mapstructure:"backend"`

	// RedisAddr is the host:port of the Redis server.
	// Default: "localhost:6379"
	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr"`

	// Prefix namespaces devplan keys in a shared Redis.
	// Default: "devplan:"
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

// RosterConfig contains settings for the team roster.
type RosterConfig struct {
	// Path is the roster YAML file location. Empty disables matching;
	// every subtask is then left unassigned.
	Path string `yaml:"path" mapstructure:"path"`
}

// FollowUpConfig contains settings for clarification follow-up reminders.
type FollowUpConfig struct {
	// Interval is the sweep interval for the follow-up scheduler.
	// Default: 2m
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Bell precedes each reminder with a terminal bell.
	// Default: true
	Bell bool `yaml:"bell" mapstructure:"bell"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	// Default: "info"
	Level string `yaml:"level" mapstructure:"level"`

	// File enables logging to ~/.devplan/logs in addition to stderr.
	// Default: true
	File bool `yaml:"file" mapstructure:"file"`
}

// DefaultConfig returns the built-in defaults. Values must stay in sync
// with setDefaults in load.go.
func DefaultConfig() *Config {
	return &Config{
		Gen: GenConfig{
			Model:      constants.DefaultModel,
			Timeout:    constants.DefaultGenTimeout,
			MaxRetries: constants.MaxRetryAttempts,
		},
		GitHub: GitHubConfig{
			Timeout:       constants.DefaultHostTimeout,
			SearchTimeout: constants.DefaultSearchTimeout,
		},
		Cache: CacheConfig{
			Backend:   CacheBackendMemory,
			RedisAddr: "localhost:6379",
			Prefix:    "devplan:",
		},
		FollowUp: FollowUpConfig{
			Interval: constants.FollowUpInterval,
			Bell:     true,
		},
		Log: LogConfig{
			Level: "info",
			File:  true,
		},
	}
}
