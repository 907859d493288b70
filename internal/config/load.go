package config

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/devplan/devplan/internal/constants"
	"github.com/devplan/devplan/internal/errors"
)

// newViperInstance creates a Viper instance with the standard devplan
// configuration: environment prefix (DEVPLAN_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DEVPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file
// not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// Load reads configuration from all available sources with proper
// precedence. Missing config files are expected and not an error; only
// unreadable or invalid configuration fails.
func Load() (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}
	return unmarshalAndValidate(v)
}

// LoadWithOverrides loads configuration and applies CLI flag overrides,
// which have the highest precedence. Only non-zero override values are
// applied.
//
// Boolean fields cannot be overridden to false here because the zero value
// is indistinguishable from "not set"; the CLI handles changed bool flags
// directly.
func LoadWithOverrides(overrides *Config) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		applyOverrides(cfg, overrides)
	}
	if err = Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// Either path can be empty to skip that level; projectConfigPath has the
// higher precedence.
func LoadFromPaths(projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}
	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}
	return unmarshalAndValidate(v)
}

// loadGlobalConfig attempts to load ~/.devplan/config.yaml.
// Skips silently when the file doesn't exist or the home directory cannot
// be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// getGlobalConfigPathIfExists returns the global config path if it exists.
func getGlobalConfigPathIfExists() (string, bool) {
	globalPath, err := GlobalConfigPath()
	if err != nil {
		return "", false
	}
	if _, err = os.Stat(globalPath); err != nil {
		return "", false
	}
	return globalPath, true
}

// loadProjectConfig attempts to load .devplan/config.yaml from the current
// directory. Skips silently when the file doesn't exist.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if _, err := os.Stat(projectConfigPath); err != nil {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// unmarshalAndValidate unmarshals viper config into Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// viperDecoderOption configures mapstructure to convert duration strings
// like "60s" into time.Duration.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

// setDefaults configures all default values on the Viper instance.
// These defaults match the values from DefaultConfig().
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	// Gen defaults
	v.SetDefault("gen.api_key", "")
	v.SetDefault("gen.model", constants.DefaultModel)
	v.SetDefault("gen.timeout", constants.DefaultGenTimeout.String())
	v.SetDefault("gen.max_retries", constants.MaxRetryAttempts)

	// GitHub defaults
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("github.timeout", constants.DefaultHostTimeout.String())
	v.SetDefault("github.search_timeout", constants.DefaultSearchTimeout.String())

	// Cache defaults
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.prefix", "devplan:")

	// Roster defaults
	v.SetDefault("roster.path", "")

	// FollowUp defaults
	v.SetDefault("followup.interval", constants.FollowUpInterval.String())
	v.SetDefault("followup.bell", true)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", true)
}

// applyOverrides merges non-zero override values into the config.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Gen.APIKey != "" {
		cfg.Gen.APIKey = overrides.Gen.APIKey
	}
	if overrides.Gen.Model != "" {
		cfg.Gen.Model = overrides.Gen.Model
	}
	if overrides.Gen.Timeout != 0 {
		cfg.Gen.Timeout = overrides.Gen.Timeout
	}
	if overrides.Gen.MaxRetries != 0 {
		cfg.Gen.MaxRetries = overrides.Gen.MaxRetries
	}

	if overrides.GitHub.Token != "" {
		cfg.GitHub.Token = overrides.GitHub.Token
	}
	if overrides.GitHub.BaseURL != "" {
		cfg.GitHub.BaseURL = overrides.GitHub.BaseURL
	}
	if overrides.GitHub.Timeout != 0 {
		cfg.GitHub.Timeout = overrides.GitHub.Timeout
	}
	if overrides.GitHub.SearchTimeout != 0 {
		cfg.GitHub.SearchTimeout = overrides.GitHub.SearchTimeout
	}

	if overrides.Cache.Backend != "" {
		cfg.Cache.Backend = overrides.Cache.Backend
	}
	if overrides.Cache.RedisAddr != "" {
		cfg.Cache.RedisAddr = overrides.Cache.RedisAddr
	}
	if overrides.Cache.Prefix != "" {
		cfg.Cache.Prefix = overrides.Cache.Prefix
	}

	if overrides.Roster.Path != "" {
		cfg.Roster.Path = overrides.Roster.Path
	}
	if overrides.FollowUp.Interval != 0 {
		cfg.FollowUp.Interval = overrides.FollowUp.Interval
	}
	// Bell is a bool - we can't distinguish false from unset, so the CLI
	// applies changed bell flags directly.
	if overrides.Log.Level != "" {
		cfg.Log.Level = overrides.Log.Level
	}
}
