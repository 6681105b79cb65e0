// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database. Optional outside production: an empty URL runs the server
	// on in-memory repositories.
	DatabaseURL string `koanf:"database_url"`

	// Redis. Optional: an empty URL runs the server without a feed cache.
	RedisURL string `koanf:"redis_url"`

	// Feed cache
	CacheTTLHours int `koanf:"cache_ttl_hours"` // Default: 168 (7 days)
	FeedPageSize  int `koanf:"feed_page_size"`  // Default: 20

	// Score calibration file (JSON). Empty means built-in defaults.
	ScoreCalibrationPath string `koanf:"score_calibration_path"`

	// Recompute worker
	RecomputeIntervalSeconds int `koanf:"recompute_interval_seconds"` // Default: 5
	RecomputeDelaySeconds    int `koanf:"recompute_delay_seconds"`    // Default: 5

	// Periodic hot score refresh (cron spec). Hot scores decay with age,
	// so quiet papers need a sweep even without new activity.
	HotRefreshCron string `koanf:"hot_refresh_cron"` // Default: "*/10 * * * *"

	// Tracing
	TracingEnabled    bool    `koanf:"tracing_enabled"`
	TracingEndpoint   string  `koanf:"tracing_endpoint"`
	TracingSampleRate float64 `koanf:"tracing_sample_rate"` // Default: 0.1

	// CORS. Empty means same-origin only; the CORS middleware is not
	// installed and cross-origin browsers are refused by omission.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required in production")
	ErrInvalidPort        = errors.New("PORT must be a valid integer")
	ErrInvalidCacheTTL    = errors.New("CACHE_TTL_HOURS must be positive")
	ErrInvalidPageSize    = errors.New("FEED_PAGE_SIZE must be positive")
	ErrInvalidSampleRate  = errors.New("TRACING_SAMPLE_RATE must be between 0 and 1")
)

// Default values for non-secret configuration.
const (
	DefaultPort              = 8080
	DefaultEnv               = "development"
	DefaultCacheTTLHours     = 168
	DefaultFeedPageSize      = 20
	DefaultRecomputeInterval = 5
	DefaultRecomputeDelay    = 5
	DefaultHotRefreshCron    = "*/10 * * * *"
	DefaultTracingSampleRate = 0.1
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Try PAPERHUB_PORT first, then PORT for backward compatibility
	port, portErr := getEnvIntOrDefaultMulti([]string{"PAPERHUB_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	cacheTTL, ttlErr := getEnvIntOrDefault("CACHE_TTL_HOURS", k.Int("cache_ttl_hours"), DefaultCacheTTLHours)
	if ttlErr != nil {
		loadErrs = append(loadErrs, ttlErr)
	}

	pageSize, pageSizeErr := getEnvIntOrDefault("FEED_PAGE_SIZE", k.Int("feed_page_size"), DefaultFeedPageSize)
	if pageSizeErr != nil {
		loadErrs = append(loadErrs, pageSizeErr)
	}

	recomputeInterval, intervalErr := getEnvIntOrDefault("RECOMPUTE_INTERVAL_SECONDS", k.Int("recompute_interval_seconds"), DefaultRecomputeInterval)
	if intervalErr != nil {
		loadErrs = append(loadErrs, intervalErr)
	}

	recomputeDelay, delayErr := getEnvIntOrDefault("RECOMPUTE_DELAY_SECONDS", k.Int("recompute_delay_seconds"), DefaultRecomputeDelay)
	if delayErr != nil {
		loadErrs = append(loadErrs, delayErr)
	}

	sampleRate, rateErr := getEnvFloatOrDefault("TRACING_SAMPLE_RATE", k.Float64("tracing_sample_rate"), DefaultTracingSampleRate)
	if rateErr != nil {
		loadErrs = append(loadErrs, rateErr)
	}

	tracingEnabled := k.Bool("tracing_enabled")
	if val := os.Getenv("TRACING_ENABLED"); val != "" {
		tracingEnabled = val == "true" || val == "1" || val == "yes" || val == "on"
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:                     port,
		Env:                      getEnvOrDefaultMulti([]string{"PAPERHUB_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DatabaseURL:              getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:                 getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		CacheTTLHours:            cacheTTL,
		FeedPageSize:             pageSize,
		ScoreCalibrationPath:     getEnvOrKoanf("SCORE_CALIBRATION_PATH", k, "score_calibration_path"),
		RecomputeIntervalSeconds: recomputeInterval,
		RecomputeDelaySeconds:    recomputeDelay,
		HotRefreshCron:           getEnvOrDefault("HOT_REFRESH_CRON", k.String("hot_refresh_cron"), DefaultHotRefreshCron),
		TracingEnabled:           tracingEnabled,
		TracingEndpoint:          getEnvOrKoanf("TRACING_ENDPOINT", k, "tracing_endpoint"),
		TracingSampleRate:        sampleRate,
		CORSAllowedOrigins:       getEnvListOrKoanf("CORS_ALLOWED_ORIGINS", k, "cors_allowed_origins"),
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvListOrKoanf returns the environment variable split on commas if set,
// otherwise the koanf string slice. Blank entries are dropped.
func getEnvListOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) []string {
	if val := os.Getenv(envKey); val != "" {
		var out []string
		for _, item := range strings.Split(val, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	return k.Strings(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as a float.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.DatabaseURL == "" && c.Env == "production" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.CacheTTLHours <= 0 {
		errs = append(errs, ErrInvalidCacheTTL)
	}
	if c.FeedPageSize <= 0 {
		errs = append(errs, ErrInvalidPageSize)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		errs = append(errs, ErrInvalidSampleRate)
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                       fmt.Sprintf("%d", c.Port),
		"env":                        c.Env,
		"database_url":               maskURL(c.DatabaseURL),
		"redis_url":                  maskURL(c.RedisURL),
		"cache_ttl_hours":            fmt.Sprintf("%d", c.CacheTTLHours),
		"feed_page_size":             fmt.Sprintf("%d", c.FeedPageSize),
		"score_calibration_path":     c.ScoreCalibrationPath,
		"recompute_interval_seconds": fmt.Sprintf("%d", c.RecomputeIntervalSeconds),
		"recompute_delay_seconds":    fmt.Sprintf("%d", c.RecomputeDelaySeconds),
		"hot_refresh_cron":           c.HotRefreshCron,
		"tracing_enabled":            fmt.Sprintf("%t", c.TracingEnabled),
		"tracing_endpoint":           c.TracingEndpoint,
		"tracing_sample_rate":        fmt.Sprintf("%.2f", c.TracingSampleRate),
		"cors_allowed_origins":       strings.Join(c.CORSAllowedOrigins, ","),
	}
}

// maskURL masks the password in a connection URL.
// Supports postgres://, postgresql://, and redis:// schemes.
func maskURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}
