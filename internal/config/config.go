// Package config loads application configuration from environment
// variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/insightdelivered/statement-intelligence/internal/detector"
	"github.com/insightdelivered/statement-intelligence/internal/rules"
)

// Config represents the application configuration.
type Config struct {
	Detection     detector.Config
	RulesPath     string // empty means the built-in rule set
	ParseTimeout  time.Duration
	FingerprintDB string // empty means an in-memory store
	ListenAddr    string
	OwnerID       string
	Debug         bool
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	defaults := detector.DefaultConfig()
	cfg := &Config{
		RulesPath:     os.Getenv("RULES_PATH"),
		FingerprintDB: os.Getenv("FINGERPRINT_DB"),
		ListenAddr:    getEnvOrDefault("LISTEN_ADDR", ":8080"),
		OwnerID:       getEnvOrDefault("OWNER_ID", "default"),
		Debug:         os.Getenv("DEBUG") == "true",
	}

	var err error
	if cfg.Detection.MinConfidence, err = parseFloatEnv("MIN_CONFIDENCE_THRESHOLD", defaults.MinConfidence); err != nil {
		return nil, err
	}
	if cfg.Detection.FuzzyMatchThreshold, err = parseFloatEnv("FUZZY_MATCH_THRESHOLD", defaults.FuzzyMatchThreshold); err != nil {
		return nil, err
	}
	if cfg.Detection.AmountVarianceTolerance, err = parseFloatEnv("AMOUNT_VARIANCE_TOLERANCE", defaults.AmountVarianceTolerance); err != nil {
		return nil, err
	}
	if cfg.Detection.FrequencyWindowDays, err = parseIntEnv("FREQUENCY_DETECTION_WINDOW_DAYS", defaults.FrequencyWindowDays); err != nil {
		return nil, err
	}
	if cfg.ParseTimeout, err = parseDurationEnv("PARSE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks option ranges.
func (c *Config) Validate() error {
	if err := c.Detection.Validate(); err != nil {
		return err
	}
	if c.ParseTimeout <= 0 {
		return errors.New("parse timeout must be positive")
	}
	if c.OwnerID == "" {
		return errors.New("owner id must not be empty")
	}
	return nil
}

// LoadRules returns the configured rule set: the file at RulesPath, or the
// built-in rules when no path is set.
func (c *Config) LoadRules() (*rules.RuleSet, error) {
	if c.RulesPath == "" {
		return rules.Default(), nil
	}
	return rules.Load(c.RulesPath)
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s: %s", key, value)
	}
	return parsed, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}

// parseDurationEnv accepts Go durations ("45s") or a bare number of seconds.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %s", key, value)
	}
	return parsed, nil
}
