// Package config loads client configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables consumed by Load.
const (
	// EnvBaseURL is the root of the Pulse API.
	EnvBaseURL = "PULSE_API_URL"

	// EnvToken is the bearer credential.
	EnvToken = "PULSE_API_TOKEN"

	// EnvMaxPages is the page bound applied when a caller picks no policy.
	EnvMaxPages = "PULSE_MAX_PAGES"

	// EnvTimeout is the per-request timeout as a Go duration string.
	EnvTimeout = "PULSE_HTTP_TIMEOUT"

	// EnvLogLevel selects the zerolog level (debug, info, warn, error).
	EnvLogLevel = "PULSE_LOG_LEVEL"

	// EnvLogPretty enables human-readable console logging when "true".
	EnvLogPretty = "PULSE_LOG_PRETTY"
)

// Defaults applied when the environment leaves a value unset.
const (
	DefaultMaxPages = 3
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "info"
)

// Config is everything the binaries need to build a client and a logger.
type Config struct {
	BaseURL   string
	Token     string
	MaxPages  int
	Timeout   time.Duration
	LogLevel  string
	LogPretty bool
}

// Load reads configuration from a .env file in the working directory, if one
// exists, and from the process environment. Values already present in the
// environment win over file values.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom behaves like Load with an explicit env file path. A missing file
// is not an error. Missing required values and malformed numbers are, so
// misconfiguration surfaces here rather than mid-traversal.
func LoadFrom(file string) (Config, error) {
	if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", file, err)
	}

	cfg := Config{
		BaseURL:   os.Getenv(EnvBaseURL),
		Token:     os.Getenv(EnvToken),
		MaxPages:  DefaultMaxPages,
		Timeout:   DefaultTimeout,
		LogLevel:  getEnv(EnvLogLevel, DefaultLogLevel),
		LogPretty: os.Getenv(EnvLogPretty) == "true",
	}

	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("%s is required", EnvBaseURL)
	}
	if cfg.Token == "" {
		return Config{}, fmt.Errorf("%s is required", EnvToken)
	}

	if v := os.Getenv(EnvMaxPages); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", EnvMaxPages, err)
		}
		if n <= 0 {
			return Config{}, fmt.Errorf("%s must be positive (got %d)", EnvMaxPages, n)
		}
		cfg.MaxPages = n
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", EnvTimeout, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("%s must be positive (got %s)", EnvTimeout, d)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
