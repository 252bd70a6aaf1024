// Package config provides configuration management for the duskward game
// server. It handles environment variable loading, validation, and secure
// defaults appropriate for production deployment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Config represents the server configuration with environment variable
// support. All configuration values can be set via environment variables or
// will use secure defaults. Values come only from DUSKWARD_* environment
// variables; no command-line flags are parsed. Config is thread-safe; all field access should
// be done through getter methods when used concurrently, or by holding the
// mutex directly.
type Config struct {
	// mu provides thread-safe access to configuration fields when the
	// Config instance is shared across goroutines.
	mu sync.RWMutex `json:"-"`

	// Port is the TCP port the game protocol listens on (DUSKWARD_PORT).
	Port int `json:"port"`

	// ResourceBaseURL is the resource backend's base URL
	// (DUSKWARD_CONFIGURATION).
	ResourceBaseURL string `json:"resource_base_url"`

	// ResourceDefaultFallback substitutes a synthesized default Map/Player
	// when a resource fetch fails, instead of dropping the session.
	ResourceDefaultFallback bool `json:"resource_default_fallback"`

	// AdminToken is the shared secret every admin HTTP request must present
	// via the Access-Token header (DUSKWARD_ADMIN_TOKEN).
	AdminToken string `json:"-"`

	// AdminAddr is the admin HTTP listener address.
	AdminAddr string `json:"admin_addr"`

	// TickRate is the simulation tick frequency in Hz (DUSKWARD_TICK_RATE).
	TickRate float64 `json:"tick_rate"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `json:"log_level"`

	// DataDir is the root directory player records are persisted under
	// (DUSKWARD_DATA_DIR); the engine writes to DataDir/entities/<uuid>.json.
	DataDir string `json:"data_dir"`

	// DebugAuthBypass makes auth.Manager accept any token for any
	// character id. Never enable outside local development.
	DebugAuthBypass bool `json:"debug_auth_bypass"`

	// Admin API rate limiting

	// RateLimitEnabled enables rate limiting middleware on the admin API.
	RateLimitEnabled bool `json:"rate_limit_enabled"`

	// RateLimitRequestsPerSecond is the number of admin requests allowed
	// per second per caller.
	RateLimitRequestsPerSecond float64 `json:"rate_limit_requests_per_second"`

	// RateLimitBurst is the maximum burst of admin requests per caller.
	RateLimitBurst int `json:"rate_limit_burst"`

	// Server lifecycle timeouts

	// ShutdownTimeout is the maximum duration to wait for every instance to
	// acknowledge a coordinator shutdown before forcing exit.
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// Load creates a new Config instance by reading from environment variables
// and applying secure defaults. It validates all configuration values and
// returns an error if any required values are missing or invalid.
func Load() (*Config, error) {
	logrus.WithFields(logrus.Fields{
		"function": "Load",
		"package":  "config",
	}).Debug("entering Load")

	cfg := &Config{
		Port:                    getEnvAsInt("DUSKWARD_PORT", 9000),
		ResourceBaseURL:         getEnvAsString("DUSKWARD_CONFIGURATION", "http://localhost:8080"),
		ResourceDefaultFallback: getEnvAsBool("DUSKWARD_DEFAULT_FALLBACK", false),
		AdminToken:              getEnvAsString("DUSKWARD_ADMIN_TOKEN", ""),
		AdminAddr:               getEnvAsString("DUSKWARD_ADMIN_ADDR", "127.0.0.1:8001"),
		TickRate:                getEnvAsFloat64("DUSKWARD_TICK_RATE", 60),
		LogLevel:                getEnvAsString("DUSKWARD_LOG_LEVEL", "info"),
		DataDir:                 getEnvAsString("DUSKWARD_DATA_DIR", "./scripts"),
		DebugAuthBypass:         getEnvAsBool("DUSKWARD_DEBUG_AUTH_BYPASS", false),

		RateLimitEnabled:           getEnvAsBool("DUSKWARD_RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSecond: getEnvAsFloat64("DUSKWARD_RATE_LIMIT_REQUESTS_PER_SECOND", 5),
		RateLimitBurst:             getEnvAsInt("DUSKWARD_RATE_LIMIT_BURST", 10),

		ShutdownTimeout: getEnvAsDuration("DUSKWARD_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Load",
		"package":   "config",
		"port":      cfg.Port,
		"tick_rate": cfg.TickRate,
		"log_level": cfg.LogLevel,
	}).Debug("configuration loaded, starting validation")

	if err := cfg.validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Load",
			"package":  "config",
			"error":    err,
		}).Error("configuration validation failed")
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.AdminToken == "" {
		logrus.Warn("DUSKWARD_ADMIN_TOKEN is empty: every admin request will be rejected until one is configured")
	}

	return cfg, nil
}

// validate checks that all configuration values are valid and consistent.
func (c *Config) validate() error {
	if err := c.validateServerSettings(); err != nil {
		return err
	}
	if err := c.validateRateLimitConfig(); err != nil {
		return err
	}
	if c.ShutdownTimeout < time.Second {
		return fmt.Errorf("shutdown timeout must be at least 1 second, got %v", c.ShutdownTimeout)
	}
	return nil
}

// validateServerSettings checks the game/admin listener and tick-rate
// configuration.
func (c *Config) validateServerSettings() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be greater than 0, got %v", c.TickRate)
	}

	validLogLevels := []string{"trace", "debug", "info", "warn", "error"}
	found := false
	for _, level := range validLogLevels {
		if strings.ToLower(c.LogLevel) == level {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("log level must be one of %v, got %s", validLogLevels, c.LogLevel)
	}

	return nil
}

// validateRateLimitConfig ensures rate limiting parameters are valid when
// enabled.
func (c *Config) validateRateLimitConfig() error {
	if c.RateLimitEnabled {
		if c.RateLimitRequestsPerSecond <= 0 {
			return fmt.Errorf("rate limit requests per second must be greater than 0 when rate limiting is enabled")
		}
		if c.RateLimitBurst <= 0 {
			return fmt.Errorf("rate limit burst must be greater than 0 when rate limiting is enabled")
		}
	}
	return nil
}

// TickPeriod converts TickRate into the time.Duration pkg/instance expects.
func (c *Config) TickPeriod() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(float64(time.Second) / c.TickRate)
}

// Helper functions for environment variable parsing with type safety and
// defaults.

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
