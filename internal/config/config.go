// Package config loads and validates environment-based configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	Port int

	// DefaultProvider is the boot-time default routing provider name.
	DefaultProvider string

	// RouteTimeout bounds each outbound backend routing call.
	RouteTimeout time.Duration

	// Backend settings. An adapter is registered only when its required
	// setting is present (OSRM has a public default and is always on).
	OSRMBaseURL     string
	ORSAPIKey       string
	ORSBaseURL      string
	ValhallaBaseURL string

	// JWTSecret enables bearer-token auth on the API when set. Token
	// issuing lives in the upstream auth service; this key only validates.
	JWTSecret string
}

// Load reads and validates required environment variables.
// Returns a ConfigError for any invalid value.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DefaultProvider = os.Getenv("DEFAULT_PROVIDER")
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = "osrm"
	}

	cfg.RouteTimeout = parseDurationEnv("ROUTE_TIMEOUT", 5*time.Second)

	cfg.OSRMBaseURL = os.Getenv("OSRM_BASE_URL")
	cfg.ORSAPIKey = os.Getenv("ORS_API_KEY")
	cfg.ORSBaseURL = os.Getenv("ORS_BASE_URL")
	cfg.ValhallaBaseURL = os.Getenv("VALHALLA_BASE_URL")

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	// Not required at startup; the API runs unauthenticated when unset
	// (deployments front this service with the auth gateway).

	portStr := os.Getenv("PORT")
	if portStr == "" {
		cfg.Port = 8080
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, &ConfigError{Field: "PORT", Message: "must be a valid integer"}
		}
		if port < 1 || port > 65535 {
			return nil, &ConfigError{Field: "PORT", Message: "must be between 1 and 65535"}
		}
		cfg.Port = port
	}

	return cfg, nil
}

// Validate re-checks required fields on an already-constructed Config.
func (c *Config) Validate() error {
	var errs []error
	if c.DefaultProvider == "" {
		errs = append(errs, &ConfigError{Field: "DEFAULT_PROVIDER", Message: "cannot be empty"})
	}
	if c.RouteTimeout <= 0 {
		errs = append(errs, &ConfigError{Field: "ROUTE_TIMEOUT", Message: "must be positive"})
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, &ConfigError{Field: "PORT", Message: "must be between 1 and 65535"})
	}
	return errors.Join(errs...)
}

// parseDurationEnv reads a duration from an environment variable.
// Falls back to defaultVal if the variable is unset or unparseable.
// Accepts Go duration strings like "5s", "1500ms".
func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultVal
	}
	return d
}
