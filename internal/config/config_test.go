package config

import (
	"errors"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DEFAULT_PROVIDER", "ROUTE_TIMEOUT",
		"OSRM_BASE_URL", "ORS_API_KEY", "ORS_BASE_URL", "VALHALLA_BASE_URL",
		"JWT_SECRET",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DefaultProvider != "osrm" {
		t.Errorf("DefaultProvider = %q, want osrm", cfg.DefaultProvider)
	}
	if cfg.RouteTimeout != 5*time.Second {
		t.Errorf("RouteTimeout = %v, want 5s", cfg.RouteTimeout)
	}
	if cfg.JWTSecret != "" {
		t.Errorf("JWTSecret = %q, want empty", cfg.JWTSecret)
	}
}

func TestLoad_ExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_PROVIDER", "valhalla")
	t.Setenv("ROUTE_TIMEOUT", "1500ms")
	t.Setenv("ORS_API_KEY", "key-abc")
	t.Setenv("VALHALLA_BASE_URL", "http://valhalla.internal:8002")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.DefaultProvider != "valhalla" {
		t.Errorf("DefaultProvider = %q", cfg.DefaultProvider)
	}
	if cfg.RouteTimeout != 1500*time.Millisecond {
		t.Errorf("RouteTimeout = %v", cfg.RouteTimeout)
	}
	if cfg.ORSAPIKey != "key-abc" || cfg.ValhallaBaseURL != "http://valhalla.internal:8002" {
		t.Errorf("backend settings not loaded: %+v", cfg)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	for _, port := range []string{"abc", "0", "70000", "-1"} {
		clearEnv(t)
		t.Setenv("PORT", port)

		_, err := Load()
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("PORT=%q: error = %v, want *ConfigError", port, err)
			continue
		}
		if cfgErr.Field != "PORT" {
			t.Errorf("PORT=%q: error field = %q", port, cfgErr.Field)
		}
	}
}

func TestLoad_UnparseableDurationFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROUTE_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RouteTimeout != 5*time.Second {
		t.Errorf("RouteTimeout = %v, want the 5s default", cfg.RouteTimeout)
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{Port: 8080, DefaultProvider: "osrm", RouteTimeout: time.Second}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	broken := &Config{Port: 0, DefaultProvider: "", RouteTimeout: 0}
	err := broken.Validate()
	if err == nil {
		t.Fatal("broken config accepted")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error = %v, want joined *ConfigError values", err)
	}
}
