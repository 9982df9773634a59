// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Data modes select how probe sources are wired.
const (
	ModeLive      = "live"      // HTTP upstreams with synthetic fallback
	ModeSimulated = "simulated" // deterministic records only, no network
)

// Config is the full runtime configuration.
type Config struct {
	Port          int
	JWTSecret     string
	TokenTTL      time.Duration
	SourceTimeout time.Duration
	SourceRetries int
	DataMode      string
	RedisAddr     string // empty = in-memory cache
	CacheTTL      time.Duration
	AdminUser     string
	AdminPassword string
}

// Load reads configuration from the environment, applying defaults.
// JWT_SECRET is the only required variable.
func Load() (Config, error) {
	cfg := Config{
		Port:          getenvInt("PORT", 8080),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      getenvDuration("TOKEN_TTL", 8*time.Hour),
		SourceTimeout: time.Duration(getenvInt("SOURCE_TIMEOUT_MS", 10000)) * time.Millisecond,
		SourceRetries: getenvInt("SOURCE_MAX_RETRIES", 3),
		DataMode:      getenv("DATA_MODE", ModeLive),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		CacheTTL:      getenvDuration("CACHE_TTL", 15*time.Minute),
		AdminUser:     getenv("ADMIN_USER", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET not set")
	}
	if cfg.DataMode != ModeLive && cfg.DataMode != ModeSimulated {
		return cfg, fmt.Errorf("DATA_MODE must be %q or %q, got %q", ModeLive, ModeSimulated, cfg.DataMode)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		if _, err := fmt.Sscanf(v, "%d", &out); err == nil {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
