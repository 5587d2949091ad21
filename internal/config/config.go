package config

import (
	"log/slog"
	"os"
	"time"
)

const devAccessSecret = "dev-access-secret-change-in-production"
const devRefreshSecret = "dev-refresh-secret-change-in-production"

// Config holds all runtime settings. It is loaded once at startup and
// read-only afterwards, so concurrent reads are safe.
type Config struct {
	Port        string
	Env         string
	DatabaseDSN string

	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
}

func Load() Config {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/motion?parseTime=true"),

		AccessSecret:  getEnv("JWT_ACCESS_SECRET", devAccessSecret),
		RefreshSecret: getEnv("JWT_REFRESH_SECRET", devRefreshSecret),
		AccessTTL:     getDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:    getDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		ResetTTL:      getDurationEnv("RESET_TOKEN_TTL", 30*time.Minute),
	}

	if cfg.Env == "production" {
		if cfg.AccessSecret == devAccessSecret || cfg.RefreshSecret == devRefreshSecret {
			slog.Error("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set in production environment")
			os.Exit(1)
		}
		if len(cfg.AccessSecret) < 32 || len(cfg.RefreshSecret) < 32 {
			slog.Warn("JWT secrets should be at least 32 characters in production")
		}
	}

	// Compromise of one signing key must not allow forging the other token class.
	if cfg.AccessSecret == cfg.RefreshSecret {
		slog.Error("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return d
}
