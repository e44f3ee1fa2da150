package Config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig is built once in main and passed by reference to the
// components that need it. Nothing reads the environment after startup.
type AppConfig struct {
	Port         string
	DatabasePath string

	// JWT signing secret and token lifetime for the admin panel.
	JWTSecret string
	TokenTTL  time.Duration

	// Inventory sessions left active longer than this get cancelled
	// by the janitor.
	StaleSessionTTL time.Duration

	// Optional bootstrap admin account, created at startup when both
	// are set.
	AdminUsername string
	AdminPassword string

	LogLevel string
}

// Load reads .env (if present) and the environment into an AppConfig.
func Load() (*AppConfig, error) {
	// A missing .env is fine in production, env vars take over.
	_ = godotenv.Load(".env")

	cfg := &AppConfig{
		Port:            getEnv("PORT", "5000"),
		DatabasePath:    getEnv("DB_PATH", "parking.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        time.Hour,
		StaleSessionTTL: 24 * time.Hour,
		AdminUsername:   os.Getenv("ADMIN_USERNAME"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	if v := os.Getenv("TOKEN_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES: %q", v)
		}
		cfg.TokenTTL = time.Duration(minutes) * time.Minute
	}

	if v := os.Getenv("STALE_SESSION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid STALE_SESSION_HOURS: %q", v)
		}
		cfg.StaleSessionTTL = time.Duration(hours) * time.Hour
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
