package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	// SessionWindow is the duplicate-login freshness window W: a second
	// login for the same account within this window is rejected.
	SessionWindow time.Duration
	// RollupCron is the wall-clock instant of the daily rollup, as a cron
	// expression evaluated in RollupTimezone.
	RollupCron string
	// RollupTimezone is the single time zone used to derive calendar days.
	RollupTimezone *time.Location
	// StoreOpTimeout bounds every individual ephemeral-store round trip.
	StoreOpTimeout time.Duration

	TokenTTL    time.Duration
	StoragePath string
	GeoIPDBPath string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		SessionWindow:    time.Minute * time.Duration(getEnvInt("SESSION_FRESHNESS_MINUTES", 10)),
		RollupCron:       getEnv("ROLLUP_CRON", "0 0 * * *"),
		StoreOpTimeout:   time.Second * time.Duration(getEnvInt("STORE_OP_TIMEOUT_SECONDS", 3)),
		TokenTTL:         time.Minute * time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 10)),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		AllowedOrigins:   []string{getEnv("ALLOWED_ORIGIN", "http://localhost:3000")},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SessionWindow <= 0 {
		return nil, fmt.Errorf("SESSION_FRESHNESS_MINUTES must be positive")
	}

	tzName := getEnv("ROLLUP_TIMEZONE", "Asia/Seoul")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid ROLLUP_TIMEZONE %q: %w", tzName, err)
	}
	cfg.RollupTimezone = loc

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
