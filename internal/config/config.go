// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"]. CORS_ORIGINS is comma-separated.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// AutoMigrate applies pending migrations on startup when MIGRATE_ON_START=true.
	AutoMigrate bool

	// CookieSecure marks the session cookie Secure. Set COOKIE_SECURE=true behind TLS.
	CookieSecure bool

	Geocoder  GeocoderConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// GeocoderConfig configures the address lookup provider.
type GeocoderConfig struct {
	APIKey  string // GEOCODER_API_KEY, required
	BaseURL string // GEOCODER_BASE_URL
	Timeout time.Duration
}

// AuthConfig configures token signing.
type AuthConfig struct {
	JWTSecret string // JWT_SECRET, required
	TokenTTL  time.Duration
}

// RateLimitConfig configures the limiter in front of the auth endpoints.
// An empty RedisAddr selects the in-process limiter.
type RateLimitConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AuthLimit     int
	AuthWindow    time.Duration
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first optional variable that does not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Geocoder: GeocoderConfig{
			BaseURL: getEnv("GEOCODER_BASE_URL", "https://geocode-maps.yandex.ru/1.x/"),
		},
		RateLimit: RateLimitConfig{
			RedisAddr:     os.Getenv("RATE_LIMIT_REDIS_ADDR"),
			RedisPassword: os.Getenv("RATE_LIMIT_REDIS_PASSWORD"),
			AuthWindow:    time.Minute,
		},
	}

	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	cfg.DatabaseURL = required("DATABASE_URL")
	cfg.Geocoder.APIKey = required("GEOCODER_API_KEY")
	cfg.Auth.JWTSecret = required("JWT_SECRET")

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.Geocoder.Timeout, err = getDuration("GEOCODER_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Auth.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	maxBody, err := getInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	if cfg.RateLimit.RedisDB, err = getInt("RATE_LIMIT_REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.AuthLimit, err = getInt("AUTH_RATE_LIMIT", 10); err != nil {
		return Config{}, err
	}
	if cfg.AutoMigrate, err = getBool("MIGRATE_ON_START", false); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", false); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid non-negative integer %q", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
