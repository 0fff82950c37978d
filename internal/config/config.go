// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	HTTPAddr          string
	BackendURL        string
	HostedCheckoutURL string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	Store             string
	RedisAddr         string
	VisitTTL          time.Duration
	CookieSecure      bool
	LogLevel          string
	LogFormat         string
	GinMode           string
}

// Load reads an optional .env file from the working directory and then the
// environment. Variables already set win over the file.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file. A missing file is fine.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	cfg := &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":4243"),
		BackendURL:        getEnv("BACKEND_URL", "http://localhost:4242"),
		HostedCheckoutURL: getEnv("HOSTED_CHECKOUT_URL", "https://checkout.stripe.com/pay"),
		Store:             strings.ToLower(getEnv("STORE", StoreMemory)),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		GinMode:           getEnv("GIN_MODE", "release"),
	}

	var errs []error
	cfg.RequestTimeout = getDuration("REQUEST_TIMEOUT", 10*time.Second, &errs)
	cfg.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", 5*time.Second, &errs)
	cfg.VisitTTL = getDuration("VISIT_TTL", 24*time.Hour, &errs)
	cfg.CookieSecure = getBool("COOKIE_SECURE", false, &errs)

	if cfg.Store != StoreMemory && cfg.Store != StoreRedis {
		errs = append(errs, fmt.Errorf("STORE: unknown store %q", cfg.Store))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool, errs *[]error) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid bool %q", key, raw))
		return defaultValue
	}
	return b
}
