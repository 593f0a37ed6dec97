// Package config reads the planner's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config captures environment driven configuration values for the planner.
type Config struct {
	HTTPAddr        string
	StoreDriver     string
	SQLitePath      string
	PostgresDSN     string
	TokenSecret     string
	TokenTTL        time.Duration
	RedisURL        string
	CatalogCacheTTL time.Duration
	AMQPURL         string
	AMQPExchange    string
	LogLevel        string
	LogFormat       string
}

// LoadEnvFile loads KEY=VALUE pairs from path without overriding variables
// that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Optional values fall back to defaults. Every missing or invalid variable is
// reported in one error.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        ":8080",
		StoreDriver:     DriverSQLite,
		SQLitePath:      "planner.db",
		TokenTTL:        24 * time.Hour,
		CatalogCacheTTL: 5 * time.Minute,
		AMQPExchange:    "reservations",
		LogLevel:        "info",
		LogFormat:       "text",
	}

	var missing, invalid []string

	if v := env("PLANNER_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}

	if v := env("PLANNER_STORE_DRIVER"); v != "" {
		switch strings.ToLower(v) {
		case DriverSQLite, DriverPostgres:
			cfg.StoreDriver = strings.ToLower(v)
		default:
			invalid = append(invalid, "PLANNER_STORE_DRIVER")
		}
	}

	if v := env("PLANNER_SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	}

	cfg.PostgresDSN = env("PLANNER_POSTGRES_DSN")
	if cfg.StoreDriver == DriverPostgres && cfg.PostgresDSN == "" {
		missing = append(missing, "PLANNER_POSTGRES_DSN")
	}

	if cfg.TokenSecret = env("PLANNER_TOKEN_SECRET"); cfg.TokenSecret == "" {
		missing = append(missing, "PLANNER_TOKEN_SECRET")
	} else if len(cfg.TokenSecret) < 16 {
		invalid = append(invalid, "PLANNER_TOKEN_SECRET")
	}

	if !parseDuration("PLANNER_TOKEN_TTL", &cfg.TokenTTL) {
		invalid = append(invalid, "PLANNER_TOKEN_TTL")
	}
	if !parseDuration("PLANNER_CATALOG_CACHE_TTL", &cfg.CatalogCacheTTL) {
		invalid = append(invalid, "PLANNER_CATALOG_CACHE_TTL")
	}

	cfg.RedisURL = env("PLANNER_REDIS_URL")
	cfg.AMQPURL = env("PLANNER_AMQP_URL")
	if v := env("PLANNER_AMQP_EXCHANGE"); v != "" {
		cfg.AMQPExchange = v
	}

	if v := env("PLANNER_LOG_LEVEL"); v != "" {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = strings.ToLower(v)
		default:
			invalid = append(invalid, "PLANNER_LOG_LEVEL")
		}
	}
	if v := env("PLANNER_LOG_FORMAT"); v != "" {
		switch strings.ToLower(v) {
		case "text", "json":
			cfg.LogFormat = strings.ToLower(v)
		default:
			invalid = append(invalid, "PLANNER_LOG_FORMAT")
		}
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "missing required environment variables: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variables: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// parseDuration overwrites dst when key is set and reports false for an
// unparsable or non-positive value.
func parseDuration(key string, dst *time.Duration) bool {
	v := env(key)
	if v == "" {
		return true
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return false
	}
	*dst = d
	return true
}
