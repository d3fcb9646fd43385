package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTolerance       = "0.01"
	DefaultHeuristicWindow = 5 * time.Minute
	DefaultTimezone        = "UTC"
	DefaultLogLevel        = "info"
)

// Config holds the reconciliation settings.
type Config struct {
	// Tolerance is the currency amount below which two totals are considered equal.
	Tolerance decimal.Decimal
	// HeuristicWindow is the maximum distance between ERP and local timestamps for a heuristic match.
	HeuristicWindow time.Duration
	// Location interprets timestamps that carry no zone.
	Location *time.Location
	LogLevel logrus.Level
	DBPath   string
}

// Load reads the configuration from the environment, after loading a .env file when present.
func Load() (*Config, error) {
	// Missing .env is fine: the process environment still applies.
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an env lookup function and validates it.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var invalid []string

	cfg := &Config{DBPath: get("RECON_DB_PATH", "")}

	tolerance, err := decimal.NewFromString(get("RECON_TOLERANCE", DefaultTolerance))
	if err != nil || !tolerance.IsPositive() {
		invalid = append(invalid, "RECON_TOLERANCE")
	}
	cfg.Tolerance = tolerance

	window, err := time.ParseDuration(get("HEURISTIC_WINDOW", DefaultHeuristicWindow.String()))
	if err != nil || window <= 0 {
		invalid = append(invalid, "HEURISTIC_WINDOW")
	}
	cfg.HeuristicWindow = window

	loc, err := time.LoadLocation(get("RECON_TIMEZONE", DefaultTimezone))
	if err != nil {
		invalid = append(invalid, "RECON_TIMEZONE")
		loc = time.UTC
	}
	cfg.Location = loc

	level, err := logrus.ParseLevel(get("LOG_LEVEL", DefaultLogLevel))
	if err != nil {
		invalid = append(invalid, "LOG_LEVEL")
		level = logrus.InfoLevel
	}
	cfg.LogLevel = level

	if len(invalid) > 0 {
		return nil, errors.New("invalid environment variables: " + strings.Join(invalid, ", "))
	}
	return cfg, nil
}
