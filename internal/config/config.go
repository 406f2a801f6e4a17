package config

import (
	"log"
	"os"
)

// Storage shapes.
const (
	ShapeFlat    = "flat"
	ShapeGrouped = "grouped"
)

// Summary granularities.
const (
	GranularityNone  = "none"
	GranularityDaily = "daily"
)

// Timestamp wire formats.
const (
	FormatInstant = "instant"
	FormatIST     = "ist"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	DatabaseURL string

	ListenAddr string

	// StorageShape selects how usage events are persisted: "flat" stores
	// one row per event, "grouped" stores one row per username owning a
	// JSONB array of activities.
	StorageShape string

	// Granularity selects how /usage/summary buckets events: "daily"
	// groups by calendar date, "none" merges all time into one lifetime
	// bucket per (username, site).
	Granularity string

	// TimestampFormat selects how timestamps are rendered in responses:
	// "instant" is RFC3339 UTC, "ist" is a fixed UTC+5:30 string with
	// millisecond precision.
	TimestampFormat string

	// RedisURL enables the summary cache when set. Empty disables caching.
	RedisURL string
}

// Load reads configuration from environment variables and applies
// defaults. Unknown enum values are logged and fall back to the default
// rather than failing startup.
func Load() *Config {
	cfg := &Config{
		DatabaseURL:     os.Getenv("APP_DATABASE_URL"),
		ListenAddr:      getenv("APP_LISTEN_ADDR", ":5000"),
		StorageShape:    getenv("APP_STORAGE_SHAPE", ShapeFlat),
		Granularity:     getenv("APP_GRANULARITY", GranularityDaily),
		TimestampFormat: getenv("APP_TIMESTAMP_FORMAT", FormatInstant),
		RedisURL:        os.Getenv("APP_REDIS_URL"),
	}

	if cfg.StorageShape != ShapeFlat && cfg.StorageShape != ShapeGrouped {
		log.Printf("unknown APP_STORAGE_SHAPE %q, using %q", cfg.StorageShape, ShapeFlat)
		cfg.StorageShape = ShapeFlat
	}
	if cfg.Granularity != GranularityNone && cfg.Granularity != GranularityDaily {
		log.Printf("unknown APP_GRANULARITY %q, using %q", cfg.Granularity, GranularityDaily)
		cfg.Granularity = GranularityDaily
	}
	if cfg.TimestampFormat != FormatInstant && cfg.TimestampFormat != FormatIST {
		log.Printf("unknown APP_TIMESTAMP_FORMAT %q, using %q", cfg.TimestampFormat, FormatInstant)
		cfg.TimestampFormat = FormatInstant
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
