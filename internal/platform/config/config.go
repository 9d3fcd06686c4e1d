// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles harvester settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, scheduler) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // SCHEDULER_TZ must resolve on hosts without zoneinfo

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/validate"
)

// Lock backends understood by [Config.LockBackend].
const (
	LockBackendPostgres = "postgres"
	LockBackendRedis    = "redis"
)

// # Configuration Schema

// Config holds all runtime configuration for the harvester process.
type Config struct {

	// Server settings (ops endpoints only)
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Optional: without it the browse cache is off
	// and only the postgres lock backend is available.
	RedisURL string `env:"REDIS_URL"`

	// External catalog proxy
	CatalogBaseURL  string        `env:"CATALOG_BASE_URL,required"`
	CatalogRPS      float64       `env:"CATALOG_RPS"       envDefault:"3"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"6h"`

	// Scheduling
	CronExpression  string `env:"CRON_EXPRESSION"   envDefault:"*/5 * * * *"`
	WindowStartHour int    `env:"WINDOW_START_HOUR" envDefault:"0"`
	WindowEndHour   int    `env:"WINDOW_END_HOUR"   envDefault:"0"`
	Timezone        string `env:"SCHEDULER_TZ"      envDefault:"UTC"`
	BatchSize       int    `env:"BATCH_SIZE"        envDefault:"1"`

	// Cross-process mutual exclusion
	LockBackend string        `env:"LOCK_BACKEND" envDefault:"postgres"`
	LockKey     int64         `env:"LOCK_KEY"     envDefault:"727274"`
	LockTTL     time.Duration `env:"LOCK_TTL"     envDefault:"30m"`

	// Ingestion pacing and policy
	AlbumDelay        time.Duration `env:"ALBUM_DELAY"        envDefault:"1500ms"`
	PlaylistDelay     time.Duration `env:"PLAYLIST_DELAY"     envDefault:"750ms"`
	UnstableThreshold int           `env:"UNSTABLE_THRESHOLD" envDefault:"2"`
	StrictHero        bool          `env:"STRICT_HERO"        envDefault:"true"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks the semantic constraints env tags cannot express.
func (c *Config) Validate() error {
	validator := &validate.Validator{}

	validator.
		Required("DATABASE_URL", c.DatabaseURL).
		Required("CATALOG_BASE_URL", c.CatalogBaseURL).
		Range("WINDOW_START_HOUR", c.WindowStartHour, 0, 23).
		Range("WINDOW_END_HOUR", c.WindowEndHour, 0, 23).
		Range("BATCH_SIZE", c.BatchSize, 1, 50).
		Range("UNSTABLE_THRESHOLD", c.UnstableThreshold, 1, 100).
		OneOf("LOCK_BACKEND", c.LockBackend, LockBackendPostgres, LockBackendRedis).
		Required("CRON_EXPRESSION", c.CronExpression).
		MaxLen("SERVER_PORT", c.ServerPort, 5).
		Custom("LOCK_BACKEND", c.LockBackend == LockBackendRedis && c.RedisURL == "", "Redis lock backend requires REDIS_URL").
		Custom("CATALOG_RPS", c.CatalogRPS <= 0, "Must be greater than zero").
		Custom("LOCK_TTL", c.LockTTL <= 0, "Must be greater than zero").
		Custom("ALBUM_DELAY", c.AlbumDelay < 0, "Must not be negative").
		Custom("PLAYLIST_DELAY", c.PlaylistDelay < 0, "Must not be negative")

	if _, err := cron.ParseStandard(c.CronExpression); c.CronExpression != "" && err != nil {
		validator.Custom("CRON_EXPRESSION", true, "Invalid cron expression")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		validator.Custom("SCHEDULER_TZ", true, "Unknown time zone")
	}

	return validator.Err()
}

// Location returns the time zone the scheduling window is evaluated in.
func (c *Config) Location() *time.Location {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return location
}

// IsDevelopment reports whether the process is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
