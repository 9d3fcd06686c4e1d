// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command harvester runs the catalog harvest scheduler and its ops endpoints.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis (optional).
//  5. Run database migrations (idempotent).
//  6. Wire the catalog client, stores, lock and pipeline.
//  7. Start the cron scheduler and the ops HTTP server.
//  8. Shut down gracefully on SIGTERM/SIGINT.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/api"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/catalog"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/claim"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/completion"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/ingest"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/resolve"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/config"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/constants"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/lock"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/migration"
	pgstore "github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/postgres"
	redisstore "github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/redis"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/scheduler"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/ytmusic"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String(constants.FieldVersion, constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug || cfg.IsDevelopment() {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("lock_backend", cfg.LockBackend),
		slog.String("cron", cfg.CronExpression),
	)

	// Bounded startup so misconfiguration fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_error", slog.Any(constants.FieldError, cerr))
			}
		}()
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	var client ytmusic.Client = ytmusic.NewHTTPClient(cfg.CatalogBaseURL, cfg.CatalogRPS, log)
	if rdb != nil {
		client = ytmusic.NewCachedClient(client, ytmusic.NewRedisCache(rdb), cfg.CatalogCacheTTL, log)
	}

	var globalLock lock.DistributedLock = lock.NewPostgresAdvisoryLock(pool, cfg.LockKey)
	if cfg.LockBackend == config.LockBackendRedis {
		globalLock = lock.NewRedisLeaseLock(rdb, cfg.LockKey, cfg.LockTTL, log)
	}

	catalogStore := catalog.NewPostgresRepository(pool)
	coordinator := claim.NewCoordinator(claim.NewPostgresStore(pool), globalLock, log)
	resolver := resolve.NewResolver(client, cfg.StrictHero, log)
	pipeline := ingest.NewPipeline(client, catalogStore, completion.NewTracker(catalogStore), ingest.Config{
		AlbumDelay:        cfg.AlbumDelay,
		PlaylistDelay:     cfg.PlaylistDelay,
		UnstableThreshold: cfg.UnstableThreshold,
	}, log)

	state := scheduler.NewState()
	runner := scheduler.NewRunner(coordinator, resolver, pipeline, cfg.Location(), log)

	// ── 7. Scheduler ──────────────────────────────────────────────────────
	cron, err := scheduler.NewScheduler(runner, state, scheduler.RunConfig{
		CronExpression: cfg.CronExpression,
		Window:         scheduler.Window{StartHour: cfg.WindowStartHour, EndHour: cfg.WindowEndHour},
		BatchSize:      cfg.BatchSize,
	}, cfg.Location(), log)
	must(log, err, "configure scheduler")
	cron.Start()

	// ── 8. Ops HTTP Server ────────────────────────────────────────────────
	health := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
	}
	if rdb != nil {
		health.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	}
	liveness, readiness := api.NewHealthHandlers(health, log)

	server := api.NewServer(cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Status:    api.NewStatusHandler(state),
	})

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any(constants.FieldError, err))
	}

	log.Info("shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	// The in-flight run is cancelled; its deferred lock release still runs.
	stopCtx, stopCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer stopCancel()
	if err := cron.Stop(stopCtx); err != nil {
		log.Error("scheduler_stop_error", slog.Any(constants.FieldError, err))
	}

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any(constants.FieldError, err))
		os.Exit(1)
	}

	log.Info("harvester_stopped_cleanly")
}

// newLogger builds the JSON logger carrying the app attribute.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any(constants.FieldError, err),
		)
		os.Exit(1)
	}
}
