// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/constants"
)

// Scheduler fires [Runner.RunOnce] on a cron expression.
//
// # Resilience
//
// Errors returned by a tick are logged, never propagated, and panics are
// recovered so the cron loop keeps running.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	state  *State
	config RunConfig
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler parses the cron expression and registers the tick.
func NewScheduler(runner *Runner, state *State, config RunConfig, location *time.Location, logger *slog.Logger) (*Scheduler, error) {
	if location == nil {
		location = time.UTC
	}

	cronLogger := &slogCronLogger{logger: logger}
	scheduler := &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger)),
		),
		runner: runner,
		state:  state,
		config: config,
		logger: logger,
	}
	scheduler.ctx, scheduler.cancel = context.WithCancel(context.Background())

	if _, err := scheduler.cron.AddFunc(config.CronExpression, scheduler.tick); err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron expression %q: %w", config.CronExpression, err)
	}
	return scheduler, nil
}

// Start begins firing ticks in the background.
func (scheduler *Scheduler) Start() {
	scheduler.logger.Info("scheduler_started", slog.String("cron", scheduler.config.CronExpression))
	scheduler.cron.Start()
}

// Stop cancels the in-flight tick and waits for it, bounded by ctx.
func (scheduler *Scheduler) Stop(ctx context.Context) error {
	scheduler.cancel()
	done := scheduler.cron.Stop().Done()

	select {
	case <-done:
		scheduler.logger.Info("scheduler_stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: stop: %w", ctx.Err())
	}
}

func (scheduler *Scheduler) tick() {
	defer func() {
		if recovered := recover(); recovered != nil {
			scheduler.logger.Error("tick_panicked", slog.Any("panic", recovered))
		}
	}()

	err := scheduler.runner.RunOnce(scheduler.ctx, scheduler.state, scheduler.config)
	if err == nil {
		return
	}

	level := slog.LevelWarn
	if isFatal(err) {
		level = slog.LevelError
	}
	scheduler.logger.Log(scheduler.ctx, level, "tick_failed", slog.String(constants.FieldError, err.Error()))
}

// slogCronLogger adapts slog to cron.Logger.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l *slogCronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron_"+msg, keysAndValues...)
}

func (l *slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron_"+msg, append([]any{slog.String(constants.FieldError, err.Error())}, keysAndValues...)...)
}
