// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package scheduler decides when a harvest run happens and drives it.
//
// # Run Lifecycle
//
//  1. Outside the window, or while a run is in flight in this process, the
//     tick is skipped. Skipped ticks are never queued.
//  2. The global lock is tried once. If another process holds it, the tick ends.
//  3. Up to BatchSize artists are claimed, resolved and ingested in sequence.
//  4. The lock is released on every exit path.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/claim"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/ingest"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/resolve"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/apperr"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/constants"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/ctxutil"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/validate"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/slice"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/uuidv7"
)

// maxBatchSize bounds BatchSize.
const maxBatchSize = 50

// RunConfig is the per-tick configuration.
type RunConfig struct {
	CronExpression string
	Window         Window
	BatchSize      int
}

// Runner executes one harvest tick.
type Runner struct {
	coordinator *claim.Coordinator
	resolver    *resolve.Resolver
	pipeline    *ingest.Pipeline
	location    *time.Location
	logger      *slog.Logger
	now         func() time.Time
}

// NewRunner creates a new runner. location is where the window is evaluated.
func NewRunner(coordinator *claim.Coordinator, resolver *resolve.Resolver, pipeline *ingest.Pipeline, location *time.Location, logger *slog.Logger) *Runner {
	if location == nil {
		location = time.UTC
	}
	return &Runner{
		coordinator: coordinator,
		resolver:    resolver,
		pipeline:    pipeline,
		location:    location,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock replaces the time source.
func (runner *Runner) SetClock(now func() time.Time) {
	runner.now = now
}

/*
RunOnce performs one tick.

Description: Returns an error only for fatal preconditions (nil state,
out-of-range batch size or hours, or a malformed ingest request). Contention,
resolution misses and ingest failures are logged and reported in state.
*/
func (runner *Runner) RunOnce(ctx context.Context, state *State, config RunConfig) error {
	if err := runner.checkPreconditions(state, config); err != nil {
		return err
	}

	now := runner.now().In(runner.location)
	report := Report{StartedAt: now}

	// 1. Window gate
	if !WithinWindow(now, config.Window) {
		runner.logger.Debug("run_skipped_window", slog.Int("hour", now.Hour()))
		return nil
	}

	// 2. In-process overlap gate
	if !state.TryStart() {
		runner.logger.Info("run_skipped_overlap")
		return nil
	}
	defer state.Finish()

	report.RunID = uuidv7.New()
	logger := runner.logger.With(slog.String("run_id", report.RunID))
	ctx = ctxutil.WithRunID(ctx, report.RunID)
	ctx = ctxutil.WithLogger(ctx, logger)

	defer func() {
		report.FinishedAt = runner.now().In(runner.location)
		state.setReport(report)
	}()

	// 3. Cross-process gate
	if !runner.coordinator.TryAcquireGlobalLock(ctx) {
		logger.Info("run_skipped_lock_busy")
		report.Outcome = OutcomeLockBusy
		return nil
	}
	defer runner.coordinator.ReleaseGlobalLock(context.WithoutCancel(ctx))

	logger.Info("run_started", slog.Int("batch_size", config.BatchSize))

	// 4. Claim, resolve, ingest
	report.Outcome = OutcomeCompleted
	for i := 0; i < config.BatchSize; i++ {
		candidate, err := runner.coordinator.ClaimNext(ctx)
		if err != nil {
			logger.Error("claim_failed", slog.String(constants.FieldError, err.Error()))
			report.Outcome = OutcomeAborted
			break
		}
		if candidate == nil {
			if i == 0 {
				report.Outcome = OutcomeBacklogEmpty
			}
			break
		}

		artist := ArtistReport{ArtistKey: candidate.ArtistKey}

		match, err := runner.resolver.Resolve(ctx, *candidate)
		if err != nil {
			logger.Warn("resolve_aborted", slog.String("artist_key", candidate.ArtistKey), slog.String(constants.FieldError, err.Error()))
			report.Artists = append(report.Artists, artist)
			report.Outcome = OutcomeAborted
			break
		}
		if match == nil {
			logger.Info("resolve_no_match", slog.String("artist_key", candidate.ArtistKey))
			if err := runner.coordinator.MarkAttempt(ctx, candidate.ArtistKey); err != nil {
				logger.Warn("mark_attempt_failed", slog.String("artist_key", candidate.ArtistKey), slog.String(constants.FieldError, err.Error()))
			}
			report.Artists = append(report.Artists, artist)
			continue
		}

		artist.Resolved = true
		artist.ExternalID = match.ExternalID
		artist.Source = match.Source

		rc, err := runner.pipeline.Run(ctx, ingest.Request{
			ArtistKey:  candidate.ArtistKey,
			ExternalID: match.ExternalID,
			Source:     match.Source,
		})
		if err != nil {
			report.Artists = append(report.Artists, artist)
			report.Outcome = OutcomeAborted
			return err
		}

		artist.Completion = rc.Completion
		artist.Tracks = rc.TracksUpserted
		artist.Errors = slice.Map(rc.Errors, ingest.PhaseError.Error)
		report.Artists = append(report.Artists, artist)
	}

	logger.Info("run_finished", slog.String("outcome", report.Outcome), slog.Int("artists", len(report.Artists)))
	return nil
}

func (runner *Runner) checkPreconditions(state *State, config RunConfig) error {
	validator := new(validate.Validator).
		Custom("state", state == nil, "Run state is required").
		Range("batch_size", config.BatchSize, 1, maxBatchSize).
		Range("window_start_hour", config.Window.StartHour, 0, 23).
		Range("window_end_hour", config.Window.EndHour, 0, 23)

	return validator.PreconditionErr("invalid run configuration")
}

// isFatal reports whether a RunOnce error is a fatal precondition. The tick
// loop logs it at error level and keeps running.
func isFatal(err error) bool {
	return apperr.IsPrecondition(err)
}
