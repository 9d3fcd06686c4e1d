// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ingest copies one resolved artist's catalog into the store.
//
// # Phases
//
// BOOTSTRAP, ALBUMS, PLAYLISTS and FINALIZE run in that order. A phase that
// fails (or panics) is recorded in the run context and the next phase still
// runs. Only a malformed request aborts a run, before any side effect.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/catalog"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/completion"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/constants"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/ctxutil"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/validate"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/ytmusic"
)

// Config holds pacing and quarantine settings.
type Config struct {
	AlbumDelay        time.Duration
	PlaylistDelay     time.Duration
	UnstableThreshold int
}

type phaseFunc func(ctx context.Context, rc RunContext) (RunContext, error)

// Pipeline runs the ingestion phases for one artist at a time.
type Pipeline struct {
	client  ytmusic.Client
	store   catalog.Store
	tracker *completion.Tracker
	config  Config
	logger  *slog.Logger
	now     func() time.Time
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(client ytmusic.Client, store catalog.Store, tracker *completion.Tracker, config Config, logger *slog.Logger) *Pipeline {
	if config.UnstableThreshold <= 0 {
		config.UnstableThreshold = constants.DefaultUnstableThreshold
	}
	return &Pipeline{
		client:  client,
		store:   store,
		tracker: tracker,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

/*
Run executes every phase for the requested artist.

Description: The returned error is non-nil only for a blank artist key or
external id. Everything else that goes wrong is in RunContext.Errors.
*/
func (pipeline *Pipeline) Run(ctx context.Context, req Request) (RunContext, error) {
	err := new(validate.Validator).
		Required("artist_key", req.ArtistKey).
		Required("external_id", req.ExternalID).
		PreconditionErr("ingest request is incomplete")
	if err != nil {
		return RunContext{}, err
	}

	rc := RunContext{
		RunID:     ctxutil.GetRunID(ctx),
		Request:   req,
		StartedAt: pipeline.now(),
	}

	phases := []struct {
		name Phase
		run  phaseFunc
	}{
		{PhaseBootstrap, pipeline.bootstrap},
		{PhaseAlbums, pipeline.albums},
		{PhasePlaylists, pipeline.playlists},
		{PhaseFinalize, pipeline.finalize},
	}

	for _, phase := range phases {
		rc = pipeline.runPhase(ctx, phase.name, phase.run, rc)
	}

	rc.FinishedAt = pipeline.now()
	return rc, nil
}

// runPhase isolates one phase: errors and panics become PhaseErrors.
func (pipeline *Pipeline) runPhase(ctx context.Context, name Phase, run phaseFunc, rc RunContext) (out RunContext) {
	logger := pipeline.log(ctx).With(slog.String("phase", string(name)))
	rc.CurrentPhase = name

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("phase_panicked", slog.Any("panic", recovered))
			out = rc.withError(PhaseError{Phase: name, Err: fmt.Errorf("panic: %v", recovered)})
		}
	}()

	if err := ctx.Err(); err != nil {
		return rc.withError(PhaseError{Phase: name, Err: err})
	}

	logger.Debug("phase_started")
	next, err := run(ctx, rc)
	if err != nil {
		logger.Warn("phase_failed", slog.String(constants.FieldError, err.Error()))
		next.CurrentPhase = name
		return next.withError(PhaseError{Phase: name, Err: err})
	}
	logger.Debug("phase_finished")
	return next
}

// log prefers the run-scoped logger carried by ctx. Without one, a bare run
// id is attached to the injected logger.
func (pipeline *Pipeline) log(ctx context.Context) *slog.Logger {
	fallback := pipeline.logger
	if runID := ctxutil.GetRunID(ctx); runID != "" {
		fallback = fallback.With(slog.String("run_id", runID))
	}
	return ctxutil.LoggerOr(ctx, fallback)
}

// wait pauses between items. A zero delay returns immediately.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
