// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package claim hands unresolved artists to concurrent harvest runs.
//
// # Guarantees
//
// A candidate is never handed to two callers at once: the claim query skips
// rows locked by other transactions. Exclusivity of a whole run is a separate
// concern, covered by the global lock.
package claim

import (
	"context"
	"log/slog"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/catalog"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/ctxutil"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/lock"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/validate"
)

// Store reserves backlog rows.
type Store interface {
	// ClaimNext returns nil, nil when no unresolved row is visible.
	ClaimNext(ctx context.Context) (*catalog.Candidate, error)

	// MarkAttempt stamps the attempt time; repeating it is harmless.
	MarkAttempt(ctx context.Context, artistKey string) error
}

// Coordinator combines the backlog store with the global run lock.
type Coordinator struct {
	store  Store
	lock   lock.DistributedLock
	logger *slog.Logger
}

// NewCoordinator creates a new claim coordinator.
func NewCoordinator(store Store, globalLock lock.DistributedLock, logger *slog.Logger) *Coordinator {
	return &Coordinator{store: store, lock: globalLock, logger: logger}
}

// ClaimNext reserves the least recently attempted unresolved artist.
func (coordinator *Coordinator) ClaimNext(ctx context.Context) (*catalog.Candidate, error) {
	candidate, err := coordinator.store.ClaimNext(ctx)
	if err != nil {
		return nil, err
	}

	if candidate == nil {
		coordinator.log(ctx).Debug("claim_backlog_empty")
		return nil, nil
	}

	coordinator.log(ctx).Info("claim_acquired", slog.String("artist_key", candidate.ArtistKey))
	return candidate, nil
}

// MarkAttempt moves the artist to the back of the queue.
func (coordinator *Coordinator) MarkAttempt(ctx context.Context, artistKey string) error {
	if err := new(validate.Validator).Required("artist_key", artistKey).PreconditionErr("cannot mark attempt"); err != nil {
		return err
	}
	return coordinator.store.MarkAttempt(ctx, artistKey)
}

// TryAcquireGlobalLock reports whether this process now owns the run.
// Backend failures count as "not acquired".
func (coordinator *Coordinator) TryAcquireGlobalLock(ctx context.Context) bool {
	acquired, err := coordinator.lock.TryAcquire(ctx)
	if err != nil {
		coordinator.log(ctx).Warn("global_lock_error", slog.String("error", err.Error()))
		return false
	}
	return acquired
}

// ReleaseGlobalLock always attempts the release and only logs failures.
func (coordinator *Coordinator) ReleaseGlobalLock(ctx context.Context) {
	if err := coordinator.lock.Release(ctx); err != nil {
		coordinator.log(ctx).Error("global_lock_release_failed", slog.String("error", err.Error()))
	}
}

// log prefers the run-scoped logger carried by ctx.
func (coordinator *Coordinator) log(ctx context.Context) *slog.Logger {
	return ctxutil.LoggerOr(ctx, coordinator.logger)
}
