// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scheduler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/claim"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/completion"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/ingest"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/resolve"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/apperr"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/scheduler"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/testsupport"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/ytmusic"
)

const channelID = "UCtestartisttestartist01"

func at(hour int) time.Time {
	return time.Date(2026, 3, 14, hour, 30, 0, 0, time.UTC)
}

/*
TestWithinWindow covers plain, wrapping and always-open windows.
*/
func TestWithinWindow(t *testing.T) {
	tests := []struct {
		name   string
		window scheduler.Window
		hour   int
		want   bool
	}{
		{"wrap_late_evening", scheduler.Window{StartHour: 22, EndHour: 5}, 23, true},
		{"wrap_early_morning", scheduler.Window{StartHour: 22, EndHour: 5}, 2, true},
		{"wrap_daytime", scheduler.Window{StartHour: 22, EndHour: 5}, 10, false},
		{"wrap_end_exclusive", scheduler.Window{StartHour: 22, EndHour: 5}, 5, false},
		{"wrap_start_inclusive", scheduler.Window{StartHour: 22, EndHour: 5}, 22, true},
		{"plain_inside", scheduler.Window{StartHour: 9, EndHour: 17}, 9, true},
		{"plain_end_exclusive", scheduler.Window{StartHour: 9, EndHour: 17}, 17, false},
		{"always_open", scheduler.Window{StartHour: 4, EndHour: 4}, 13, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scheduler.WithinWindow(at(tt.hour), tt.window))
		})
	}
}

type harness struct {
	store  *testsupport.MemoryStore
	client *testsupport.FakeCatalog
	lock   *testsupport.MemoryLock
	runner *scheduler.Runner
	state  *scheduler.State
}

func newHarness() *harness {
	return newHarnessWithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newHarnessWithLogger(logger *slog.Logger) *harness {
	store := testsupport.NewMemoryStore()
	store.SeedArtist("abc", "Test Artist", at(0).Add(-24*time.Hour))

	client := testsupport.NewFakeCatalog()
	client.SearchResults["Test Artist"] = &ytmusic.SearchResult{Artists: []ytmusic.SearchArtist{
		{ID: channelID, Name: "Test Artist", IsOfficial: true, PageType: "MUSIC_PAGE_TYPE_ARTIST"},
	}}
	client.ArtistPages[channelID] = &ytmusic.ArtistPage{
		Artist: ytmusic.ArtistHeader{Name: "Test Artist", ChannelID: channelID},
		Albums: []ytmusic.CollectionRef{{ID: "alb-1", Title: "Debut", TrackCount: intPtr(10)}},
	}
	client.CollectionPages["alb-1"] = &ytmusic.CollectionPage{Title: "Debut", Tracks: testsupport.Tracks("alb-1", 10)}

	lock := testsupport.NewMemoryLock()
	runner := scheduler.NewRunner(
		claim.NewCoordinator(store, lock, logger),
		resolve.NewResolver(client, false, logger),
		ingest.NewPipeline(client, store, completion.NewTracker(store), ingest.Config{UnstableThreshold: 2}, logger),
		time.UTC,
		logger,
	)
	runner.SetClock(func() time.Time { return at(23) })

	return &harness{store: store, client: client, lock: lock, runner: runner, state: scheduler.NewState()}
}

func intPtr(v int) *int { return &v }

func nightly() scheduler.RunConfig {
	return scheduler.RunConfig{CronExpression: "*/5 * * * *", Window: scheduler.Window{StartHour: 22, EndHour: 5}, BatchSize: 1}
}

/*
TestRunner_EndToEnd claims, resolves and ingests one artist.
*/
func TestRunner_EndToEnd(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.runner.RunOnce(context.Background(), h.state, nightly()))

	// 1. Artist resolved
	artist := h.store.Artist("abc")
	require.NotNil(t, artist.ChannelID)
	assert.Equal(t, channelID, *artist.ChannelID)

	// 2. Album complete
	report := h.state.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, scheduler.OutcomeCompleted, report.Outcome)
	require.Len(t, report.Artists, 1)
	assert.True(t, report.Artists[0].Resolved)
	assert.Equal(t, completion.StateComplete, report.Artists[0].Completion.State)
	assert.Equal(t, 10, report.Artists[0].Completion.Actual)
	assert.Empty(t, report.Artists[0].Errors)

	// 3. Lock released, run flag cleared
	acquires, releases := h.lock.Counts()
	assert.Equal(t, 1, acquires)
	assert.Equal(t, 1, releases)
	assert.False(t, h.lock.Held())
	assert.False(t, h.state.Running())

	// 4. Next tick finds nothing to do
	require.NoError(t, h.runner.RunOnce(context.Background(), h.state, nightly()))
	assert.Equal(t, scheduler.OutcomeBacklogEmpty, h.state.LastReport().Outcome)
}

/*
TestRunner_LogsCarryRunID verifies that every event of a run, including those
emitted by the coordinator, resolver and pipeline, carries the run id.
*/
func TestRunner_LogsCarryRunID(t *testing.T) {
	var buffer bytes.Buffer
	h := newHarnessWithLogger(slog.New(slog.NewJSONHandler(&buffer, &slog.HandlerOptions{Level: slog.LevelDebug})))

	require.NoError(t, h.runner.RunOnce(context.Background(), h.state, nightly()))
	runID := h.state.LastReport().RunID
	require.NotEmpty(t, runID)

	seen := map[string]bool{}
	scanner := bufio.NewScanner(&buffer)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))

		msg, _ := line["msg"].(string)
		seen[msg] = true
		assert.Equal(t, runID, line["run_id"], "event %s", msg)
	}
	require.NoError(t, scanner.Err())

	for _, event := range []string{"run_started", "claim_acquired", "resolve_matched", "ingest_finalized", "run_finished"} {
		assert.True(t, seen[event], "missing event %s", event)
	}
}

/*
TestRunner_Gates verifies that window, overlap and lock contention skip
the tick without claiming anything.
*/
func TestRunner_Gates(t *testing.T) {
	ctx := context.Background()

	t.Run("outside_window", func(t *testing.T) {
		h := newHarness()
		h.runner.SetClock(func() time.Time { return at(10) })

		require.NoError(t, h.runner.RunOnce(ctx, h.state, nightly()))
		acquires, _ := h.lock.Counts()
		assert.Zero(t, acquires)
		assert.Nil(t, h.store.Artist("abc").LastResolveAttemptAt)
	})

	t.Run("overlap", func(t *testing.T) {
		h := newHarness()
		require.True(t, h.state.TryStart())

		require.NoError(t, h.runner.RunOnce(ctx, h.state, nightly()))
		acquires, _ := h.lock.Counts()
		assert.Zero(t, acquires)
		assert.True(t, h.state.Running())
	})

	t.Run("lock_busy", func(t *testing.T) {
		h := newHarness()
		other := h.lock.Peer()
		ok, err := other.TryAcquire(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, h.runner.RunOnce(ctx, h.state, nightly()))
		assert.Equal(t, scheduler.OutcomeLockBusy, h.state.LastReport().Outcome)
		assert.Nil(t, h.store.Artist("abc").LastResolveAttemptAt)
		assert.True(t, h.lock.Held())
	})
}

/*
TestRunner_Preconditions verifies the only errors RunOnce returns.
*/
func TestRunner_Preconditions(t *testing.T) {
	h := newHarness()

	tests := []struct {
		name   string
		state  *scheduler.State
		config scheduler.RunConfig
	}{
		{"nil_state", nil, nightly()},
		{"zero_batch", h.state, scheduler.RunConfig{BatchSize: 0}},
		{"batch_too_large", h.state, scheduler.RunConfig{BatchSize: 51}},
		{"bad_hour", h.state, scheduler.RunConfig{BatchSize: 1, Window: scheduler.Window{StartHour: 24}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.runner.RunOnce(context.Background(), tt.state, tt.config)
			require.Error(t, err)
			assert.True(t, apperr.IsPrecondition(err))
		})
	}

	acquires, _ := h.lock.Counts()
	assert.Zero(t, acquires)
}

/*
TestRunner_NoMatch verifies that an unresolvable artist stays in the
backlog with a fresh attempt time.
*/
func TestRunner_NoMatch(t *testing.T) {
	h := newHarness()
	h.client.SearchResults["Test Artist"] = &ytmusic.SearchResult{}

	require.NoError(t, h.runner.RunOnce(context.Background(), h.state, nightly()))

	artist := h.store.Artist("abc")
	assert.Nil(t, artist.ChannelID)
	assert.NotNil(t, artist.LastResolveAttemptAt)

	report := h.state.LastReport()
	require.Len(t, report.Artists, 1)
	assert.False(t, report.Artists[0].Resolved)
	assert.False(t, h.lock.Held())
}

/*
TestRunner_ReleasesLockOnCancel verifies the release path when the run
context is already cancelled.
*/
func TestRunner_ReleasesLockOnCancel(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, h.runner.RunOnce(ctx, h.state, nightly()))

	assert.Equal(t, scheduler.OutcomeAborted, h.state.LastReport().Outcome)
	acquires, releases := h.lock.Counts()
	assert.Equal(t, 1, acquires)
	assert.Equal(t, 1, releases)
}

/*
TestNewScheduler_InvalidExpression rejects unparseable cron specs.
*/
func TestNewScheduler_InvalidExpression(t *testing.T) {
	h := newHarness()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := scheduler.NewScheduler(h.runner, h.state, scheduler.RunConfig{CronExpression: "every tuesday"}, time.UTC, logger)
	assert.Error(t, err)

	s, err := scheduler.NewScheduler(h.runner, h.state, nightly(), time.UTC, logger)
	require.NoError(t, err)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
