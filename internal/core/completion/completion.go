// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package completion derives how much of a collection has been ingested.
// Snapshots are computed on demand and never stored.
package completion

import (
	"context"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/catalog"
)

// State classifies a snapshot.
type State string

const (
	StateUnknown  State = "unknown"
	StatePartial  State = "partial"
	StateComplete State = "complete"
)

// Snapshot is the expected/actual track count of a collection (or a rollup).
type Snapshot struct {
	Expected *int  `json:"expected_tracks"`
	Actual   int   `json:"actual_tracks"`
	Percent  int   `json:"percent"`
	State    State `json:"state"`
}

// Classify returns unknown without an expected count, complete once actual
// reaches expected, partial otherwise.
func Classify(expected *int, actual int) State {
	switch {
	case expected == nil:
		return StateUnknown
	case actual >= *expected:
		return StateComplete
	default:
		return StatePartial
	}
}

// NewSnapshot builds a snapshot from raw counts.
func NewSnapshot(expected *int, actual int) Snapshot {
	return Snapshot{
		Expected: expected,
		Actual:   actual,
		Percent:  percent(expected, actual),
		State:    Classify(expected, actual),
	}
}

func percent(expected *int, actual int) int {
	if expected == nil {
		return 0
	}
	if *expected <= 0 {
		return 100
	}
	p := actual * 100 / *expected
	if p > 100 {
		return 100
	}
	return p
}

// Aggregate rolls snapshots up. Only snapshots with a known expected count
// contribute; the rollup is unknown when none do.
func Aggregate(snapshots []Snapshot) Snapshot {
	var expected, actual, known int
	allComplete := true

	for _, s := range snapshots {
		if s.Expected == nil {
			continue
		}
		known++
		expected += *s.Expected
		actual += s.Actual
		if Classify(s.Expected, s.Actual) != StateComplete {
			allComplete = false
		}
	}

	if known == 0 {
		return Snapshot{State: StateUnknown}
	}

	rollup := Snapshot{Expected: &expected, Actual: actual, Percent: percent(&expected, actual), State: StatePartial}
	if allComplete {
		rollup.State = StateComplete
	}
	return rollup
}

// Tracker reads completion from the catalog store.
type Tracker struct {
	store catalog.Store
}

// NewTracker creates a new completion tracker.
func NewTracker(store catalog.Store) *Tracker {
	return &Tracker{store: store}
}

// AlbumCompletion returns the snapshot of one collection. Never-ingested
// collections are unknown with zero actual tracks.
func (tracker *Tracker) AlbumCompletion(ctx context.Context, externalID string) (Snapshot, error) {
	counts, err := tracker.store.GetCompletionFor(ctx, externalID)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(counts.Expected, counts.Actual), nil
}
