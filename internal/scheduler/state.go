// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scheduler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/completion"
)

// Run outcomes.
const (
	OutcomeSkippedWindow  = "skipped_window"
	OutcomeSkippedOverlap = "skipped_overlap"
	OutcomeLockBusy       = "lock_busy"
	OutcomeBacklogEmpty   = "backlog_empty"
	OutcomeCompleted      = "completed"
	OutcomeAborted        = "aborted"
)

// ArtistReport summarizes one claimed artist.
type ArtistReport struct {
	ArtistKey  string              `json:"artist_key"`
	ExternalID string              `json:"external_id,omitempty"`
	Source     string              `json:"source,omitempty"`
	Resolved   bool                `json:"resolved"`
	Completion completion.Snapshot `json:"completion"`
	Tracks     int                 `json:"tracks_upserted"`
	Errors     []string            `json:"errors,omitempty"`
}

// Report describes the most recent tick.
type Report struct {
	RunID      string         `json:"run_id,omitempty"`
	Outcome    string         `json:"outcome"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Artists    []ArtistReport `json:"artists,omitempty"`
}

// State is owned by the host and shared by every tick of one process.
type State struct {
	running atomic.Bool

	mu   sync.RWMutex
	last *Report
}

// NewState creates an idle state.
func NewState() *State {
	return &State{}
}

// TryStart marks a run in flight. It returns false if one already is.
func (s *State) TryStart() bool {
	return s.running.CompareAndSwap(false, true)
}

// Finish clears the in-flight mark.
func (s *State) Finish() {
	s.running.Store(false)
}

// Running reports whether a run is in flight.
func (s *State) Running() bool {
	return s.running.Load()
}

// LastReport returns a copy of the latest report, or nil.
func (s *State) LastReport() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return nil
	}
	copied := *s.last
	copied.Artists = append([]ArtistReport(nil), s.last.Artists...)
	return &copied
}

func (s *State) setReport(report Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &report
}
