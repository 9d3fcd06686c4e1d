// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"fmt"
	"time"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/catalog"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/completion"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/slice"
)

// Phase names a pipeline stage.
type Phase string

const (
	PhaseBootstrap Phase = "BOOTSTRAP"
	PhaseAlbums    Phase = "ALBUMS"
	PhasePlaylists Phase = "PLAYLISTS"
	PhaseFinalize  Phase = "FINALIZE"
)

// Request identifies the artist to ingest.
type Request struct {
	ArtistKey  string
	ExternalID string
	// Source records how ExternalID was obtained ("search" or "hero").
	Source string
}

// PhaseError is a recorded, non-fatal failure. Item is empty for
// phase-level failures and holds the collection id for item-level ones.
type PhaseError struct {
	Phase Phase  `json:"phase"`
	Item  string `json:"item,omitempty"`
	Err   error  `json:"-"`
}

func (e PhaseError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("%s %s: %v", e.Phase, e.Item, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e PhaseError) Unwrap() error { return e.Err }

// Counters tallies collection outcomes within a phase.
type Counters struct {
	Seen     int `json:"seen"`
	Ingested int `json:"ingested"`
	Skipped  int `json:"skipped"`
	Unstable int `json:"unstable"`
	Failed   int `json:"failed"`
}

// RunContext is the state carried between phases.
//
// # Immutability
//
// Phases receive a RunContext by value and return a new one. Slices are
// copied before they are modified, so a context handed to a phase is never
// changed behind the caller's back.
type RunContext struct {
	RunID   string  `json:"run_id"`
	Request Request `json:"request"`

	// CurrentPhase is the phase that last started. When a phase fails, it
	// names the failing phase in the context that phase returns.
	CurrentPhase Phase `json:"current_phase"`

	ArtistName string                  `json:"artist_name"`
	ChannelID  string                  `json:"channel_id"`
	Albums     []catalog.CollectionRef `json:"albums"`
	Playlists  []catalog.CollectionRef `json:"playlists"`

	AlbumStats     Counters            `json:"album_stats"`
	PlaylistStats  Counters            `json:"playlist_stats"`
	TracksUpserted int                 `json:"tracks_upserted"`
	Completion     completion.Snapshot `json:"completion"`

	Errors     []PhaseError `json:"errors,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// withError returns a copy of rc with err appended.
func (rc RunContext) withError(err PhaseError) RunContext {
	errs := make([]PhaseError, len(rc.Errors), len(rc.Errors)+1)
	copy(errs, rc.Errors)
	rc.Errors = append(errs, err)
	return rc
}

// withRef returns refs with index i replaced, leaving the input untouched.
func withRef(refs []catalog.CollectionRef, i int, ref catalog.CollectionRef) []catalog.CollectionRef {
	out := make([]catalog.CollectionRef, len(refs))
	copy(out, refs)
	out[i] = ref
	return out
}

// ErrorsIn returns the recorded errors of one phase.
func (rc RunContext) ErrorsIn(phase Phase) []PhaseError {
	return slice.Filter(rc.Errors, func(err PhaseError) bool { return err.Phase == phase })
}
