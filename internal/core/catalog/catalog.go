// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package catalog holds the persisted music catalog: artists, their albums
// and playlists (collections), and tracks.
//
// Artists double as the resolution backlog: a row without a channel id is an
// unresolved candidate waiting to be claimed.
package catalog

import (
	"regexp"
	"strings"
	"time"
)

// channelIDPattern matches a canonical YouTube channel id ("UC" + 22 chars).
var channelIDPattern = regexp.MustCompile(`^UC[0-9A-Za-z_-]{20,}$`)

// IsChannelID reports whether id has the shape of a canonical channel id.
func IsChannelID(id string) bool {
	return channelIDPattern.MatchString(strings.TrimSpace(id))
}

// Candidate is an unresolved artist reserved by a claim.
type Candidate struct {
	ArtistKey      string  `json:"artist_key"`
	NormalizedName string  `json:"normalized_name"`
	DisplayName    *string `json:"display_name,omitempty"`
}

// Artist is a row of catalog.artist.
type Artist struct {
	ArtistKey            string     `json:"artist_key"`
	DisplayName          string     `json:"display_name"`
	NormalizedName       string     `json:"normalized_name"`
	ChannelID            *string    `json:"channel_id,omitempty"`
	Description          *string    `json:"description,omitempty"`
	ThumbnailURL         *string    `json:"thumbnail_url,omitempty"`
	LastResolveAttemptAt *time.Time `json:"last_resolve_attempt_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

// IsResolved reports whether the artist has left the backlog.
func (a *Artist) IsResolved() bool {
	return a.ChannelID != nil && *a.ChannelID != ""
}

// HasDescription reports whether a non-blank description is stored.
func (a *Artist) HasDescription() bool {
	return a.Description != nil && strings.TrimSpace(*a.Description) != ""
}

// ArtistIdentity is what BOOTSTRAP learns about an artist from the catalog.
type ArtistIdentity struct {
	ArtistKey   string
	DisplayName string
	ChannelID   string
}

// ArtistExtras are write-once fields: they only fill empty columns.
type ArtistExtras struct {
	Description  *string
	ThumbnailURL *string
}

// CollectionKind distinguishes albums from playlists.
type CollectionKind string

const (
	KindAlbum    CollectionKind = "album"
	KindPlaylist CollectionKind = "playlist"
)

// CollectionRef is an album or playlist listed on an artist page.
type CollectionRef struct {
	ExternalID string         `json:"external_id"`
	InternalID *string        `json:"internal_id,omitempty"`
	Kind       CollectionKind `json:"kind"`
	Title      string         `json:"title"`
	TrackCount *int           `json:"track_count,omitempty"`
	Unstable   bool           `json:"unstable"`
}

// Track is a single playable item of a collection.
type Track struct {
	ExternalID      string
	Title           string
	ArtistName      *string
	DurationSeconds *int
}

// CollectionPayload is everything needed to upsert one collection and its tracks.
type CollectionPayload struct {
	ArtistKey      string
	Kind           CollectionKind
	ExternalID     string
	Title          string
	Subtitle       *string
	ThumbnailURL   *string
	ExpectedTracks *int
	Tracks         []Track
}

// UpsertResult reports the outcome of [Store.UpsertCollection].
type UpsertResult struct {
	CollectionID string
	Created      bool
	TracksLinked int
}

// CompletionCounts is the raw expected/actual pair behind a completion snapshot.
// Expected is nil when the collection was never ingested or its size is unknown.
type CompletionCounts struct {
	Expected *int
	Actual   int
}
