// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ytmusic talks to the YouTube Music JSON proxy.
//
// # Layers
//
//   - [Client]: the three read operations the harvester needs.
//   - [HTTPClient]: paced, retrying HTTP implementation.
//   - [CachedClient]: read-through cache decorator (Redis in production).
package ytmusic

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrNotFound is returned when the proxy answers 404.
var ErrNotFound = errors.New("ytmusic: not found")

// Client is the external catalog surface.
type Client interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
	BrowseArtist(ctx context.Context, id string) (*ArtistPage, error)
	BrowseCollection(ctx context.Context, id string) (*CollectionPage, error)
}

// # Search

// SearchResult is the proxy's search response.
type SearchResult struct {
	Artists      []SearchArtist `json:"artists"`
	OrderedItems []OrderedItem  `json:"orderedItems"`
}

// SearchArtist is an artist-shaped search entry.
type SearchArtist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsOfficial bool   `json:"isOfficial"`
	PageType   string `json:"pageType"`
	Subtitle   string `json:"subtitle,omitempty"`
}

// OrderedItem is one entry of the mixed result list. Data is decoded lazily
// because its shape depends on Type.
type OrderedItem struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ArtistEntries returns every artist-shaped entry: the dedicated list first,
// then ordered items of type "artist". Undecodable items are skipped.
func (r *SearchResult) ArtistEntries() []SearchArtist {
	if r == nil {
		return nil
	}

	entries := make([]SearchArtist, 0, len(r.Artists))
	entries = append(entries, r.Artists...)

	for _, item := range r.OrderedItems {
		if !strings.EqualFold(item.Type, "artist") || len(item.Data) == 0 {
			continue
		}
		var entry SearchArtist
		if err := json.Unmarshal(item.Data, &entry); err != nil || entry.ID == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// # Browse

// ArtistPage is the proxy's artist browse response.
type ArtistPage struct {
	Artist       ArtistHeader    `json:"artist"`
	Description  *string         `json:"description,omitempty"`
	ThumbnailURL *string         `json:"thumbnailUrl,omitempty"`
	Albums       []CollectionRef `json:"albums"`
	Playlists    []CollectionRef `json:"playlists"`
}

// ArtistHeader identifies the browsed artist.
type ArtistHeader struct {
	Name      string `json:"name"`
	ChannelID string `json:"channelId"`
}

// CollectionRef is an album or playlist listed on an artist page.
type CollectionRef struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TrackCount *int   `json:"trackCount,omitempty"`
}

// CollectionPage is the proxy's album/playlist browse response.
type CollectionPage struct {
	Title        string  `json:"title"`
	Subtitle     *string `json:"subtitle,omitempty"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
	Tracks       []Track `json:"tracks"`
}

// Track is one entry of a collection page.
type Track struct {
	VideoID  string          `json:"videoId,omitempty"`
	TrackID  string          `json:"trackId,omitempty"`
	Title    string          `json:"title"`
	Artist   *string         `json:"artist,omitempty"`
	Duration json.RawMessage `json:"duration,omitempty"`
}

// ID returns the video id, falling back to the track id.
func (t Track) ID() string {
	if id := strings.TrimSpace(t.VideoID); id != "" {
		return id
	}
	return strings.TrimSpace(t.TrackID)
}

// DurationSeconds accepts either a number of seconds or a "m:ss"/"h:mm:ss"
// string. It returns nil when the value is absent or unparseable.
func (t Track) DurationSeconds() *int {
	if len(t.Duration) == 0 || string(t.Duration) == "null" {
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(t.Duration, &seconds); err == nil {
		s := int(seconds)
		return &s
	}

	var text string
	if err := json.Unmarshal(t.Duration, &text); err != nil {
		return nil
	}
	return parseClock(text)
}

func parseClock(text string) *int {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return nil
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil
		}
		total = total*60 + n
	}
	return &total
}
