// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/catalog"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/dberr"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/normalize"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/uuidv7"
)

// Collection is a snapshot of a stored album or playlist.
type Collection struct {
	ID               string
	ExternalID       string
	ArtistKey        string
	Kind             catalog.CollectionKind
	Title            string
	Subtitle         *string
	ThumbnailURL     *string
	ExpectedTracks   *int
	EmptyBrowseCount int
	Unstable         bool
	// Links maps track external id to position.
	Links map[string]int
}

// MemoryStore implements catalog.Store and claim.Store in memory.
type MemoryStore struct {
	mu          sync.Mutex
	clock       func() time.Time
	artists     map[string]*catalog.Artist
	collections map[string]*Collection
	tracks      map[string]catalog.Track
	locked      map[string]bool
	failures    map[string]error
	missing     map[string]bool
	extrasCalls int

	// Writes counts statements that changed at least one row.
	Writes int
}

// NewMemoryStore creates an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clock:       time.Now,
		artists:     make(map[string]*catalog.Artist),
		collections: make(map[string]*Collection),
		tracks:      make(map[string]catalog.Track),
		locked:      make(map[string]bool),
		failures:    make(map[string]error),
		missing:     make(map[string]bool),
	}
}

// SetClock replaces the time source.
func (s *MemoryStore) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// SeedArtist inserts an unresolved artist created at createdAt.
func (s *MemoryStore) SeedArtist(artistKey, displayName string, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.artists[artistKey] = &catalog.Artist{
		ArtistKey:      artistKey,
		DisplayName:    displayName,
		NormalizedName: normalize.Name(displayName),
		CreatedAt:      createdAt,
	}
}

// Lock marks a row as locked by another transaction; claims skip it.
func (s *MemoryStore) Lock(artistKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked[artistKey] = true
}

// Unlock releases a row locked with [MemoryStore.Lock].
func (s *MemoryStore) Unlock(artistKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locked, artistKey)
}

// FailUpsert makes UpsertCollection fail for the given external id.
func (s *MemoryStore) FailUpsert(externalID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[externalID] = err
}

// Artist returns a copy of the stored artist, or nil.
func (s *MemoryStore) Artist(artistKey string) *catalog.Artist {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.artists[artistKey]
	if !ok {
		return nil
	}
	copied := *a
	return &copied
}

// Collection returns a copy of the stored collection, or nil.
func (s *MemoryStore) Collection(externalID string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[externalID]
	if !ok {
		return nil
	}
	copied := *c
	copied.Links = make(map[string]int, len(c.Links))
	for k, v := range c.Links {
		copied.Links[k] = v
	}
	return &copied
}

// HideArtist makes FindArtist answer NOT_FOUND for the key, as if the row
// had been deleted by another process.
func (s *MemoryStore) HideArtist(artistKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missing[artistKey] = true
}

// ExtrasCalls returns how often UpdateArtistIfUnset was invoked.
func (s *MemoryStore) ExtrasCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extrasCalls
}

// TrackCount returns the number of distinct stored tracks.
func (s *MemoryStore) TrackCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tracks)
}

// # claim.Store

func (s *MemoryStore) ClaimNext(ctx context.Context) (*catalog.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unresolved := make([]*catalog.Artist, 0, len(s.artists))
	for _, a := range s.artists {
		if a.ChannelID == nil && !s.locked[a.ArtistKey] {
			unresolved = append(unresolved, a)
		}
	}
	if len(unresolved) == 0 {
		return nil, nil
	}

	sort.SliceStable(unresolved, func(i, j int) bool {
		oi, oj := claimOrder(unresolved[i]), claimOrder(unresolved[j])
		if !oi.Equal(oj) {
			return oi.Before(oj)
		}
		if !unresolved[i].CreatedAt.Equal(unresolved[j].CreatedAt) {
			return unresolved[i].CreatedAt.Before(unresolved[j].CreatedAt)
		}
		return unresolved[i].ArtistKey < unresolved[j].ArtistKey
	})

	claimed := unresolved[0]
	now := s.clock()
	claimed.LastResolveAttemptAt = &now
	s.Writes++

	candidate := &catalog.Candidate{ArtistKey: claimed.ArtistKey, NormalizedName: claimed.NormalizedName}
	if claimed.DisplayName != "" {
		name := claimed.DisplayName
		candidate.DisplayName = &name
	}
	return candidate, nil
}

// claimOrder mirrors COALESCE(lastresolveattemptat, updatedat, createdat).
func claimOrder(a *catalog.Artist) time.Time {
	if a.LastResolveAttemptAt != nil {
		return *a.LastResolveAttemptAt
	}
	if a.UpdatedAt != nil {
		return *a.UpdatedAt
	}
	return a.CreatedAt
}

func (s *MemoryStore) MarkAttempt(ctx context.Context, artistKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.artists[artistKey]; ok {
		now := s.clock()
		a.LastResolveAttemptAt = &now
		s.Writes++
	}
	return nil
}

// # catalog.Store

func (s *MemoryStore) FindArtist(ctx context.Context, artistKey string) (*catalog.Artist, error) {
	s.mu.Lock()
	hidden := s.missing[artistKey]
	s.mu.Unlock()
	if hidden {
		return nil, dberr.ErrNotFound
	}

	if a := s.Artist(artistKey); a != nil {
		return a, nil
	}
	return nil, dberr.ErrNotFound
}

func (s *MemoryStore) UpsertArtistIdentity(ctx context.Context, identity catalog.ArtistIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	a, ok := s.artists[identity.ArtistKey]
	if !ok {
		a = &catalog.Artist{ArtistKey: identity.ArtistKey, CreatedAt: now}
		s.artists[identity.ArtistKey] = a
	}

	if name := strings.TrimSpace(identity.DisplayName); name != "" {
		a.DisplayName = identity.DisplayName
	}
	if a.NormalizedName == "" {
		a.NormalizedName = normalize.Name(identity.DisplayName)
	}

	keepStored := a.ChannelID != nil && catalog.IsChannelID(*a.ChannelID) && !catalog.IsChannelID(identity.ChannelID)
	if !keepStored {
		channelID := identity.ChannelID
		a.ChannelID = &channelID
	}

	a.UpdatedAt = &now
	s.Writes++
	return nil
}

func (s *MemoryStore) UpdateArtistIfUnset(ctx context.Context, artistKey string, extras catalog.ArtistExtras) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.extrasCalls++
	a, ok := s.artists[artistKey]
	if !ok {
		return nil
	}

	changed := false
	if isBlank(a.Description) && !isBlank(extras.Description) {
		a.Description = extras.Description
		changed = true
	}
	if isBlank(a.ThumbnailURL) && !isBlank(extras.ThumbnailURL) {
		a.ThumbnailURL = extras.ThumbnailURL
		changed = true
	}
	if changed {
		s.Writes++
	}
	return nil
}

func (s *MemoryStore) UpsertCollection(ctx context.Context, payload catalog.CollectionPayload) (*catalog.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures[payload.ExternalID]; err != nil {
		return nil, err
	}

	result := &catalog.UpsertResult{}
	c, ok := s.collections[payload.ExternalID]
	if !ok {
		c = &Collection{ID: uuidv7.New(), ExternalID: payload.ExternalID, Links: map[string]int{}}
		s.collections[payload.ExternalID] = c
		result.Created = true
	}

	before := *c
	c.Kind = payload.Kind
	c.Title = payload.Title
	if payload.ArtistKey != "" {
		c.ArtistKey = payload.ArtistKey
	}
	if payload.Subtitle != nil {
		c.Subtitle = payload.Subtitle
	}
	if payload.ThumbnailURL != nil {
		c.ThumbnailURL = payload.ThumbnailURL
	}
	if payload.ExpectedTracks != nil {
		c.ExpectedTracks = payload.ExpectedTracks
	}
	c.EmptyBrowseCount = 0
	c.Unstable = false
	if result.Created || before.Title != c.Title || before.EmptyBrowseCount != 0 || before.Unstable {
		s.Writes++
	}

	for position, track := range payload.Tracks {
		if existing, ok := s.tracks[track.ExternalID]; !ok || existing.Title != track.Title {
			s.tracks[track.ExternalID] = track
			s.Writes++
		}
		if c.Links[track.ExternalID] != position+1 {
			c.Links[track.ExternalID] = position + 1
			s.Writes++
		}
	}

	result.CollectionID = c.ID
	result.TracksLinked = len(c.Links)
	return result, nil
}

func (s *MemoryStore) MarkCollectionEmpty(ctx context.Context, ref catalog.CollectionRef, artistKey string, threshold int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[ref.ExternalID]
	if !ok {
		c = &Collection{ID: uuidv7.New(), ExternalID: ref.ExternalID, Kind: ref.Kind, Title: ref.Title, ArtistKey: artistKey, Links: map[string]int{}}
		s.collections[ref.ExternalID] = c
	}

	c.EmptyBrowseCount++
	c.Unstable = c.EmptyBrowseCount >= threshold
	s.Writes++
	return c.Unstable, nil
}

func (s *MemoryStore) GetCompletionFor(ctx context.Context, externalID string) (*catalog.CompletionCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[externalID]
	if !ok {
		return &catalog.CompletionCounts{}, nil
	}
	return &catalog.CompletionCounts{Expected: c.ExpectedTracks, Actual: len(c.Links)}, nil
}

func (s *MemoryStore) TouchArtist(ctx context.Context, artistKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.artists[artistKey]
	if !ok {
		return dberr.ErrNotFound
	}
	now := s.clock()
	a.UpdatedAt = &now
	return nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
