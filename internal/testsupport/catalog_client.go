// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package testsupport

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/ytmusic"
)

// FakeCatalog is a scripted ytmusic.Client. Unknown ids answer ErrNotFound,
// unknown queries answer an empty result.
type FakeCatalog struct {
	mu sync.Mutex

	SearchResults    map[string]*ytmusic.SearchResult
	SearchErrors     map[string]error
	ArtistPages      map[string]*ytmusic.ArtistPage
	ArtistErrors     map[string]error
	CollectionPages  map[string]*ytmusic.CollectionPage
	CollectionErrors map[string]error

	calls []string
}

// NewFakeCatalog creates an empty fake.
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		SearchResults:    map[string]*ytmusic.SearchResult{},
		SearchErrors:     map[string]error{},
		ArtistPages:      map[string]*ytmusic.ArtistPage{},
		ArtistErrors:     map[string]error{},
		CollectionPages:  map[string]*ytmusic.CollectionPage{},
		CollectionErrors: map[string]error{},
	}
}

// Calls returns every call made, as "search:q", "artist:id" or "collection:id".
func (f *FakeCatalog) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeCatalog) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *FakeCatalog) Search(ctx context.Context, query string) (*ytmusic.SearchResult, error) {
	f.record("search:" + query)
	if err := f.SearchErrors[query]; err != nil {
		return nil, err
	}
	if result, ok := f.SearchResults[query]; ok {
		return result, nil
	}
	return &ytmusic.SearchResult{}, nil
}

func (f *FakeCatalog) BrowseArtist(ctx context.Context, id string) (*ytmusic.ArtistPage, error) {
	f.record("artist:" + id)
	if err := f.ArtistErrors[id]; err != nil {
		return nil, err
	}
	if page, ok := f.ArtistPages[id]; ok {
		return page, nil
	}
	return nil, fmt.Errorf("%w: artist %s", ytmusic.ErrNotFound, id)
}

func (f *FakeCatalog) BrowseCollection(ctx context.Context, id string) (*ytmusic.CollectionPage, error) {
	f.record("collection:" + id)
	if err := f.CollectionErrors[id]; err != nil {
		return nil, err
	}
	if page, ok := f.CollectionPages[id]; ok {
		return page, nil
	}
	return nil, fmt.Errorf("%w: collection %s", ytmusic.ErrNotFound, id)
}

// Tracks builds n tracks with ids prefix-1..prefix-n.
func Tracks(prefix string, n int) []ytmusic.Track {
	tracks := make([]ytmusic.Track, n)
	for i := range tracks {
		tracks[i] = ytmusic.Track{
			VideoID: fmt.Sprintf("%s-%d", prefix, i+1),
			Title:   fmt.Sprintf("Track %d", i+1),
		}
	}
	return tracks
}
