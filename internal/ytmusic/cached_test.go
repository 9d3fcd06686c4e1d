// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ytmusic_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/ytmusic"
)

type countingClient struct {
	ytmusic.Client
	calls int
	page  *ytmusic.CollectionPage
	err   error
}

func (c *countingClient) BrowseCollection(ctx context.Context, id string) (*ytmusic.CollectionPage, error) {
	c.calls++
	return c.page, c.err
}

type mapCache struct {
	data map[string][]byte
	err  error
}

func (m *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	return m.data[key], m.err
}

func (m *mapCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	m.data[key] = data
	return m.err
}

func isNotFound(err error) bool {
	return errors.Is(err, ytmusic.ErrNotFound)
}

/*
TestCachedClient_BrowseCollection verifies read-through behaviour.
*/
func TestCachedClient_BrowseCollection(t *testing.T) {
	ctx := context.Background()
	inner := &countingClient{page: &ytmusic.CollectionPage{
		Title:  "Album",
		Tracks: []ytmusic.Track{{VideoID: "v1", Title: "One"}},
	}}
	cache := &mapCache{data: map[string][]byte{}}
	client := ytmusic.NewCachedClient(inner, cache, time.Hour, discardLogger())

	// 1. Miss goes to the inner client
	page, err := client.BrowseCollection(ctx, "MPREb_1")
	require.NoError(t, err)
	assert.Equal(t, "Album", page.Title)

	// 2. Hit is served from cache
	page, err = client.BrowseCollection(ctx, "MPREb_1")
	require.NoError(t, err)
	assert.Equal(t, "v1", page.Tracks[0].ID())
	assert.Equal(t, 1, inner.calls)
}

/*
TestCachedClient_SkipsEmptyAndErrors verifies that nothing is cached for
empty pages, and that a broken cache falls back to the inner client.
*/
func TestCachedClient_SkipsEmptyAndErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty_page", func(t *testing.T) {
		inner := &countingClient{page: &ytmusic.CollectionPage{Title: "Empty"}}
		cache := &mapCache{data: map[string][]byte{}}
		client := ytmusic.NewCachedClient(inner, cache, time.Hour, discardLogger())

		_, _ = client.BrowseCollection(ctx, "x")
		_, _ = client.BrowseCollection(ctx, "x")
		assert.Equal(t, 2, inner.calls)
		assert.Empty(t, cache.data)
	})

	t.Run("cache_down", func(t *testing.T) {
		inner := &countingClient{page: &ytmusic.CollectionPage{Tracks: []ytmusic.Track{{VideoID: "v1"}}}}
		cache := &mapCache{data: map[string][]byte{}, err: errors.New("connection refused")}
		client := ytmusic.NewCachedClient(inner, cache, time.Hour, discardLogger())

		page, err := client.BrowseCollection(ctx, "x")
		require.NoError(t, err)
		assert.Len(t, page.Tracks, 1)
	})

	t.Run("inner_error", func(t *testing.T) {
		inner := &countingClient{err: ytmusic.ErrNotFound}
		client := ytmusic.NewCachedClient(inner, &mapCache{data: map[string][]byte{}}, time.Hour, discardLogger())

		_, err := client.BrowseCollection(ctx, "x")
		assert.True(t, isNotFound(err))
	})
}
