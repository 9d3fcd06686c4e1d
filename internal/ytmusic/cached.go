// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ytmusic

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/constants"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/normalize"
)

// Cache stores raw response bodies. A miss returns nil data and nil error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// RedisCache adapts a go-redis client to [Cache].
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed response cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// CachedClient is a read-through cache in front of another [Client].
//
// Cache failures never fail a request; they are logged and the inner client
// is used. Errors and empty pages are not cached.
type CachedClient struct {
	inner  Client
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedClient wraps inner with cache.
func NewCachedClient(inner Client, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedClient {
	return &CachedClient{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedClient) Search(ctx context.Context, query string) (*SearchResult, error) {
	key := constants.RedisPrefixSearch + normalize.Name(query)
	return readThrough(ctx, c, key, func() (*SearchResult, error) {
		return c.inner.Search(ctx, query)
	}, func(r *SearchResult) bool {
		return len(r.Artists) > 0 || len(r.OrderedItems) > 0
	})
}

func (c *CachedClient) BrowseArtist(ctx context.Context, id string) (*ArtistPage, error) {
	return readThrough(ctx, c, constants.RedisPrefixBrowseArtist+id, func() (*ArtistPage, error) {
		return c.inner.BrowseArtist(ctx, id)
	}, func(p *ArtistPage) bool {
		return p.Artist.Name != "" || p.Artist.ChannelID != ""
	})
}

func (c *CachedClient) BrowseCollection(ctx context.Context, id string) (*CollectionPage, error) {
	return readThrough(ctx, c, constants.RedisPrefixBrowseCollected+id, func() (*CollectionPage, error) {
		return c.inner.BrowseCollection(ctx, id)
	}, func(p *CollectionPage) bool {
		return len(p.Tracks) > 0
	})
}

func readThrough[T any](ctx context.Context, c *CachedClient, key string, fetch func() (*T, error), cacheable func(*T) bool) (*T, error) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("catalog_cache_read_failed", slog.String("key", key), slog.String(constants.FieldError, err.Error()))
	}
	if data != nil {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	result, err := fetch()
	if err != nil {
		return nil, err
	}

	if result == nil || !cacheable(result) {
		return result, nil
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("catalog_cache_write_failed", slog.String("key", key), slog.String(constants.FieldError, err.Error()))
		}
	}

	return result, nil
}
