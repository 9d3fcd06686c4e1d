// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the harvester.

Categories:

  - Server Timing: timeouts for the operational HTTP server.
  - Harvest Pacing: inter-item delays and external client limits.
  - Locking: the well-known advisory lock key and lease defaults.

Using this package keeps magic numbers out of the pipeline code.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "hajde-harvester"
	AppVersion = "0.3.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout bounds ops requests and the per-connection statement timeout.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight work during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Harvest Pacing

const (
	// DefaultAlbumDelay is applied after every album, successful or not.
	DefaultAlbumDelay = 1500 * time.Millisecond

	// DefaultPlaylistDelay is applied after every playlist.
	DefaultPlaylistDelay = 750 * time.Millisecond

	// DefaultUnstableThreshold is the number of empty browses before a
	// collection is quarantined.
	DefaultUnstableThreshold = 2

	// DefaultCatalogRPS caps outgoing requests to the catalog proxy.
	DefaultCatalogRPS = 3.0

	// DefaultCatalogTimeout is the per-request timeout of the catalog client.
	DefaultCatalogTimeout = 20 * time.Second

	// DefaultRetryCount is the number of attempts for throttled catalog calls.
	DefaultRetryCount = 3

	// DefaultRetryBase is the linear backoff step between throttled attempts.
	DefaultRetryBase = 2 * time.Second

	// DefaultCatalogCacheTTL is how long browse payloads stay in Redis.
	DefaultCatalogCacheTTL = 6 * time.Hour
)

// # Locking

const (
	// GlobalResolverLockKey is the advisory lock key of the "one resolver run
	// at a time" domain.
	GlobalResolverLockKey int64 = 727274

	// DefaultLockTTL bounds a Redis lease when the holder dies mid-run.
	DefaultLockTTL = 30 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderRetryAfter    = "Retry-After"
	HeaderUserAgent     = "User-Agent"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixLock            = "harvest:lock:"
	RedisPrefixSearch          = "ytmusic:search:"
	RedisPrefixBrowseArtist    = "ytmusic:artist:"
	RedisPrefixBrowseCollected = "ytmusic:collection:"
)
