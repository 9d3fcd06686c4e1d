// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import "context"

// Store is the persistence surface the ingestion pipeline and the completion
// tracker depend on. All writes are keyed by natural identifiers and safe to
// repeat.
type Store interface {
	// FindArtist returns apperr NOT_FOUND when the key is unknown.
	FindArtist(ctx context.Context, artistKey string) (*Artist, error)

	// UpsertArtistIdentity stores name and channel id. A stored channel-shaped
	// id is never replaced by an id of a different shape.
	UpsertArtistIdentity(ctx context.Context, identity ArtistIdentity) error

	// UpdateArtistIfUnset fills only empty columns.
	UpdateArtistIfUnset(ctx context.Context, artistKey string, extras ArtistExtras) error

	// UpsertCollection writes the collection, its tracks and their links atomically.
	UpsertCollection(ctx context.Context, payload CollectionPayload) (*UpsertResult, error)

	// MarkCollectionEmpty records a browse without usable tracks and reports
	// whether the collection is now quarantined.
	MarkCollectionEmpty(ctx context.Context, ref CollectionRef, artistKey string, threshold int) (bool, error)

	// GetCompletionFor returns zero counts with a nil Expected for unknown collections.
	GetCompletionFor(ctx context.Context, externalID string) (*CompletionCounts, error)

	// TouchArtist bumps the artist's updatedat.
	TouchArtist(ctx context.Context, artistKey string) error
}
