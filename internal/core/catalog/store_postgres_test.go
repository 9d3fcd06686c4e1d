// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/catalog"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/apperr"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/testsupport"
)

const (
	channelID      = "UCchannelchannelchannel1"
	otherChannelID = "UCotherchannelotherchan2"
)

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

func newRepository(t *testing.T) (*catalog.PostgresRepository, *pgxpool.Pool) {
	pool := testsupport.OpenDatabase(t)
	return catalog.NewPostgresRepository(pool), pool
}

func albumPayload(tracks int) catalog.CollectionPayload {
	payload := catalog.CollectionPayload{
		ArtistKey:      "abc",
		Kind:           catalog.KindAlbum,
		ExternalID:     "alb-1",
		Title:          "Debut",
		ExpectedTracks: intPtr(tracks),
	}
	for i := 1; i <= tracks; i++ {
		payload.Tracks = append(payload.Tracks, catalog.Track{
			ExternalID: fmt.Sprintf("alb-1-%d", i),
			Title:      fmt.Sprintf("Track %d", i),
		})
	}
	return payload
}

/*
TestPostgresRepository_ChannelShapeGuard verifies that a stored channel id is
never replaced by an id of another shape, and that names are not erased.
*/
func TestPostgresRepository_ChannelShapeGuard(t *testing.T) {
	repository, _ := newRepository(t)
	ctx := context.Background()

	require.NoError(t, repository.UpsertArtistIdentity(ctx, catalog.ArtistIdentity{
		ArtistKey: "abc", DisplayName: "Test Artist", ChannelID: channelID,
	}))

	// 1. Browse id of another shape loses
	require.NoError(t, repository.UpsertArtistIdentity(ctx, catalog.ArtistIdentity{
		ArtistKey: "abc", DisplayName: "", ChannelID: "MPLAdebutalbum",
	}))
	artist, err := repository.FindArtist(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, artist.ChannelID)
	assert.Equal(t, channelID, *artist.ChannelID)
	assert.Equal(t, "Test Artist", artist.DisplayName)
	assert.Equal(t, "test artist", artist.NormalizedName)

	// 2. Another channel-shaped id wins
	require.NoError(t, repository.UpsertArtistIdentity(ctx, catalog.ArtistIdentity{
		ArtistKey: "abc", DisplayName: "Test Artist", ChannelID: otherChannelID,
	}))
	artist, err = repository.FindArtist(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, otherChannelID, *artist.ChannelID)
}

/*
TestPostgresRepository_UpdateArtistIfUnset verifies write-once extras.
*/
func TestPostgresRepository_UpdateArtistIfUnset(t *testing.T) {
	repository, _ := newRepository(t)
	ctx := context.Background()

	require.NoError(t, repository.UpsertArtistIdentity(ctx, catalog.ArtistIdentity{
		ArtistKey: "abc", DisplayName: "Test Artist", ChannelID: channelID,
	}))

	require.NoError(t, repository.UpdateArtistIfUnset(ctx, "abc", catalog.ArtistExtras{Description: strPtr("Band from Belgrade")}))
	require.NoError(t, repository.UpdateArtistIfUnset(ctx, "abc", catalog.ArtistExtras{
		Description:  strPtr("Renamed bio"),
		ThumbnailURL: strPtr("https://img.example/abc.jpg"),
	}))

	artist, err := repository.FindArtist(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, artist.Description)
	require.NotNil(t, artist.ThumbnailURL)
	assert.Equal(t, "Band from Belgrade", *artist.Description)
	assert.Equal(t, "https://img.example/abc.jpg", *artist.ThumbnailURL)
}

/*
TestPostgresRepository_UpsertCollection_NoOpReplay verifies that replaying
the same payload keeps ids, link counts and update timestamps unchanged.
*/
func TestPostgresRepository_UpsertCollection_NoOpReplay(t *testing.T) {
	repository, pool := newRepository(t)
	ctx := context.Background()

	require.NoError(t, repository.UpsertArtistIdentity(ctx, catalog.ArtistIdentity{
		ArtistKey: "abc", DisplayName: "Test Artist", ChannelID: channelID,
	}))

	first, err := repository.UpsertCollection(ctx, albumPayload(3))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, 3, first.TracksLinked)

	updatedAt := func() (collection, track time.Time) {
		require.NoError(t, pool.QueryRow(ctx, `SELECT updatedat FROM catalog.collection WHERE externalid = 'alb-1'`).Scan(&collection))
		require.NoError(t, pool.QueryRow(ctx, `SELECT max(updatedat) FROM catalog.track`).Scan(&track))
		return collection, track
	}
	collectionBefore, trackBefore := updatedAt()

	second, err := repository.UpsertCollection(ctx, albumPayload(3))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.CollectionID, second.CollectionID)
	assert.Equal(t, 3, second.TracksLinked)

	collectionAfter, trackAfter := updatedAt()
	assert.True(t, collectionBefore.Equal(collectionAfter))
	assert.True(t, trackBefore.Equal(trackAfter))

	counts, err := repository.GetCompletionFor(ctx, "alb-1")
	require.NoError(t, err)
	require.NotNil(t, counts.Expected)
	assert.Equal(t, 3, *counts.Expected)
	assert.Equal(t, 3, counts.Actual)
}

/*
TestPostgresRepository_UnstableQuarantine verifies the empty-browse counter
and its reset by a successful upsert.
*/
func TestPostgresRepository_UnstableQuarantine(t *testing.T) {
	repository, pool := newRepository(t)
	ctx := context.Background()

	require.NoError(t, repository.UpsertArtistIdentity(ctx, catalog.ArtistIdentity{
		ArtistKey: "abc", DisplayName: "Test Artist", ChannelID: channelID,
	}))
	ref := catalog.CollectionRef{ExternalID: "alb-1", Kind: catalog.KindAlbum, Title: "Debut"}

	unstable, err := repository.MarkCollectionEmpty(ctx, ref, "abc", 2)
	require.NoError(t, err)
	assert.False(t, unstable)

	unstable, err = repository.MarkCollectionEmpty(ctx, ref, "abc", 2)
	require.NoError(t, err)
	assert.True(t, unstable)

	_, err = repository.UpsertCollection(ctx, albumPayload(2))
	require.NoError(t, err)

	var count int
	var flagged bool
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT emptybrowsecount, isunstable FROM catalog.collection WHERE externalid = 'alb-1'`,
	).Scan(&count, &flagged))
	assert.Zero(t, count)
	assert.False(t, flagged)
}

/*
TestPostgresRepository_Missing verifies the answers for unknown keys.
*/
func TestPostgresRepository_Missing(t *testing.T) {
	repository, _ := newRepository(t)
	ctx := context.Background()

	_, err := repository.FindArtist(ctx, "nobody")
	assert.True(t, apperr.IsNotFound(err))

	assert.True(t, apperr.IsNotFound(repository.TouchArtist(ctx, "nobody")))

	counts, err := repository.GetCompletionFor(ctx, "alb-unknown")
	require.NoError(t, err)
	assert.Nil(t, counts.Expected)
	assert.Zero(t, counts.Actual)
}
