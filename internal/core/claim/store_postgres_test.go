// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package claim_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/claim"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/testsupport"
)

func seedBacklog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	day := func(month int) time.Time { return time.Date(2020, time.Month(month), 1, 0, 0, 0, 0, time.UTC) }

	rows := []struct {
		key       string
		createdAt time.Time
		attempt   *time.Time
		channelID *string
	}{
		{"attempted", day(1), ptr(day(3)), nil},
		{"fresh", day(2), nil, nil},
		{"resolved", day(1), nil, ptr("UCchannelchannelchannel1")},
	}
	for _, row := range rows {
		_, err := pool.Exec(ctx, `
			INSERT INTO catalog.artist (artistkey, displayname, normalizedname, channelid, lastresolveattemptat, createdat)
			VALUES ($1, $1, $1, $2, $3, $4)
		`, row.key, row.channelID, row.attempt, row.createdAt)
		require.NoError(t, err)
	}
}

func ptr[T any](v T) *T { return &v }

/*
TestPostgresStore_ClaimNext_Order verifies that the least recently attempted
unresolved artist is claimed first and that claiming moves it to the back.
*/
func TestPostgresStore_ClaimNext_Order(t *testing.T) {
	pool := testsupport.OpenDatabase(t)
	seedBacklog(t, pool)
	store := claim.NewPostgresStore(pool)
	ctx := context.Background()

	var order []string
	for i := 0; i < 3; i++ {
		candidate, err := store.ClaimNext(ctx)
		require.NoError(t, err)
		require.NotNil(t, candidate)
		order = append(order, candidate.ArtistKey)
	}

	assert.Equal(t, []string{"fresh", "attempted", "fresh"}, order)
}

/*
TestPostgresStore_ClaimNext_SkipsLockedRows verifies that a row locked by
another transaction is skipped instead of waited on.
*/
func TestPostgresStore_ClaimNext_SkipsLockedRows(t *testing.T) {
	pool := testsupport.OpenDatabase(t)
	seedBacklog(t, pool)
	store := claim.NewPostgresStore(pool)
	ctx := context.Background()

	other, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer other.Rollback(ctx)
	_, err = other.Exec(ctx, `SELECT 1 FROM catalog.artist WHERE artistkey = 'fresh' FOR UPDATE`)
	require.NoError(t, err)

	claimCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	candidate, err := store.ClaimNext(claimCtx)
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, "attempted", candidate.ArtistKey)

	// With both rows taken, the backlog looks empty.
	_, err = other.Exec(ctx, `SELECT 1 FROM catalog.artist WHERE artistkey = 'attempted' FOR UPDATE`)
	require.NoError(t, err)

	candidate, err = store.ClaimNext(claimCtx)
	require.NoError(t, err)
	assert.Nil(t, candidate)
}

/*
TestPostgresStore_MarkAttempt verifies that a marked artist goes to the back
of the queue.
*/
func TestPostgresStore_MarkAttempt(t *testing.T) {
	pool := testsupport.OpenDatabase(t)
	seedBacklog(t, pool)
	store := claim.NewPostgresStore(pool)
	ctx := context.Background()

	require.NoError(t, store.MarkAttempt(ctx, "fresh"))

	candidate, err := store.ClaimNext(ctx)
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, "attempted", candidate.ArtistKey)
}
