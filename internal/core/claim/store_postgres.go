// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package claim

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/core/catalog"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/database/schema"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/dberr"
)

// PostgresStore implements [Store] on catalog.artist.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new backlog store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

/*
ClaimNext reserves one unresolved artist.

Description: Executes within a single transaction.
 1. Selects the oldest-attempted unresolved row, skipping rows locked by
    concurrent claimers.
 2. Stamps lastresolveattemptat so the row moves to the back of the queue.

Never-attempted rows sort first.
*/
func (repository *PostgresStore) ClaimNext(context context.Context) (*catalog.Candidate, error) {
	t := schema.CatalogArtist

	transaction, err := repository.db.Begin(context)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_claim_tx")
	}
	defer transaction.Rollback(context)

	selectQuery := fmt.Sprintf(`
		SELECT %[1]s, %[2]s, %[3]s
		FROM %[4]s
		WHERE %[5]s IS NULL
		ORDER BY COALESCE(%[6]s, %[7]s, %[8]s) ASC NULLS FIRST, %[8]s ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`,
		t.ArtistKey, t.NormalizedName, t.DisplayName, t.Table,
		t.ChannelID, t.LastResolveAttemptAt, t.UpdatedAt, t.CreatedAt,
	)

	candidate := &catalog.Candidate{}
	err = transaction.QueryRow(context, selectQuery).Scan(
		&candidate.ArtistKey, &candidate.NormalizedName, &candidate.DisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "claim_next")
	}

	stampQuery := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`, t.Table, t.LastResolveAttemptAt, t.ArtistKey)
	if _, err := transaction.Exec(context, stampQuery, candidate.ArtistKey); err != nil {
		return nil, dberr.Wrap(err, "stamp_claim")
	}

	if err := transaction.Commit(context); err != nil {
		return nil, dberr.Wrap(err, "commit_claim_tx")
	}

	return candidate, nil
}

func (repository *PostgresStore) MarkAttempt(context context.Context, artistKey string) error {
	t := schema.CatalogArtist
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`, t.Table, t.LastResolveAttemptAt, t.ArtistKey)

	_, err := repository.db.Exec(context, query, artistKey)
	return dberr.Wrap(err, "mark_attempt")
}
