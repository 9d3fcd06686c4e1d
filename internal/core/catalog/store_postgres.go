// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/database/schema"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/dberr"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/normalize"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/pkg/uuidv7"
)

// PostgresRepository implements [Store] on the catalog schema.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new catalog repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) FindArtist(context context.Context, artistKey string) (*Artist, error) {
	t := schema.CatalogArtist
	query := fmt.Sprintf(`
		SELECT %s, COALESCE(%s, ''), %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		t.ArtistKey, t.DisplayName, t.NormalizedName, t.ChannelID, t.Description,
		t.ThumbnailURL, t.LastResolveAttemptAt, t.CreatedAt, t.UpdatedAt,
		t.Table, t.ArtistKey,
	)

	a := &Artist{}
	err := repository.db.QueryRow(context, query, artistKey).Scan(
		&a.ArtistKey, &a.DisplayName, &a.NormalizedName, &a.ChannelID, &a.Description,
		&a.ThumbnailURL, &a.LastResolveAttemptAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_artist")
	}

	return a, nil
}

/*
UpsertArtistIdentity stores the artist's name and channel id.

Description: The shape guard lives in SQL so that concurrent writers cannot
race it: when the stored id is channel-shaped and the incoming one is not,
the stored id wins. Blank display names never erase a stored one.
*/
func (repository *PostgresRepository) UpsertArtistIdentity(context context.Context, identity ArtistIdentity) error {
	t := schema.CatalogArtist
	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS a (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s)
		VALUES ($1, NULLIF($2, ''), $3, $4, NOW(), NOW())
		ON CONFLICT (%[2]s) DO UPDATE SET
			%[3]s = COALESCE(NULLIF(EXCLUDED.%[3]s, ''), a.%[3]s),
			%[4]s = CASE WHEN a.%[4]s = '' THEN EXCLUDED.%[4]s ELSE a.%[4]s END,
			%[5]s = CASE
				WHEN a.%[5]s ~ $5 AND EXCLUDED.%[5]s !~ $5 THEN a.%[5]s
				ELSE EXCLUDED.%[5]s
			END,
			%[7]s = NOW()
	`,
		t.Table, t.ArtistKey, t.DisplayName, t.NormalizedName, t.ChannelID, t.CreatedAt, t.UpdatedAt,
	)

	_, err := repository.db.Exec(context, query,
		identity.ArtistKey,
		identity.DisplayName,
		normalize.Name(identity.DisplayName),
		identity.ChannelID,
		channelIDPattern.String(),
	)
	return dberr.Wrap(err, "upsert_artist_identity")
}

func (repository *PostgresRepository) UpdateArtistIfUnset(context context.Context, artistKey string, extras ArtistExtras) error {
	t := schema.CatalogArtist
	query := fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = CASE WHEN COALESCE(%[2]s, '') = '' AND COALESCE($2::text, '') <> '' THEN $2::text ELSE %[2]s END,
		    %[3]s = CASE WHEN COALESCE(%[3]s, '') = '' AND COALESCE($3::text, '') <> '' THEN $3::text ELSE %[3]s END
		WHERE %[4]s = $1
	`,
		t.Table, t.Description, t.ThumbnailURL, t.ArtistKey,
	)

	_, err := repository.db.Exec(context, query, artistKey, extras.Description, extras.ThumbnailURL)
	return dberr.Wrap(err, "update_artist_if_unset")
}

/*
UpsertCollection writes one album or playlist with its tracks.

Description: Executes within a single transaction.
 1. Upserts the collection row keyed by external id (clears the empty-browse counter).
 2. Upserts every track keyed by external id.
 3. Links tracks to the collection with their position.

Rows whose content did not change are left untouched, so replaying the same
payload produces no diff.
*/
func (repository *PostgresRepository) UpsertCollection(context context.Context, payload CollectionPayload) (*UpsertResult, error) {

	// Establish Transactional Boundary
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_upsert_collection_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Collection row
	result, err := repository.upsertCollectionRow(context, transaction, payload)
	if err != nil {
		return nil, err
	}

	// Step 2 + 3: Tracks and links
	for position, track := range payload.Tracks {
		trackID, err := repository.upsertTrack(context, transaction, track)
		if err != nil {
			return nil, err
		}
		if err := repository.linkTrack(context, transaction, result.CollectionID, trackID, position+1); err != nil {
			return nil, err
		}
	}

	ct := schema.CatalogCollectionTrack
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, ct.Table, ct.CollectionID)
	if err := transaction.QueryRow(context, countQuery, result.CollectionID).Scan(&result.TracksLinked); err != nil {
		return nil, dberr.Wrap(err, "count_collection_tracks")
	}

	if err := transaction.Commit(context); err != nil {
		return nil, dberr.Wrap(err, "commit_upsert_collection_tx")
	}

	return result, nil
}

func (repository *PostgresRepository) upsertCollectionRow(context context.Context, transaction pgx.Tx, payload CollectionPayload) (*UpsertResult, error) {
	t := schema.CatalogCollection
	upsert := fmt.Sprintf(`
		INSERT INTO %[1]s AS c (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s, %[10]s, %[11]s, %[12]s, %[13]s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, FALSE, NOW(), NOW())
		ON CONFLICT (%[3]s) DO UPDATE SET
			%[5]s = COALESCE(EXCLUDED.%[5]s, c.%[5]s),
			%[6]s = EXCLUDED.%[6]s,
			%[7]s = COALESCE(EXCLUDED.%[7]s, c.%[7]s),
			%[8]s = COALESCE(EXCLUDED.%[8]s, c.%[8]s),
			%[9]s = COALESCE(EXCLUDED.%[9]s, c.%[9]s),
			%[10]s = 0,
			%[11]s = FALSE,
			%[13]s = NOW()
		WHERE (c.%[5]s, c.%[6]s, c.%[7]s, c.%[8]s, c.%[9]s, c.%[10]s, c.%[11]s)
			IS DISTINCT FROM
			(COALESCE(EXCLUDED.%[5]s, c.%[5]s), EXCLUDED.%[6]s, COALESCE(EXCLUDED.%[7]s, c.%[7]s),
			 COALESCE(EXCLUDED.%[8]s, c.%[8]s), COALESCE(EXCLUDED.%[9]s, c.%[9]s), 0, FALSE)
		RETURNING %[2]s, (xmax = 0)
	`,
		t.Table, t.ID, t.ExternalID, t.Kind, t.ArtistKey, t.Title, t.Subtitle, t.ThumbnailURL,
		t.ExpectedTracks, t.EmptyBrowseCount, t.IsUnstable, t.CreatedAt, t.UpdatedAt,
	)

	var artistKey *string
	if payload.ArtistKey != "" {
		artistKey = &payload.ArtistKey
	}

	result := &UpsertResult{}
	err := transaction.QueryRow(context, upsert,
		uuidv7.New(), payload.ExternalID, string(payload.Kind), artistKey, payload.Title,
		payload.Subtitle, payload.ThumbnailURL, payload.ExpectedTracks,
	).Scan(&result.CollectionID, &result.Created)

	// Nothing changed: the conflict branch skipped the update, read the id instead.
	if errors.Is(err, pgx.ErrNoRows) {
		selectQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, t.ID, t.Table, t.ExternalID)
		err = transaction.QueryRow(context, selectQuery, payload.ExternalID).Scan(&result.CollectionID)
	}
	if err != nil {
		return nil, dberr.Wrap(err, "upsert_collection")
	}

	return result, nil
}

func (repository *PostgresRepository) upsertTrack(context context.Context, transaction pgx.Tx, track Track) (string, error) {
	t := schema.CatalogTrack
	upsert := fmt.Sprintf(`
		INSERT INTO %[1]s AS tr (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (%[3]s) DO UPDATE SET
			%[4]s = EXCLUDED.%[4]s,
			%[5]s = COALESCE(EXCLUDED.%[5]s, tr.%[5]s),
			%[6]s = COALESCE(EXCLUDED.%[6]s, tr.%[6]s),
			%[8]s = NOW()
		WHERE (tr.%[4]s, tr.%[5]s, tr.%[6]s)
			IS DISTINCT FROM
			(EXCLUDED.%[4]s, COALESCE(EXCLUDED.%[5]s, tr.%[5]s), COALESCE(EXCLUDED.%[6]s, tr.%[6]s))
		RETURNING %[2]s
	`,
		t.Table, t.ID, t.ExternalID, t.Title, t.ArtistName, t.DurationSeconds, t.CreatedAt, t.UpdatedAt,
	)

	var trackID string
	err := transaction.QueryRow(context, upsert,
		uuidv7.New(), track.ExternalID, track.Title, track.ArtistName, track.DurationSeconds,
	).Scan(&trackID)

	if errors.Is(err, pgx.ErrNoRows) {
		selectQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, t.ID, t.Table, t.ExternalID)
		err = transaction.QueryRow(context, selectQuery, track.ExternalID).Scan(&trackID)
	}
	if err != nil {
		return "", dberr.Wrap(err, "upsert_track")
	}

	return trackID, nil
}

func (repository *PostgresRepository) linkTrack(context context.Context, transaction pgx.Tx, collectionID, trackID string, position int) error {
	t := schema.CatalogCollectionTrack
	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS ct (%[2]s, %[3]s, %[4]s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE SET %[4]s = EXCLUDED.%[4]s
		WHERE ct.%[4]s IS DISTINCT FROM EXCLUDED.%[4]s
	`,
		t.Table, t.CollectionID, t.TrackID, t.Position,
	)

	_, err := transaction.Exec(context, query, collectionID, trackID, position)
	return dberr.Wrap(err, "link_track")
}

/*
MarkCollectionEmpty counts a browse that returned no usable tracks.

Description: The collection is quarantined (isunstable) once the counter
reaches threshold. A row is created on first sight so the counter survives
across runs even for collections that were never ingested.
*/
func (repository *PostgresRepository) MarkCollectionEmpty(context context.Context, ref CollectionRef, artistKey string, threshold int) (bool, error) {
	t := schema.CatalogCollection
	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS c (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s, %[10]s)
		VALUES ($1, $2, $3, $4, $5, 1, 1 >= $6, NOW(), NOW())
		ON CONFLICT (%[3]s) DO UPDATE SET
			%[7]s = c.%[7]s + 1,
			%[8]s = (c.%[7]s + 1) >= $6,
			%[10]s = NOW()
		RETURNING %[8]s
	`,
		t.Table, t.ID, t.ExternalID, t.Kind, t.ArtistKey, t.Title,
		t.EmptyBrowseCount, t.IsUnstable, t.CreatedAt, t.UpdatedAt,
	)

	var owner *string
	if artistKey != "" {
		owner = &artistKey
	}

	var unstable bool
	err := repository.db.QueryRow(context, query,
		uuidv7.New(), ref.ExternalID, string(ref.Kind), owner, ref.Title, threshold,
	).Scan(&unstable)
	if err != nil {
		return false, dberr.Wrap(err, "mark_collection_empty")
	}

	return unstable, nil
}

func (repository *PostgresRepository) GetCompletionFor(context context.Context, externalID string) (*CompletionCounts, error) {
	c := schema.CatalogCollection
	ct := schema.CatalogCollectionTrack
	query := fmt.Sprintf(`
		SELECT c.%s, (SELECT count(*) FROM %s ct WHERE ct.%s = c.%s)
		FROM %s c
		WHERE c.%s = $1
	`,
		c.ExpectedTracks, ct.Table, ct.CollectionID, c.ID,
		c.Table, c.ExternalID,
	)

	counts := &CompletionCounts{}
	err := repository.db.QueryRow(context, query, externalID).Scan(&counts.Expected, &counts.Actual)
	if errors.Is(err, pgx.ErrNoRows) {
		return &CompletionCounts{}, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_completion")
	}

	return counts, nil
}

func (repository *PostgresRepository) TouchArtist(context context.Context, artistKey string) error {
	t := schema.CatalogArtist
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`, t.Table, t.UpdatedAt, t.ArtistKey)

	cmd, err := repository.db.Exec(context, query, artistKey)
	if err != nil {
		return dberr.Wrap(err, "touch_artist")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
