// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package testsupport

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/migration"
	pgstore "github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/postgres"
)

// DatabaseEnv names the variable that enables the Postgres-backed tests.
const DatabaseEnv = "HARVEST_TEST_DATABASE_URL"

// databaseLockKey serializes Postgres-backed tests of different packages,
// which share the catalog schema.
const databaseLockKey int64 = 727275

// OpenDatabase returns a pool on a migrated, empty catalog schema. The test
// is skipped when [DatabaseEnv] is unset.
func OpenDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(DatabaseEnv)
	if dsn == "" {
		t.Skipf("%s is not set", DatabaseEnv)
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool, err := pgstore.NewPool(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	// Held for the whole test; released before the pool closes.
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, databaseLockKey)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, databaseLockKey)
		conn.Release()
	})

	_, file, _, _ := runtime.Caller(0)
	migrations := filepath.Join(filepath.Dir(file), "..", "..", "data", "migrations")
	require.NoError(t, migration.RunUp(dsn, migrations, logger))

	_, err = pool.Exec(ctx, `TRUNCATE catalog.collectiontrack, catalog.track, catalog.collection, catalog.artist`)
	require.NoError(t, err)

	return pool
}
