// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAdvisoryLock holds a session advisory lock on a dedicated connection.
//
// Advisory locks belong to the session that took them, so the connection
// that acquired the lock is kept out of the pool until Release.
type PostgresAdvisoryLock struct {
	pool *pgxpool.Pool
	key  int64

	mu   sync.Mutex
	conn *pgxpool.Conn
}

// NewPostgresAdvisoryLock creates a lock on the given advisory key.
func NewPostgresAdvisoryLock(pool *pgxpool.Pool, key int64) *PostgresAdvisoryLock {
	return &PostgresAdvisoryLock{pool: pool, key: key}
}

func (l *PostgresAdvisoryLock) TryAcquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Already held by this process.
	if l.conn != nil {
		return false, nil
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("lock: acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, l.key).Scan(&acquired); err != nil {
		conn.Release()
		return false, fmt.Errorf("lock: try advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()
		return false, nil
	}

	l.conn = conn
	return true, nil
}

func (l *PostgresAdvisoryLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil
	}

	conn := l.conn
	l.conn = nil

	var released bool
	err := conn.QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, l.key).Scan(&released)
	if err != nil {
		// The session may still hold the lock; drop the connection instead of
		// handing it back to the pool.
		_ = conn.Conn().Close(ctx)
		conn.Release()
		return fmt.Errorf("lock: advisory unlock: %w", err)
	}

	conn.Release()
	if !released {
		return fmt.Errorf("lock: advisory lock %d was not held by this session", l.key)
	}
	return nil
}
