// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package lock provides the cross-process mutual exclusion used to guard a
// harvest run.
//
// # Backends
//
//   - [PostgresAdvisoryLock]: session-level pg_try_advisory_lock on a pinned
//     pool connection. Released automatically if the process dies.
//   - [RedisLeaseLock]: SET NX PX lease with a random token; released by a
//     compare-and-delete script so a late release cannot drop someone else's lease.
//
// Both are non-blocking: a busy lock yields false, never an error.
package lock

import "context"

// DistributedLock is a single well-known lock shared by every scheduler instance.
type DistributedLock interface {
	// TryAcquire returns true when the caller now holds the lock.
	TryAcquire(ctx context.Context) (bool, error)

	// Release gives the lock back. Releasing a lock that is not held is a no-op.
	Release(ctx context.Context) error
}
