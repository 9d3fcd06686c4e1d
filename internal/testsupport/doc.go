// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package testsupport provides in-memory stand-ins for Postgres, the
// catalog proxy and the global lock. They follow the same observable rules
// as the real implementations (claim ordering, skipped locked rows, write-once
// columns, idempotent upserts) so that pipeline tests need no database.
//
// [OpenDatabase] backs the store tests that run the real SQL. They are
// skipped unless HARVEST_TEST_DATABASE_URL points at a disposable database.
package testsupport
