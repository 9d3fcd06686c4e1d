// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/lock"
)

/*
TestRedisKey verifies the namespaced key derived from the numeric lock key.
*/
func TestRedisKey(t *testing.T) {
	assert.Equal(t, "harvest:lock:727274", lock.RedisKey(727274))
}

/*
TestRelease_NotHeld verifies that releasing an unheld lock touches no backend.
*/
func TestRelease_NotHeld(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		lock lock.DistributedLock
	}{
		{"postgres", lock.NewPostgresAdvisoryLock(nil, 727274)},
		{"redis", lock.NewRedisLeaseLock(nil, 727274, time.Minute, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.lock.Release(ctx))
		})
	}
}
