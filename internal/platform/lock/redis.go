// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lock

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/platform/constants"
)

// releaseScript deletes the lease only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only when it still carries our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// minRenewInterval bounds the renewal ticker for very short leases.
const minRenewInterval = 10 * time.Millisecond

// RedisLeaseLock is a TTL-bounded lease, renewed every third of the TTL while
// held. A crashed holder stops renewing and loses the lock when the lease
// expires.
type RedisLeaseLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	token string
	stop  chan struct{}
	done  chan struct{}
}

// NewRedisLeaseLock creates a lease lock for the numeric lock key.
func NewRedisLeaseLock(client *redis.Client, key int64, ttl time.Duration, logger *slog.Logger) *RedisLeaseLock {
	return &RedisLeaseLock{client: client, key: RedisKey(key), ttl: ttl, logger: logger}
}

// RedisKey returns the Redis key used for a numeric lock key.
func RedisKey(key int64) string {
	return constants.RedisPrefixLock + strconv.FormatInt(key, 10)
}

func (l *RedisLeaseLock) TryAcquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// A lease without expiry would outlive a crashed holder.
	if l.ttl <= 0 {
		return false, fmt.Errorf("lock: lease ttl must be positive, got %s", l.ttl)
	}

	if l.token != "" {
		return false, nil
	}

	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lock: redis set nx: %w", err)
	}
	if !acquired {
		return false, nil
	}

	l.token = token
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	go l.renew(context.WithoutCancel(ctx), token, l.stop, l.done)

	return true, nil
}

// renew keeps the lease alive until stop is closed or the lease is lost.
func (l *RedisLeaseLock) renew(ctx context.Context, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(max(l.ttl/3, minRenewInterval))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			renewed, err := renewScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int()
			if err != nil {
				l.logger.Warn("lock_renew_failed", slog.String("key", l.key), slog.String(constants.FieldError, err.Error()))
				continue
			}
			if renewed == 0 {
				l.logger.Error("lock_lease_lost", slog.String("key", l.key))
				return
			}
		}
	}
}

func (l *RedisLeaseLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.token == "" {
		return nil
	}

	token := l.token
	l.token = ""
	close(l.stop)
	<-l.done

	deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
	if err != nil {
		return fmt.Errorf("lock: redis release: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("lock: lease %s expired before release", l.key)
	}
	return nil
}
