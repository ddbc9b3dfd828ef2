package lock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"waqf-platform-backend/pkg/id"
)

const (
	keyPrefix     = "lock:waqf:"
	acquireRetry  = 100 * time.Millisecond
	acquireBudget = 5 * time.Second
)

// releaseScript deletes the lock only if we still hold it, so an
// expired-and-reacquired lock is never released by the old holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker serializes read-modify-write cycles per waqf using a
// redis SET NX lease.
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func() error) error {
	full := keyPrefix + key
	token := id.NewID32()

	deadline := time.Now().Add(acquireBudget)
	for {
		ok, err := l.rdb.SetNX(ctx, full, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquiring lock %s: %w", full, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("could not acquire lock %s", full)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(acquireRetry):
		}
	}

	defer func() {
		if err := releaseScript.Run(context.WithoutCancel(ctx), l.rdb, []string{full}, token).Err(); err != nil {
			log.Printf("releasing lock %s: %v", full, err)
		}
	}()
	return fn()
}

// Noop satisfies the locker without locking. Single-process tests only.
type Noop struct{}

func (Noop) WithLock(ctx context.Context, key string, fn func() error) error { return fn() }
