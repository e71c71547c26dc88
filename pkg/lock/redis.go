package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lua script for safe lock release - only the holder may delete the key
const luaReleaseLock = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker is an EventLocker backed by Redis SET NX, for deployments with
// more than one process mutating the same events. It layers an in-process
// KeyedMutex underneath so goroutines in the same process queue up locally
// instead of spinning against Redis.
type RedisLocker struct {
	redis *redis.Client
	local *KeyedMutex
	ttl   time.Duration
	retry time.Duration
}

// NewRedisLocker creates a Redis-backed event locker. ttl bounds how long a
// crashed holder can wedge an event.
func NewRedisLocker(redisClient *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{
		redis: redisClient,
		local: NewKeyedMutex(),
		ttl:   ttl,
		retry: 50 * time.Millisecond,
	}
}

// GetLockKey returns the Redis key for an event's lock
func GetLockKey(eventID uuid.UUID) string {
	return "event:lock:" + eventID.String()
}

// Lock acquires the local mutex, then polls SET NX until the distributed lock
// is held or ctx is done.
func (r *RedisLocker) Lock(ctx context.Context, eventID uuid.UUID) (func(), error) {
	releaseLocal, err := r.local.Lock(ctx, eventID)
	if err != nil {
		return nil, err
	}

	key := GetLockKey(eventID)
	token := uuid.NewString()

	for {
		ok, err := r.redis.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			releaseLocal()
			return nil, fmt.Errorf("failed to acquire lock for event %s: %w", eventID, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			releaseLocal()
			return nil, ctx.Err()
		case <-time.After(r.retry):
		}
	}

	return func() {
		// Release with the token guard so an expired lock reclaimed by
		// another holder is never deleted from under them.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// Errors are ignored: the lock expires via TTL anyway.
		_ = r.redis.Eval(ctx, luaReleaseLock, []string{key}, token).Err()
		releaseLocal()
	}, nil
}
