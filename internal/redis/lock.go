package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrMutexNotAcquired = errors.New("mutex not acquired")

// Locker serializes critical sections per key. The lock manager uses it to
// guard the check-then-insert on a (staff, date) timeline.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type redisMutex struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMutex creates a locker backed by a per-key Redis SETNX lock.
func NewRedisMutex(client *redis.Client, ttl time.Duration) Locker {
	return &redisMutex{
		client: client,
		ttl:    ttl,
	}
}

func (m *redisMutex) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	redisKey := "mutex:" + key
	token := uuid.NewString()

	ok, err := m.client.SetNX(ctx, redisKey, token, m.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire mutex %s: %w", key, err)
	}
	if !ok {
		return ErrMutexNotAcquired
	}

	defer func() {
		_ = m.release(ctx, redisKey, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, m.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

// unlockScript deletes the key only when the caller still owns it, so a
// slow holder cannot drop a mutex that already expired and was re-acquired.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (m *redisMutex) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, m.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release mutex: %w", err)
	}
	return nil
}
