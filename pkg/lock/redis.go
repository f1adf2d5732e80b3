package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned by WithLock when another holder owns the key.
var ErrNotAcquired = errors.New("lock is held by another process")

// Locker hands out a fresh owner token on every successful Lock. Unlock only
// releases the key while it still holds that token.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// unlockScript deletes the key only while it still carries the caller's token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLock struct {
	client redis.UniversalClient
}

func NewRedisLock(client redis.UniversalClient) *RedisLock {
	return &RedisLock{client: client}
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	const op = "lock.RedisLock.Lock"

	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, lockKey(key), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *RedisLock) Unlock(ctx context.Context, key, token string) error {
	const op = "lock.RedisLock.Unlock"

	if err := unlockScript.Run(ctx, r.client, []string{lockKey(key)}, token).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// WithLock runs fn while holding key. It does not wait for a busy key.
func WithLock(ctx context.Context, l Locker, key string, ttl time.Duration, fn func() error) error {
	token, ok, err := l.Lock(ctx, key, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAcquired
	}
	defer func() {
		_ = l.Unlock(context.WithoutCancel(ctx), key, token)
	}()

	return fn()
}

// NopLocker always grants the lock. Used when Redis is not configured.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string, time.Duration) (string, bool, error) {
	return "", true, nil
}

func (NopLocker) Unlock(context.Context, string, string) error { return nil }
