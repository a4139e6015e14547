package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisLocker serializes handlers per key with a SETNX lease. The TTL bounds
// how long a crashed handler can hold the lock.
type RedisLocker struct {
	Client *redis.Client
	TTL    time.Duration
	// MaxWait bounds how long an acquirer polls before giving up.
	MaxWait time.Duration
}

// NewRedisLocker builds a locker with sane webhook-scale defaults.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		Client:  client,
		TTL:     30 * time.Second,
		MaxWait: 10 * time.Second,
	}
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func() error) error {
	token := uuid.New().String()
	deadline := time.Now().Add(l.MaxWait)

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return fmt.Errorf("lock acquire failed for %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for lock %s", key)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	defer func() {
		// Release only our own lease; an expired lock may belong to someone else.
		current, err := l.Client.Get(ctx, key).Result()
		if err == nil && current == token {
			l.Client.Del(ctx, key)
		}
	}()

	return fn()
}
