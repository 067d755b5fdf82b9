package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgredis "github.com/tatame/tatame-backend/pkg/redis"
)

// A tick that runs longer than this loses its lease; the daily jobs finish
// in seconds.
const defaultLeaseTTL = time.Hour

// ErrLockHeld means another replica is running the job.
var ErrLockHeld = errors.New("cron: job lock held elsewhere")

// Lock grants one lease per job name across worker replicas. The returned
// release func must be called once the job finishes.
type Lock interface {
	TryLock(ctx context.Context, job string) (release func(context.Context) error, err error)
}

type leaseStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(name string) string
}

// RedisLock stores a random owner token under tatame:lock:cron:<job>.
type RedisLock struct {
	store leaseStore
	ttl   time.Duration
}

func NewRedisLock(store leaseStore, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("cron lock requires a redis store")
	}
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &RedisLock{store: store, ttl: ttl}, nil
}

func (l *RedisLock) TryLock(ctx context.Context, job string) (func(context.Context) error, error) {
	key := l.store.LockKey("cron:" + job)
	token := uuid.NewString()

	won, err := l.store.SetNX(ctx, key, token, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("take lease %s: %w", key, err)
	}
	if !won {
		return nil, ErrLockHeld
	}

	return func(ctx context.Context) error {
		holder, err := l.store.Get(ctx, key)
		switch {
		case pkgredis.IsNil(err):
			return nil
		case err != nil:
			return fmt.Errorf("read lease %s: %w", key, err)
		case holder != token:
			// expired and taken by another replica
			return nil
		}
		return l.store.Del(ctx, key)
	}, nil
}
