package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRedis struct {
	values map[string]string
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memoryRedis) LockKey(name string) string { return "tatame:lock:" + name }

func TestRedisLockLeasesPerJob(t *testing.T) {
	store := &memoryRedis{values: map[string]string{}}
	workerA, err := NewRedisLock(store, time.Minute)
	require.NoError(t, err)
	workerB, err := NewRedisLock(store, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	release, err := workerA.TryLock(ctx, "birthday")
	require.NoError(t, err)

	_, err = workerB.TryLock(ctx, "birthday")
	assert.ErrorIs(t, err, ErrLockHeld)

	releaseAssets, err := workerB.TryLock(ctx, "assets")
	require.NoError(t, err, "jobs use separate keys")

	require.NoError(t, release(ctx))
	assert.NotContains(t, store.values, "tatame:lock:cron:birthday")
	assert.Contains(t, store.values, "tatame:lock:cron:assets")

	require.NoError(t, releaseAssets(ctx))
	assert.Empty(t, store.values)
}

func TestReleaseLeavesForeignLease(t *testing.T) {
	store := &memoryRedis{values: map[string]string{}}
	lock, _ := NewRedisLock(store, time.Minute)
	ctx := context.Background()

	release, err := lock.TryLock(ctx, "birthday")
	require.NoError(t, err)

	// lease expired and another replica took it
	store.values["tatame:lock:cron:birthday"] = "someone-else"
	require.NoError(t, release(ctx))
	assert.Equal(t, "someone-else", store.values["tatame:lock:cron:birthday"])

	delete(store.values, "tatame:lock:cron:birthday")
	assert.NoError(t, release(ctx))
}

func TestNewRedisLockRequiresStore(t *testing.T) {
	_, err := NewRedisLock(nil, 0)
	assert.Error(t, err)
}
