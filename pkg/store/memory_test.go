package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SetGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v"))

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestMemoryStore_ExpiryIndistinguishableFromAbsence(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.Now = func() time.Time { return now }

	require.NoError(t, s.SetWithTTL(ctx, "k", "v", 5*time.Second))

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	now = now.Add(6 * time.Second)

	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound, "expired key must read as absent")
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.Now = func() time.Time { return now }

	require.NoError(t, s.SetWithTTL(ctx, "expiring", "v", time.Minute))
	require.NoError(t, s.Set(ctx, "persistent", "v"))

	ttl, err := s.TTL(ctx, "expiring")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	ttl, err = s.TTL(ctx, "persistent")
	require.NoError(t, err)
	assert.Negative(t, ttl, "keys without expiry report a negative TTL")

	ttl, err = s.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.Negative(t, ttl)
}

func TestMemoryStore_ExpireAdjustsTTL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.Now = func() time.Time { return now }

	require.NoError(t, s.SetWithTTL(ctx, "k", "v", time.Minute))
	require.NoError(t, s.Expire(ctx, "k", 10*time.Second))

	ttl, err := s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, ttl)
}

func TestMemoryStore_LockMutualExclusion(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	unlock, err := s.Lock(ctx, "gate", time.Minute)
	require.NoError(t, err)

	// Held lock cannot be re-acquired within the wait budget
	_, err = s.Lock(ctx, "gate", time.Minute)
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	require.NoError(t, unlock(ctx))

	unlock, err = s.Lock(ctx, "gate", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestMemoryStore_LockAutoExpires(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.Now = func() time.Time { return now }

	_, err := s.Lock(ctx, "gate", time.Second)
	require.NoError(t, err)

	// Holder dies without unlocking; the TTL releases the lock
	now = now.Add(2 * time.Second)

	unlock, err := s.Lock(ctx, "gate", time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}
