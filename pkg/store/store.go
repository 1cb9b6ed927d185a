package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
// Callers cannot distinguish the two cases.
var ErrNotFound = errors.New("store: key not found")

// ErrLockNotAcquired is returned by Lock when the lock is held by another
// owner for the whole bounded acquisition window.
var ErrLockNotAcquired = errors.New("store: lock not acquired")

// UnlockFunc releases a held lock. Safe to call exactly once, typically
// via defer so release happens on every exit path.
type UnlockFunc func(ctx context.Context) error

// Store is the shared key-value store visible to every service replica.
// It backs the quote cache, the proxy-state flag and the rate-gate counter.
//
// Implementations must treat TTLs as authoritative: an expired value behaves
// exactly like a missing one.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key without an expiry.
	Set(ctx context.Context, key, value string) error

	// SetWithTTL writes value under key with the given expiry.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Expire sets the expiry of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL returns the remaining time to live of key. A non-positive
	// duration means the key is missing or carries no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Lock acquires the named distributed lock with an auto-release TTL.
	// Acquisition waits a bounded amount of time before giving up with
	// ErrLockNotAcquired; it never blocks indefinitely.
	Lock(ctx context.Context, name string, ttl time.Duration) (UnlockFunc, error)
}
