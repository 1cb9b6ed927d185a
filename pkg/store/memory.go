package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used as a fallback when Redis is not
// configured and as the mock-friendly implementation in tests. TTL behavior
// matches the Redis implementation; the clock is injectable so tests can
// expire keys without sleeping.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	locks   map[string]memoryEntry

	// Now is the clock used for expiry checks. Tests may replace it.
	Now func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		locks:   make(map[string]memoryEntry),
		Now:     time.Now,
	}
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Get returns the value for key, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || ent.expired(s.Now()) {
		delete(s.entries, key)
		return "", ErrNotFound
	}

	return ent.value, nil
}

// Set writes value under key without an expiry.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{value: value}
	return nil
}

// SetWithTTL writes value under key with the given expiry.
func (s *MemoryStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{value: value, expiresAt: s.Now().Add(ttl)}
	return nil
}

// Expire sets the expiry of an existing key. Missing keys are a no-op,
// matching Redis EXPIRE on absent keys.
func (s *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || ent.expired(s.Now()) {
		return nil
	}

	ent.expiresAt = s.Now().Add(ttl)
	s.entries[key] = ent
	return nil
}

// TTL returns the remaining time to live of key, non-positive when the key
// is missing or has no expiry.
func (s *MemoryStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	now := s.Now()
	if !ok || ent.expired(now) {
		return -2 * time.Second, nil
	}
	if ent.expiresAt.IsZero() {
		return -1 * time.Second, nil
	}

	return ent.expiresAt.Sub(now), nil
}

// Lock acquires the named lock, polling for up to lockAcquireWait like the
// Redis implementation so contention behavior matches in tests.
func (s *MemoryStore) Lock(ctx context.Context, name string, ttl time.Duration) (UnlockFunc, error) {
	deadline := time.Now().Add(lockAcquireWait)

	for {
		if s.tryLock(name, ttl) {
			return func(ctx context.Context) error {
				s.mu.Lock()
				defer s.mu.Unlock()
				delete(s.locks, name)
				return nil
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (s *MemoryStore) tryLock(name string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, held := s.locks[name]
	if held && !ent.expired(s.Now()) {
		return false
	}

	s.locks[name] = memoryEntry{value: "held", expiresAt: s.Now().Add(ttl)}
	return true
}
