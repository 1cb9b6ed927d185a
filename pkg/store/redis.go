package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	lockKeyPrefix     = "lock:"
	lockRetryInterval = 25 * time.Millisecond
	lockAcquireWait   = 1 * time.Second
)

// releaseScript deletes the lock key only when it still carries our token,
// so a lock that auto-expired and was re-acquired by someone else is never
// released by the previous owner.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisStore implements Store on a shared Redis instance.
type RedisStore struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Logger   *zap.Logger
}

// NewRedisStore creates a Redis-backed store and verifies connectivity.
func NewRedisStore(ctx context.Context, cfg *RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	cfg.Logger.Info("redis-store-connected", zap.String("addr", cfg.Addr))

	return &RedisStore{rdb: rdb, logger: cfg.Logger}, nil
}

// Get returns the value for key, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}

	return val, nil
}

// Set writes value under key without an expiry.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	err := s.rdb.Set(ctx, key, value, 0).Err()
	if err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}

	return nil
}

// SetWithTTL writes value under key with the given expiry.
func (s *RedisStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	err := s.rdb.Set(ctx, key, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}

	return nil
}

// Expire sets the expiry of an existing key.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	err := s.rdb.Expire(ctx, key, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis expire %q: %w", key, err)
	}

	return nil
}

// TTL returns the remaining time to live of key. Redis reports -1 for keys
// without expiry and -2 for missing keys; both map to a non-positive result.
func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ttl %q: %w", key, err)
	}

	return ttl, nil
}

// Lock acquires the named lock via SET NX with a uuid ownership token.
// It polls for up to lockAcquireWait before returning ErrLockNotAcquired.
func (s *RedisStore) Lock(ctx context.Context, name string, ttl time.Duration) (UnlockFunc, error) {
	key := lockKeyPrefix + name
	token := uuid.NewString()
	deadline := time.Now().Add(lockAcquireWait)

	for {
		ok, err := s.rdb.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %q: %w", name, err)
		}
		if ok {
			return s.unlockFunc(key, token), nil
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

func (s *RedisStore) unlockFunc(key, token string) UnlockFunc {
	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, s.rdb, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis unlock %q: %w", key, err)
		}

		return nil
	}
}

// Ping reports store connectivity, used by the readiness probe.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
