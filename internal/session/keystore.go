package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"boardserver/internal/domain"
)

// KeyStore is the capability surface the session subsystem needs from the
// ephemeral store: conditional markers with TTL and a deduplicated set per
// calendar day. Implementations must report transport failures distinctly
// from absent keys.
type KeyStore interface {
	// SetMarkerNX atomically writes value under key with the given TTL only
	// when the key does not exist. It reports whether the write happened.
	// This single call is the atomicity boundary for duplicate detection.
	SetMarkerNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// GetMarker returns the marker value, or domain.ErrNotFound when absent.
	GetMarker(ctx context.Context, key string) (string, error)
	// DeleteMarker removes the key. Deleting an absent key is not an error.
	DeleteMarker(ctx context.Context, key string) error
	// AddSetMember adds member to the set at key and refreshes the set TTL.
	AddSetMember(ctx context.Context, key, member string, ttl time.Duration) error
	// SetCardinality returns the set size, 0 when the set does not exist.
	SetCardinality(ctx context.Context, key string) (int64, error)
	// SetMembers returns all members of the set at key.
	SetMembers(ctx context.Context, key string) ([]string, error)
	// DeleteSet removes the set. Deleting an absent set is not an error.
	DeleteSet(ctx context.Context, key string) error
}

// RedisKeyStore implements KeyStore against a Redis client. Every operation
// runs under a bounded timeout; a timeout or transport error surfaces as
// domain.ErrStoreUnavailable, never as "absent".
type RedisKeyStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisKeyStore wraps client. opTimeout bounds each store round trip.
func NewRedisKeyStore(client *redis.Client, opTimeout time.Duration) *RedisKeyStore {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &RedisKeyStore{client: client, timeout: opTimeout}
}

func (s *RedisKeyStore) SetMarkerNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, storeErr("setnx "+key, err)
	}
	return ok, nil
}

func (s *RedisKeyStore) GetMarker(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", storeErr("get "+key, err)
	}
	return value, nil
}

func (s *RedisKeyStore) DeleteMarker(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return storeErr("del "+key, err)
	}
	return nil
}

func (s *RedisKeyStore) AddSetMember(ctx context.Context, key, member string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, key, member)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("sadd "+key, err)
	}
	return nil
}

func (s *RedisKeyStore) SetCardinality(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.client.SCard(ctx, key).Result()
	if err != nil {
		return 0, storeErr("scard "+key, err)
	}
	return n, nil
}

func (s *RedisKeyStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, storeErr("smembers "+key, err)
	}
	return members, nil
}

func (s *RedisKeyStore) DeleteSet(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return storeErr("del "+key, err)
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStoreUnavailable)
}

var _ KeyStore = (*RedisKeyStore)(nil)
