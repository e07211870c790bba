// Package session keeps the live account snapshot for logged-in accounts.
// Entries are keyed by account id and expire with the refresh token window.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no session exists for the key.
var ErrNotFound = errors.New("session not found")

// Store is the key/value contract the token lifecycle depends on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Replace overwrites an existing entry, keeping its TTL. It reports false
	// when no entry exists.
	Replace(ctx context.Context, key string, value []byte) (bool, error)
	// Renew overwrites an existing entry and resets its TTL. It reports false
	// when no entry exists and never recreates one.
	Renew(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// RedisStore implements Store on top of go-redis.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore builds a store. Keys are namespaced with prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), value, ttl).Err()
}

func (s *RedisStore) Replace(ctx context.Context, key string, value []byte) (bool, error) {
	res, err := s.client.SetArgs(ctx, s.key(key), value, redis.SetArgs{Mode: "XX", KeepTTL: true}).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res == "OK", nil
}

func (s *RedisStore) Renew(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	res, err := s.client.SetArgs(ctx, s.key(key), value, redis.SetArgs{Mode: "XX", TTL: ttl}).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res == "OK", nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
