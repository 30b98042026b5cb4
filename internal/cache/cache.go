// Package cache provides a JSON-encoding side-cache over Redis. The cache
// is never authoritative: every entry mirrors a persisted row and carries
// a fixed TTL chosen by the calling operation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Recorder counts cache hits and misses per key namespace.
type Recorder interface {
	RecordCacheHit(namespace string)
	RecordCacheMiss(namespace string)
}

// Service wraps a Redis client with typed get/set helpers.
type Service struct {
	client  *redis.Client
	logger  *slog.Logger
	metrics Recorder
}

// NewService creates a cache Service. metrics may be nil.
func NewService(client *redis.Client, logger *slog.Logger, metrics Recorder) *Service {
	return &Service{client: client, logger: logger, metrics: metrics}
}

// Set stores a JSON-encoded value under key with the given TTL.
func (s *Service) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for key %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Get loads the value stored under key into dest. It returns false on a
// miss. A backend or decode failure is returned as an error so callers
// can degrade to the source of truth.
func (s *Service) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.recordMiss(key)
		return false, nil
	}
	if err != nil {
		s.recordMiss(key)
		return false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.recordMiss(key)
		return false, fmt.Errorf("failed to decode cache value for key %s: %w", key, err)
	}
	s.recordHit(key)
	return true, nil
}

// Delete removes the given keys. Missing keys are not an error.
func (s *Service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys %v: %w", keys, err)
	}
	return nil
}

// Exists reports whether key is present.
func (s *Service) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cache key %s: %w", key, err)
	}
	return n > 0, nil
}

// TTL returns the remaining lifetime of key.
func (s *Service) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get TTL for cache key %s: %w", key, err)
	}
	return ttl, nil
}

// FlushAll drops every key in the database. Administrative use only.
func (s *Service) FlushAll(ctx context.Context) error {
	if err := s.client.FlushAll(ctx).Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	s.logger.Info("cleared all cache keys")
	return nil
}

// Ping checks connectivity to the cache backend.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache backend unreachable: %w", err)
	}
	return nil
}

func (s *Service) recordHit(key string) {
	if s.metrics != nil {
		s.metrics.RecordCacheHit(Namespace(key))
	}
}

func (s *Service) recordMiss(key string) {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(Namespace(key))
	}
}
