package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/metrics"
)

const (
	// DefaultResultTTL bounds how long a search result lives in Redis (10 minutes)
	DefaultResultTTL = 10 * time.Minute
	// purgeBatch is the SCAN page size used when flushing
	purgeBatch = 200
)

// Store is the shared Redis tier of the search result cache.
// Redis failures are logged and treated as misses; search never depends on it.
type Store struct {
	client *redis.Client
	logger logger.Logger
	ttl    time.Duration
}

// NewStore creates a new Redis result store
func NewStore(client *redis.Client, log logger.Logger, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &Store{
		client: client,
		logger: log,
		ttl:    ttl,
	}
}

// Get retrieves a cached result
func (s *Store) Get(ctx context.Context, key string) (domain.SearchResult, bool) {
	res, err := s.get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read search cache", logger.Error(err))
	}
	if err != nil || res == nil {
		metrics.CacheMissesTotal.WithLabelValues("redis").Inc()
		return domain.SearchResult{}, false
	}
	metrics.CacheHitsTotal.WithLabelValues("redis").Inc()
	return *res, true
}

func (s *Store) get(ctx context.Context, key string) (*domain.SearchResult, error) {
	data, err := s.client.Get(ctx, SearchKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get cached result: %w", err)
	}

	var res domain.SearchResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}
	return &res, nil
}

// Set stores a result with the configured TTL
func (s *Store) Set(ctx context.Context, key string, res domain.SearchResult) {
	if err := s.set(ctx, key, res); err != nil {
		s.logger.Warn("failed to write search cache", logger.Error(err))
	}
}

func (s *Store) set(ctx context.Context, key string, res domain.SearchResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := s.client.Set(ctx, SearchKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

// Purge removes every cached result
func (s *Store) Purge(ctx context.Context) {
	n, err := s.Flush(ctx)
	if err != nil {
		s.logger.Warn("failed to purge search cache", logger.Error(err))
		return
	}
	s.logger.Debug("search cache purged", logger.Int("keys", n))
}

// Flush deletes all search keys and returns how many were removed
func (s *Store) Flush(ctx context.Context) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixSearch+"*", purgeBatch).Iterator()

	batch := make([]string, 0, purgeBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
		deleted += len(batch)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == purgeBatch {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return deleted, flush()
}

// Ping reports whether Redis answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
