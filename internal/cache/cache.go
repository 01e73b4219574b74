// Package cache implements the invalidated-on-write read cache fronting room
// listings and booking lookups. Each region keeps an index ZSET scored by last
// access, giving per-region LRU eviction on top of per-entry TTL expiry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache regions. Any write to rooms or bookings evicts its entire region,
// trading hit-rate for correctness.
const (
	RegionRooms    = "rooms"
	RegionBookings = "bookings"
)

const (
	// DefaultTTL is the fixed expiry window for cached entries.
	DefaultTTL = 600 * time.Second
	// DefaultMaxEntries bounds each region; least-recently-used entries are
	// evicted past the bound.
	DefaultMaxEntries = 100
)

// Store is a Redis-backed read cache with independent regions.
type Store struct {
	client     *redis.Client
	ttl        time.Duration
	maxEntries int64
	logger     *zap.Logger
}

// NewStore creates a new Store. Non-positive ttl or maxEntries fall back to the
// defaults.
func NewStore(client *redis.Client, ttl time.Duration, maxEntries int, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		client:     client,
		ttl:        ttl,
		maxEntries: int64(maxEntries),
		logger:     logger,
	}
}

func entryKey(region, key string) string {
	return fmt.Sprintf("cache:%s:%s", region, key)
}

func indexKey(region string) string {
	return fmt.Sprintf("cache-index:%s", region)
}

// Get loads a cached entry into dest, reporting whether it was present. A hit
// refreshes the entry's position in the region's LRU index.
func (s *Store) Get(ctx context.Context, region, key string, dest interface{}) (bool, error) {
	val, err := s.client.Get(ctx, entryKey(region, key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("failed to decode cached entry: %w", err)
	}

	// Touch the LRU index. A failed touch only skews eviction order.
	if err := s.client.ZAdd(ctx, indexKey(region), redis.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: key,
	}).Err(); err != nil {
		s.logger.Warn("cache index touch failed",
			zap.String("region", region),
			zap.Error(err),
		)
	}

	return true, nil
}

// Put stores an entry with the configured TTL and trims the region to its
// maximum size, evicting least-recently-used entries.
func (s *Store) Put(ctx context.Context, region, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	idx := indexKey(region)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, entryKey(region, key), data, s.ttl)
		pipe.ZAdd(ctx, idx, redis.Z{
			Score:  float64(time.Now().UnixNano()),
			Member: key,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache put failed: %w", err)
	}

	return s.trim(ctx, region)
}

// trim evicts the oldest entries once the region exceeds its bound.
func (s *Store) trim(ctx context.Context, region string) error {
	idx := indexKey(region)

	size, err := s.client.ZCard(ctx, idx).Result()
	if err != nil {
		return fmt.Errorf("cache trim failed: %w", err)
	}
	over := size - s.maxEntries
	if over <= 0 {
		return nil
	}

	oldest, err := s.client.ZRange(ctx, idx, 0, over-1).Result()
	if err != nil {
		return fmt.Errorf("cache trim failed: %w", err)
	}
	if len(oldest) == 0 {
		return nil
	}

	keys := make([]string, len(oldest))
	members := make([]interface{}, len(oldest))
	for i, k := range oldest {
		keys[i] = entryKey(region, k)
		members[i] = k
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, idx, members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache trim failed: %w", err)
	}
	return nil
}

// Invalidate evicts every entry in the region. Eviction failures are returned,
// never swallowed: a lost eviction would serve stale state after a write.
func (s *Store) Invalidate(ctx context.Context, region string) error {
	idx := indexKey(region)

	tracked, err := s.client.ZRange(ctx, idx, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("cache invalidation failed: %w", err)
	}

	keys := make([]string, 0, len(tracked)+1)
	for _, k := range tracked {
		keys = append(keys, entryKey(region, k))
	}
	keys = append(keys, idx)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidation failed: %w", err)
	}
	return nil
}
