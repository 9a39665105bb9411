package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
)

// sessionCacheKey is the fixed slot the current session is mirrored into.
// One process models one client session, so a single key suffices.
const sessionCacheKey = "auth.session"

// RedisSessionCache persists the current session in Redis so a restarted
// process can pick it up again, the way a reopened browser tab recovers its
// session from local storage.
type RedisSessionCache struct {
	rdb *redis.Client
}

// NewRedisSessionCache wraps an existing Redis client.  rdb must be
// non-nil; callers with no Redis fall back to NewMemorySessionCache.
func NewRedisSessionCache(rdb *redis.Client) *RedisSessionCache {
	return &RedisSessionCache{rdb: rdb}
}

func (c *RedisSessionCache) Load(ctx context.Context) (*Session, error) {
	bs, err := c.rdb.Get(ctx, sessionCacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *RedisSessionCache) Save(ctx context.Context, s *Session) error {
	bs, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, sessionCacheKey, bs, 0).Err()
}

func (c *RedisSessionCache) Clear(ctx context.Context) error {
	return c.rdb.Del(ctx, sessionCacheKey).Err()
}

// MemorySessionCache keeps the session in process memory.  Used in tests
// and when Redis is unavailable.
type MemorySessionCache struct {
	mu sync.Mutex
	s  *Session
}

// NewMemorySessionCache returns an empty in-memory cache.
func NewMemorySessionCache() *MemorySessionCache { return &MemorySessionCache{} }

func (c *MemorySessionCache) Load(context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s, nil
}

func (c *MemorySessionCache) Save(_ context.Context, s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s = s
	return nil
}

func (c *MemorySessionCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s = nil
	return nil
}
