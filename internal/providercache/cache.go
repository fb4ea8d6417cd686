// Package providercache implements the TTL cache every provider client
// reads through: an optional Redis-backed shared cache with an
// in-memory fallback, so a missing REDIS_ADDR degrades the process
// rather than failing it.
package providercache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Entry is one cached value plus its expiry, mirroring the
// "value and expiry" cache-entry contract.
type Entry struct {
	Value  json.RawMessage
	Expiry time.Time
}

// Cache is the interface every provider client depends on.
type Cache interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool)
	Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration)
	Stats() PoolStats
}

// PoolStats is the introspectable snapshot the /debug/pool-stats
// endpoint serializes, generalized to a cache that may or may not be
// backed by Redis at all.
type PoolStats struct {
	Backend       string `json:"backend"` // "redis" or "memory"
	InMemoryKeys  int    `json:"in_memory_keys"`
	RedisHits     int64  `json:"redis_hits,omitempty"`
	RedisMisses   int64  `json:"redis_misses,omitempty"`
	RedisTotalConns uint32 `json:"redis_total_conns,omitempty"`
	RedisIdleConns  uint32 `json:"redis_idle_conns,omitempty"`
}

// memCache is an in-memory, process-local fallback.
type memCache struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]Entry)}
}

func (m *memCache) Get(_ context.Context, key string) (json.RawMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.Expiry) {
		delete(m.entries, key)
		return nil, false
	}
	return e.Value, true
}

func (m *memCache) Set(_ context.Context, key string, value json.RawMessage, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{Value: value, Expiry: time.Now().Add(ttl)}
}

func (m *memCache) Stats() PoolStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return PoolStats{Backend: "memory", InMemoryKeys: len(m.entries)}
}

// redisCache wraps a redis.Client, falling back to an in-memory cache
// for any operation that errors (connection drop, eviction storm).
type redisCache struct {
	client   *redis.Client
	fallback *memCache
}

func (r *redisCache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Debug().Err(err).Str("key", key).Msg("redis cache get failed, checking in-memory fallback")
		}
		return r.fallback.Get(ctx, key)
	}
	return json.RawMessage(val), true
}

func (r *redisCache) Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) {
	if err := r.client.Set(ctx, key, []byte(value), ttl).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("redis cache set failed, writing to in-memory fallback")
		r.fallback.Set(ctx, key, value, ttl)
	}
}

func (r *redisCache) Stats() PoolStats {
	ps := r.client.PoolStats()
	s := r.fallback.Stats()
	s.Backend = "redis"
	s.RedisHits = int64(ps.Hits)
	s.RedisMisses = int64(ps.Misses)
	s.RedisTotalConns = ps.TotalConns
	s.RedisIdleConns = ps.IdleConns
	return s
}

// New builds a Cache. When addr is empty it returns a pure in-memory
// cache; otherwise it attempts Redis and always layers the in-memory
// fallback underneath so a mid-process Redis outage degrades silently.
func New(addr, password string, db int) Cache {
	fallback := newMemCache()
	if addr == "" {
		return fallback
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("failed to connect to redis cache, continuing with in-memory only")
		return fallback
	}
	return &redisCache{client: client, fallback: fallback}
}

// Key joins cache-key components with a separator unlikely to appear
// in any provider-specific tuple, lower-casing every component per the
// pre-fetch planner's cache-key contract.
func Key(parts ...string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "|"
		}
		out += lower(p)
	}
	return out
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
