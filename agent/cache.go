package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache is a key/value backend for sessions and transcripts.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type MemoryCache[S any] struct {
	mu sync.RWMutex
	m  map[string]S
}

func NewMemoryCache[S any]() *MemoryCache[S] {
	return &MemoryCache[S]{m: map[string]S{}}
}

func (m *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	m.mu.Lock()
	m.m[key] = val
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	m.mu.RLock()
	val, ok := m.m[key]
	m.mu.RUnlock()
	return val, ok, nil
}

func (m *MemoryCache[S]) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.m, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	_, ok := m.m[key]
	m.mu.RUnlock()
	return ok, nil
}

// ExpiringCache keeps values in process and forgets them after ttl of
// inactivity. Every Set refreshes the expiry.
type ExpiringCache[S any] struct {
	c   *gocache.Cache
	ttl time.Duration
}

func NewExpiringCache[S any](ttl time.Duration) *ExpiringCache[S] {
	cleanup := ttl * 2
	if ttl <= 0 {
		ttl = gocache.NoExpiration
		cleanup = 0
	}
	return &ExpiringCache[S]{
		c:   gocache.New(ttl, cleanup),
		ttl: ttl,
	}
}

func (e *ExpiringCache[S]) Set(ctx context.Context, key string, val S) error {
	e.c.Set(key, val, e.ttl)
	return nil
}

func (e *ExpiringCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	var zero S
	raw, ok := e.c.Get(key)
	if !ok {
		return zero, false, nil
	}
	val, ok := raw.(S)
	if !ok {
		return zero, false, fmt.Errorf("cache entry %q has type %T", key, raw)
	}
	return val, true, nil
}

func (e *ExpiringCache[S]) Del(ctx context.Context, key string) error {
	e.c.Delete(key)
	return nil
}

func (e *ExpiringCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := e.c.Get(key)
	return ok, nil
}

// RedisCache stores values as JSON so sessions survive process restarts and
// can be shared between chat frontends.
type RedisCache[S any] struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisCache[S any](client redis.UniversalClient, ttl time.Duration) *RedisCache[S] {
	return &RedisCache[S]{client: client, ttl: ttl}
}

func (r *RedisCache[S]) Set(ctx context.Context, key string, val S) error {
	data, err := sonic.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *RedisCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	var val S
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return val, false, nil
	}
	if err != nil {
		return val, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	if err := sonic.Unmarshal(data, &val); err != nil {
		return val, false, fmt.Errorf("decode %q: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisCache[S]) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (r *RedisCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %q: %w", key, err)
	}
	return n > 0, nil
}

var (
	_ Cache[*Session] = (*MemoryCache[*Session])(nil)
	_ Cache[*Session] = (*ExpiringCache[*Session])(nil)
	_ Cache[*Session] = (*RedisCache[*Session])(nil)
)
