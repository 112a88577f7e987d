// Package cache implements the tiered response cache: a Redis primary
// backed by a mutex-guarded in-memory fallback that keeps the service
// serving when Redis is down.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"niche-proxy/internal/common/database"
)

// ErrMiss is returned by a Backend when the key does not exist.
var ErrMiss = errors.New("cache: key not found")

// Backend is the primary cache tier. The Redis implementation is the
// normal case; the in-memory implementation stands in when Redis is
// unreachable at startup.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) (int64, error)
	DeletePattern(ctx context.Context, pattern string) (int64, error)
	Ping(ctx context.Context) error
}

// redisBackend adapts the shared Redis client to the Backend interface.
type redisBackend struct {
	client *database.RedisClient
}

// NewRedisBackend wraps a Redis client as the primary cache tier.
func NewRedisBackend(client *database.RedisClient) Backend {
	return &redisBackend{client: client}
}

func (r *redisBackend) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, database.ErrNil) {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *redisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl)
}

func (r *redisBackend) Delete(ctx context.Context, key string) (int64, error) {
	return r.client.Del(ctx, key)
}

func (r *redisBackend) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	return r.client.DeleteByPattern(ctx, pattern)
}

func (r *redisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

// memoryBackend is the degraded primary used when Redis cannot be
// reached at startup. Data does not persist across restarts.
type memoryBackend struct {
	mu     sync.Mutex
	data   map[string]string
	expiry map[string]time.Time
}

// NewMemoryBackend creates an in-memory primary tier.
func NewMemoryBackend() Backend {
	return &memoryBackend{
		data:   make(map[string]string),
		expiry: make(map[string]time.Time),
	}
}

func (m *memoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	val, ok := m.data[key]
	if !ok {
		return "", ErrMiss
	}
	if exp, ok := m.expiry[key]; ok && time.Now().After(exp) {
		delete(m.data, key)
		delete(m.expiry, key)
		return "", ErrMiss
	}
	return val, nil
}

func (m *memoryBackend) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	if ttl > 0 {
		m.expiry[key] = time.Now().Add(ttl)
	} else {
		delete(m.expiry, key)
	}
	return nil
}

func (m *memoryBackend) Delete(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; !ok {
		return 0, nil
	}
	delete(m.data, key)
	delete(m.expiry, key)
	return 1, nil
}

func (m *memoryBackend) DeletePattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	re := globToRegexp(pattern)
	var removed int64
	for key := range m.data {
		if re.MatchString(key) {
			delete(m.data, key)
			delete(m.expiry, key)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryBackend) Ping(_ context.Context) error {
	return nil
}

// hasWildcard reports whether a key is a glob pattern rather than a
// literal key.
func hasWildcard(key string) bool {
	return strings.Contains(key, "*")
}
