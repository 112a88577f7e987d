// internal/common/cache/service.go
package cache

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
	"time"

	"niche-proxy/internal/common/errors"
	"niche-proxy/internal/common/logger"
)

// DefaultFallbackTTL is the lifetime of entries promoted into the
// in-memory fallback tier when no TTL is configured.
const DefaultFallbackTTL = 5 * time.Minute

// MemoryStats describes the in-memory fallback tier for metrics.
type MemoryStats struct {
	Size         int `json:"size"`
	ActiveItems  int `json:"active_items"`
	ExpiredItems int `json:"expired_items"`
}

// Service is the tiered cache. Reads try the primary first and fall
// back to memory; writes land in both tiers and never fail on primary
// errors, so an unavailable Redis degrades performance, not
// correctness.
type Service struct {
	primary     Backend
	fallbackTTL time.Duration
	logger      logger.Logger

	mu             sync.Mutex
	fallback       map[string]string
	fallbackExpiry map[string]time.Time
}

// NewService creates a tiered cache over the given primary backend.
// fallbackTTL bounds how long a primary-hit copy survives in the
// memory tier; non-positive values fall back to DefaultFallbackTTL.
func NewService(primary Backend, fallbackTTL time.Duration, log logger.Logger) *Service {
	if fallbackTTL <= 0 {
		fallbackTTL = DefaultFallbackTTL
	}
	return &Service{
		primary:        primary,
		fallbackTTL:    fallbackTTL,
		logger:         log,
		fallback:       make(map[string]string),
		fallbackExpiry: make(map[string]time.Time),
	}
}

// Get loads the value for key into dest and reports whether it was
// found in either tier. Primary errors are absorbed; the fallback tier
// answers instead.
func (s *Service) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := s.primary.Get(ctx, key)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal([]byte(raw), dest); jsonErr == nil {
			// Refresh the fallback copy so a later primary outage can
			// still answer for this key.
			s.storeFallback(key, raw, s.fallbackTTL)
			return true
		}
		s.logger.Error("Corrupt cache entry, falling back", map[string]interface{}{
			"key": key,
		})
	case err == ErrMiss:
		// Primary authoritative miss. The fallback may still hold an
		// entry written during a past outage.
	default:
		s.logger.Warn("Primary cache error during get, using memory fallback", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	raw, ok := s.loadFallback(key)
	if !ok {
		return false
	}
	if jsonErr := json.Unmarshal([]byte(raw), dest); jsonErr != nil {
		return false
	}
	s.logger.Info("Memory cache hit", map[string]interface{}{"key": key})
	return true
}

// Set stores data in both tiers. A primary write failure is logged and
// swallowed; only serialization failures propagate.
func (s *Service) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	serialized, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.storeFallback(key, string(serialized), ttl)

	if err := s.primary.Set(ctx, key, string(serialized), ttl); err != nil {
		s.logger.Error("Primary cache error during set, memory cache only", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return nil
}

// Invalidate removes key (or every key matching a glob pattern) from
// both tiers and returns the total number of entries removed. The
// memory tier is cleared even when the primary is unreachable.
func (s *Service) Invalidate(ctx context.Context, key string) int64 {
	memoryCount := s.invalidateFallback(key)

	var primaryCount int64
	var err error
	if hasWildcard(key) {
		primaryCount, err = s.primary.DeletePattern(ctx, key)
	} else {
		primaryCount, err = s.primary.Delete(ctx, key)
	}
	if err != nil {
		s.logger.Error("Primary cache error during invalidation, memory cache cleared only", map[string]interface{}{
			"key":               key,
			"error":             err.Error(),
			"memoryKeysRemoved": memoryCount,
		})
		return memoryCount
	}

	total := primaryCount + memoryCount
	s.logger.Info("Cache invalidation complete", map[string]interface{}{
		"key":                key,
		"primaryKeysRemoved": primaryCount,
		"memoryKeysRemoved":  memoryCount,
		"totalRemoved":       total,
	})
	return total
}

// Ping reports primary tier health.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.primary.Ping(ctx); err != nil {
		return errors.NewCacheBackendUnavailableError(err)
	}
	return nil
}

// MemoryStats counts fallback entries, evicting expired ones as it
// scans.
func (s *Service) MemoryStats() MemoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var active, expired int
	for key, exp := range s.fallbackExpiry {
		if exp.After(now) {
			active++
		} else {
			expired++
			delete(s.fallback, key)
			delete(s.fallbackExpiry, key)
		}
	}

	return MemoryStats{
		Size:         len(s.fallback),
		ActiveItems:  active,
		ExpiredItems: expired,
	}
}

func (s *Service) storeFallback(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fallback[key] = value
	s.fallbackExpiry[key] = time.Now().Add(ttl)
}

// loadFallback returns the fallback entry for key, lazily evicting it
// when expired.
func (s *Service) loadFallback(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, ok := s.fallback[key]
	if !ok {
		return "", false
	}
	if exp, ok := s.fallbackExpiry[key]; ok && !exp.After(time.Now()) {
		delete(s.fallback, key)
		delete(s.fallbackExpiry, key)
		return "", false
	}
	return val, true
}

func (s *Service) invalidateFallback(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !hasWildcard(key) {
		if _, ok := s.fallback[key]; !ok {
			return 0
		}
		delete(s.fallback, key)
		delete(s.fallbackExpiry, key)
		return 1
	}

	re := globToRegexp(key)
	var removed int64
	for cacheKey := range s.fallback {
		if re.MatchString(cacheKey) {
			delete(s.fallback, cacheKey)
			delete(s.fallbackExpiry, cacheKey)
			removed++
		}
	}
	return removed
}

// globToRegexp converts a Redis-style glob (only * is supported) into
// an anchored regexp for matching memory cache keys.
func globToRegexp(pattern string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, ".*")
	return regexp.MustCompile("^" + escaped + "$")
}
