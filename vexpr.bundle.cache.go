package vexpr

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CachedBundleStore wraps any BundleStore with an in-memory message cache.
// Misses are cached too, for NegativeCacheTTL.
type CachedBundleStore struct {
	store  BundleStore
	config BundleCacheConfig
	logger *zap.Logger

	mu     sync.Mutex
	cache  map[bundleCacheKey]*bundleCacheEntry
	closed bool
}

// BundleCacheConfig configures the caching behavior.
type BundleCacheConfig struct {
	// TTL is how long cached messages remain valid.
	// Default: 5 minutes.
	TTL time.Duration

	// MaxEntries is the maximum number of cached messages.
	// When exceeded, the least recently used entry is evicted.
	// Default: 4096.
	MaxEntries int

	// NegativeCacheTTL is how long to cache "not found" results.
	// Set to a negative value to disable negative caching.
	// Default: 30 seconds.
	NegativeCacheTTL time.Duration
}

// DefaultBundleCacheConfig returns the default caching configuration.
func DefaultBundleCacheConfig() BundleCacheConfig {
	return BundleCacheConfig{
		TTL:              DefaultBundleCacheTTL,
		MaxEntries:       DefaultBundleCacheMaxEntries,
		NegativeCacheTTL: DefaultBundleNegativeCacheTTL,
	}
}

type bundleCacheKey struct {
	bundle string
	key    string
}

type bundleCacheEntry struct {
	msg        string
	found      bool
	cachedAt   time.Time
	accessedAt time.Time
}

// NewCachedBundleStore wraps store with caching. Zero config fields take
// their defaults.
func NewCachedBundleStore(store BundleStore, config BundleCacheConfig, logger *zap.Logger) *CachedBundleStore {
	if config.TTL == 0 {
		config.TTL = DefaultBundleCacheTTL
	}
	if config.MaxEntries == 0 {
		config.MaxEntries = DefaultBundleCacheMaxEntries
	}
	if config.NegativeCacheTTL == 0 {
		config.NegativeCacheTTL = DefaultBundleNegativeCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CachedBundleStore{
		store:  store,
		config: config,
		logger: logger,
		cache:  make(map[bundleCacheKey]*bundleCacheEntry),
	}
}

// Message implements BundleStore, serving from cache when possible.
// Errors from the wrapped store are never cached.
func (s *CachedBundleStore) Message(ctx context.Context, bundle, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return StringValueEmpty, false, err
	}

	k := bundleCacheKey{bundle: bundle, key: key}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return StringValueEmpty, false, NewStorageError(ErrMsgStorageClosed, bundle, key, nil)
	}
	if entry, ok := s.cache[k]; ok && s.isValid(entry) {
		entry.accessedAt = time.Now()
		s.mu.Unlock()
		s.logger.Debug(LogMsgBundleCacheHit, zap.String(LogFieldBundle, bundle), zap.String(LogFieldKey, key))
		return entry.msg, entry.found, nil
	}
	s.mu.Unlock()

	s.logger.Debug(LogMsgBundleCacheMiss, zap.String(LogFieldBundle, bundle), zap.String(LogFieldKey, key))
	msg, found, err := s.store.Message(ctx, bundle, key)
	if err != nil {
		return StringValueEmpty, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return StringValueEmpty, false, NewStorageError(ErrMsgStorageClosed, bundle, key, nil)
	}
	if found || s.config.NegativeCacheTTL > 0 {
		s.addEntry(k, msg, found)
	}
	return msg, found, nil
}

// Invalidate removes one message from the cache.
func (s *CachedBundleStore) Invalidate(bundle, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, bundleCacheKey{bundle: bundle, key: key})
}

// InvalidateBundle removes every cached message of bundle.
func (s *CachedBundleStore) InvalidateBundle(bundle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.cache {
		if k.bundle == bundle {
			delete(s.cache, k)
		}
	}
}

// InvalidateAll clears the entire cache.
func (s *CachedBundleStore) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[bundleCacheKey]*bundleCacheEntry)
}

// Close closes the cache and the wrapped store.
func (s *CachedBundleStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.cache = nil
	s.mu.Unlock()

	return s.store.Close()
}

// Stats returns cache statistics.
func (s *CachedBundleStore) Stats() BundleCacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := BundleCacheStats{Entries: len(s.cache)}
	for _, entry := range s.cache {
		if !s.isValid(entry) {
			continue
		}
		if entry.found {
			stats.ValidEntries++
		} else {
			stats.NegativeEntries++
		}
	}
	return stats
}

// BundleCacheStats contains cache statistics.
type BundleCacheStats struct {
	Entries         int
	ValidEntries    int
	NegativeEntries int
}

func (s *CachedBundleStore) isValid(entry *bundleCacheEntry) bool {
	ttl := s.config.TTL
	if !entry.found {
		ttl = s.config.NegativeCacheTTL
	}
	return time.Since(entry.cachedAt) < ttl
}

// addEntry caches a result, evicting the least recently used entry when
// full. Caller must hold the lock.
func (s *CachedBundleStore) addEntry(k bundleCacheKey, msg string, found bool) {
	if _, exists := s.cache[k]; !exists && len(s.cache) >= s.config.MaxEntries {
		s.evictOldest()
	}
	now := time.Now()
	s.cache[k] = &bundleCacheEntry{
		msg:        msg,
		found:      found,
		cachedAt:   now,
		accessedAt: now,
	}
}

// evictOldest removes the least recently accessed entry.
// Caller must hold the lock.
func (s *CachedBundleStore) evictOldest() {
	var (
		oldestKey bundleCacheKey
		oldest    *bundleCacheEntry
	)
	for k, entry := range s.cache {
		if oldest == nil || entry.accessedAt.Before(oldest.accessedAt) {
			oldestKey, oldest = k, entry
		}
	}
	if oldest != nil {
		delete(s.cache, oldestKey)
		s.logger.Debug(LogMsgBundleCacheEvict,
			zap.String(LogFieldBundle, oldestKey.bundle),
			zap.String(LogFieldKey, oldestKey.key),
		)
	}
}
