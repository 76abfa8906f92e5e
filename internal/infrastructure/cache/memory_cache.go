// Package cache provides the in-memory result cache used by the analytics
// service.
package cache

import (
	"container/list"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context, pattern string) error
}

// MemoryCache is a thread-safe LRU cache with per-item TTL and an optional
// byte budget. A maxBytes of zero disables the byte budget.
type MemoryCache struct {
	mu          sync.Mutex
	items       map[string]*cacheItem
	lruList     *list.List
	maxItems    int
	maxBytes    int64
	currentSize int64

	hits      int64
	misses    int64
	evictions int64

	now    func() time.Time
	logger *zap.Logger
}

type cacheItem struct {
	key        string
	value      []byte
	size       int64
	expiry     time.Time
	lruElement *list.Element
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates a cache holding at most maxItems entries.
func NewMemoryCache(maxItems int, maxBytes int64, logger *zap.Logger) *MemoryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxItems < 1 {
		maxItems = 1
	}
	return &MemoryCache{
		items:    make(map[string]*cacheItem),
		lruList:  list.New(),
		maxItems: maxItems,
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   logger,
	}
}

// Get returns a copy of the value stored under key.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		c.misses++
		return nil, false, nil
	}

	if c.expired(item) {
		c.removeItem(item)
		c.misses++
		return nil, false, nil
	}

	c.lruList.MoveToFront(item.lruElement)
	c.hits++

	value := make([]byte, len(item.value))
	copy(value, item.value)
	return value, true, nil
}

// Set stores a copy of value. A non-positive ttl means the entry never
// expires on its own.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	itemSize := int64(len(key) + len(value))
	if c.maxBytes > 0 && itemSize > c.maxBytes {
		c.logger.Warn("Item too large for cache",
			zap.String("key", key),
			zap.Int64("size", itemSize),
			zap.Int64("max_bytes", c.maxBytes),
		)
		return nil
	}

	if existing, exists := c.items[key]; exists {
		c.removeItem(existing)
	}

	for c.lruList.Len() > 0 && (len(c.items) >= c.maxItems || c.overBudget(itemSize)) {
		oldest := c.lruList.Back().Value.(*cacheItem)
		c.removeItem(oldest)
		c.evictions++
	}

	item := &cacheItem{
		key:   key,
		value: make([]byte, len(value)),
		size:  itemSize,
	}
	copy(item.value, value)
	if ttl > 0 {
		item.expiry = c.now().Add(ttl)
	}

	item.lruElement = c.lruList.PushFront(item)
	c.items[key] = item
	c.currentSize += itemSize

	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, exists := c.items[key]; exists {
		c.removeItem(item)
	}
	return nil
}

// Clear removes all keys matching pattern. "*" matches everything; a leading
// or trailing "*" matches by suffix or prefix.
func (c *MemoryCache) Clear(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, item := range c.items {
		if matchPattern(key, pattern) {
			c.removeItem(item)
			removed++
		}
	}

	c.logger.Info("Cleared cache entries",
		zap.String("pattern", pattern),
		zap.Int("count", removed),
	)
	return nil
}

func (c *MemoryCache) expired(item *cacheItem) bool {
	return !item.expiry.IsZero() && c.now().After(item.expiry)
}

func (c *MemoryCache) overBudget(incoming int64) bool {
	return c.maxBytes > 0 && c.currentSize+incoming > c.maxBytes
}

// removeItem must be called with the lock held.
func (c *MemoryCache) removeItem(item *cacheItem) {
	c.lruList.Remove(item.lruElement)
	delete(c.items, item.key)
	c.currentSize -= item.size
}

// Stats holds cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Items     int
	Size      int64
	HitRate   float64
	MaxItems  int
	MaxBytes  int64
}

// Stats returns a point-in-time copy of the cache counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hitRate := float64(0)
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Items:     len(c.items),
		Size:      c.currentSize,
		HitRate:   hitRate,
		MaxItems:  c.maxItems,
		MaxBytes:  c.maxBytes,
	}
}

// Check reports whether the cache is within its item and byte budgets. It
// reads counters only and never touches stored entries.
func (c *MemoryCache) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := c.Stats()
	if s.Items > s.MaxItems {
		return fmt.Errorf("cache holds %d items, limit %d", s.Items, s.MaxItems)
	}
	if s.MaxBytes > 0 && s.Size > s.MaxBytes {
		return fmt.Errorf("cache holds %d bytes, limit %d", s.Size, s.MaxBytes)
	}
	return nil
}

func matchPattern(str, pattern string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(str, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(str, pattern[:len(pattern)-1])
	default:
		return str == pattern
	}
}

// StartCleanup removes expired items every interval until ctx is done.
func (c *MemoryCache) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.cleanupExpired()
			}
		}
	}()
}

func (c *MemoryCache) cleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, item := range c.items {
		if c.expired(item) {
			c.removeItem(item)
			removed++
		}
	}

	if removed > 0 {
		c.logger.Debug("Cleaned up expired cache items", zap.Int("count", removed))
	}
	return removed
}
