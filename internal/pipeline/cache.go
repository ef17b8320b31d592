package pipeline

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"marketcli/internal/config"
)

// cacheEntry holds one cached pipeline result
type cacheEntry struct {
	result   *Result
	cachedAt time.Time
	expires  time.Time
}

// Cache is a content-addressed read-through cache over pipeline results,
// keyed by input file hash plus the analysis parameters. It is a pure
// optimization: a miss recomputes, and concurrent requests for the same key
// are collapsed so the same input never triggers duplicate work (or
// duplicate outbound summarizer calls).
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	maxSize int
	group   singleflight.Group
}

// NewCache creates a cache with the given TTL and entry limit
func NewCache(ttl time.Duration, maxSize int) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Key derives the cache key for a dataset and parameter combination: the
// blake2b hash of the raw bytes and a fingerprint of every parameter that
// can change the output.
func Key(data []byte, cfg config.AnalysisConfig, withSummary bool) string {
	h, _ := blake2b.New256(nil)
	h.Write(data)

	fingerprint := fmt.Sprintf("%s|%s|%s|%d|%d|%d|%g|%s|%s|%s|%g|%g|%t",
		cfg.BrandColumn, cfg.PriceColumn, cfg.FeatureColumn,
		cfg.TopBrands, cfg.TopFeatures, cfg.TopGaps,
		cfg.GapThreshold, cfg.FeatureDelimiter, cfg.CleaningStrategy,
		strings.Join(cfg.RequiredColumns, ","),
		cfg.CompletenessWeight, cfg.UniquenessWeight,
		withSummary)
	h.Write([]byte(fingerprint))

	return hex.EncodeToString(h.Sum(nil))
}

// GetOrCompute returns the cached result for key, or computes and stores
// it. The second return value reports whether the result came from cache.
// Errors are returned but never cached.
func (c *Cache) GetOrCompute(key string, compute func() (*Result, error)) (*Result, bool, error) {
	if result, ok := c.get(key); ok {
		return result, true, nil
	}

	hit := false
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under singleflight: a concurrent caller may have stored
		// the entry while this one waited.
		if result, ok := c.get(key); ok {
			hit = true
			return result, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Result), hit, nil
}

// Len returns the number of live entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidate removes an entry
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) get(key string) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.result, true
}

func (c *Cache) set(key string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize <= 0 {
		return
	}
	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	now := time.Now()
	c.entries[key] = cacheEntry{
		result:   result,
		cachedAt: now,
		expires:  now.Add(c.ttl),
	}
}

// evictOldest removes the least recently stored entry. Caller holds the
// lock.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.cachedAt.Before(oldest) {
			oldestKey = key
			oldest = entry.cachedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// newByteReader wraps raw CSV bytes for the dataset reader
func newByteReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
