package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Error variables for cache errors
var (
	// ErrCacheCorrupted is returned when the cache file cannot be parsed
	ErrCacheCorrupted = errors.New("cache file is corrupted")
)

// DefaultCacheTTL is the default time-to-live for cache entries (1 hour)
const DefaultCacheTTL = time.Hour

// CacheEntry is a cached catalog answer
type CacheEntry struct {
	Metadata  *Metadata `json:"metadata"`
	Timestamp time.Time `json:"timestamp"`
	// Source is the release-history URL that was queried
	Source string `json:"source"`
}

// cacheFile represents the JSON structure stored on disk
type cacheFile struct {
	Entries map[string]CacheEntry `json:"entries"`
}

// Cache stores normalized catalog answers with TTL-based expiration.
// It persists entries to disk and supports concurrent access.
type Cache struct {
	Entries map[string]CacheEntry
	TTL     time.Duration
	path    string
	mu      sync.RWMutex
	nowFunc func() time.Time
}

// CacheOption is a functional option for configuring Cache
type CacheOption func(*Cache)

// WithTTL sets a custom TTL for the cache
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.TTL = ttl
		}
	}
}

// WithNowFunc sets a custom time function for testing
func WithNowFunc(fn func() time.Time) CacheOption {
	return func(c *Cache) {
		c.nowFunc = fn
	}
}

// DefaultCacheDir returns $XDG_CACHE_HOME/drupdate, falling back to ~/.cache/drupdate
func DefaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "drupdate"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "drupdate"), nil
}

// CacheKey identifies a catalog answer. The installed version is part of the
// key because it decides which release is reported as available.
func CacheKey(name, api, currentVersion string) string {
	return name + "@" + api + "@" + currentVersion
}

// NewCache creates or loads the cache stored in dir.
// A missing or corrupted cache file starts an empty cache.
func NewCache(dir string, opts ...CacheOption) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		Entries: make(map[string]CacheEntry),
		TTL:     DefaultCacheTTL,
		path:    filepath.Join(dir, "catalog.json"),
		nowFunc: time.Now,
	}

	for _, opt := range opts {
		opt(cache)
	}

	if err := cache.load(); err != nil && !os.IsNotExist(err) {
		// Overwritten on next save
		cache.Entries = make(map[string]CacheEntry)
	}

	return cache, nil
}

// load reads the cache from disk
func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
	}

	if cf.Entries != nil {
		c.Entries = cf.Entries
	}
	return nil
}

// Get returns cached metadata if present and not expired
func (c *Cache) Get(key string) (*Metadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.Entries[key]
	if !exists || entry.Metadata == nil || c.isExpired(entry) {
		return nil, false
	}
	return entry.Metadata, true
}

// isExpired checks if a cache entry has expired based on TTL
func (c *Cache) isExpired(entry CacheEntry) bool {
	return c.nowFunc().Sub(entry.Timestamp) >= c.TTL
}

// Set stores metadata with the current timestamp and saves the cache
func (c *Cache) Set(key string, meta *Metadata, source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Entries[key] = CacheEntry{
		Metadata:  meta,
		Timestamp: c.nowFunc(),
		Source:    source,
	}
	return c.saveUnsafe()
}

// Len returns the number of entries in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Entries)
}

// Clear removes all entries and saves the cache
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Entries = make(map[string]CacheEntry)
	return c.saveUnsafe()
}

// Cleanup removes all expired entries and saves the cache
func (c *Cache) Cleanup() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.Entries {
		if c.isExpired(entry) {
			delete(c.Entries, key)
		}
	}
	return c.saveUnsafe()
}

// saveUnsafe persists the cache to disk. Caller must hold the write lock.
func (c *Cache) saveUnsafe() error {
	data, err := json.MarshalIndent(cacheFile{Entries: c.Entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}
