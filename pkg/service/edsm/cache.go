package edsm

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/m-mizutani/goerr/v2"
)

const cacheFileName = "edsm_cache.json"

type cacheEntry struct {
	System    *System   `json:"system"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache is a file-backed system cache under the bot's workdir. Entries
// older than maxAge are treated as misses and re-fetched on demand or by
// the refresh worker.
type Cache struct {
	path   string
	maxAge time.Duration
	clock  clockwork.Clock

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithCacheClock injects the clock used for entry age checks
func WithCacheClock(clock clockwork.Clock) CacheOption {
	return func(c *Cache) {
		c.clock = clock
	}
}

// NewCache opens or creates the cache file in workdir. maxAge <= 0 means
// entries never expire.
func NewCache(workdir string, maxAge time.Duration, opts ...CacheOption) (*Cache, error) {
	c := &Cache{
		path:    filepath.Join(workdir, cacheFileName),
		maxAge:  maxAge,
		clock:   clockwork.NewRealClock(),
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read EDSM cache", goerr.V("path", c.path))
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, goerr.Wrap(err, "corrupt EDSM cache", goerr.V("path", c.path))
	}
	return c, nil
}

func cacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get returns a cached system if present and fresh
func (c *Cache) Get(name string) (*System, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[cacheKey(name)]
	if !exists {
		return nil, false
	}
	if c.maxAge > 0 && c.clock.Now().Sub(entry.FetchedAt) > c.maxAge {
		return nil, false
	}
	return entry.System, true
}

// Put stores a system and flushes the cache file
func (c *Cache) Put(name string, sys *System) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(name)] = cacheEntry{
		System:    sys,
		FetchedAt: c.clock.Now().UTC(),
	}
	return c.flushLocked()
}

// Stale returns the names of entries older than maxAge, for the refresh
// worker.
func (c *Cache) Stale() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxAge <= 0 {
		return nil
	}

	var stale []string
	now := c.clock.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.FetchedAt) > c.maxAge {
			stale = append(stale, key)
		}
	}
	return stale
}

func (c *Cache) flushLocked() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode EDSM cache")
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write EDSM cache", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return goerr.Wrap(err, "failed to replace EDSM cache", goerr.V("path", c.path))
	}
	return nil
}
