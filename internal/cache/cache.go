package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Bahjat/seo-insight/internal/model"
)

const (
	DefaultMemoSize = 100
	DefaultTTL      = time.Hour
)

var (
	errInvalidMemoSize = errors.New("cache: memo size must be at least 1")
	errInvalidTTL      = errors.New("cache: TTL must be positive")
)

// Entry is a cached analysis. It must not be modified after Put.
type Entry struct {
	Result      model.AnalysisResult
	RawFindings model.Findings
	Timestamp   time.Time
}

// Options configures a Cache. Zero values select the defaults.
type Options struct {
	MemoSize int
	TTL      time.Duration
	Now      func() time.Time
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// Cache stores analysis results in two layers: a bounded most-recently-used
// memo keyed by URL, and a time-bounded store keyed by the URL fingerprint.
// The store decides freshness; the memo never serves an entry the store would
// consider stale.
type Cache struct {
	memo *lru.Cache[string, *Entry]
	ttl  time.Duration
	now  func() time.Time

	mu    sync.RWMutex
	store map[string]*Entry

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates an empty cache.
func New(opts Options) (*Cache, error) {
	if opts.MemoSize == 0 {
		opts.MemoSize = DefaultMemoSize
	}
	if opts.TTL == 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MemoSize < 1 {
		return nil, fmt.Errorf("%w: got %d", errInvalidMemoSize, opts.MemoSize)
	}
	if opts.TTL < 0 {
		return nil, fmt.Errorf("%w: got %s", errInvalidTTL, opts.TTL)
	}

	memo, err := lru.New[string, *Entry](opts.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("cache: creating memo: %w", err)
	}

	return &Cache{
		memo:  memo,
		ttl:   opts.TTL,
		now:   opts.Now,
		store: make(map[string]*Entry),
	}, nil
}

// Fingerprint returns the fixed-width key under which url is stored.
func Fingerprint(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Get returns the fresh entry for url, if any.
func (c *Cache) Get(url string) (*Entry, bool) {
	if e, ok := c.memo.Get(url); ok {
		if c.fresh(e) {
			c.hits.Add(1)
			return e, true
		}
		c.memo.Remove(url)
	}

	key := Fingerprint(url)
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if !c.fresh(e) {
		c.mu.Lock()
		// Only drop the entry we saw; a concurrent Put may have replaced it.
		if c.store[key] == e {
			delete(c.store, key)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}

	c.memo.Add(url, e)
	c.hits.Add(1)
	return e, true
}

// Put stores e for url in both layers, replacing any previous entry whole.
func (c *Cache) Put(url string, e *Entry) {
	if e == nil {
		return
	}
	c.mu.Lock()
	c.pruneLocked()
	c.store[Fingerprint(url)] = e
	c.mu.Unlock()
	c.memo.Add(url, e)
}

// Prune removes every stale entry from the store.
func (c *Cache) Prune() {
	c.mu.Lock()
	c.pruneLocked()
	c.mu.Unlock()
}

func (c *Cache) pruneLocked() {
	for key, e := range c.store {
		if !c.fresh(e) {
			delete(c.store, key)
		}
	}
}

// Stats reports hit/miss counters and the number of stored entries.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	n := len(c.store)
	c.mu.RUnlock()
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: n}
}

// TTL returns the freshness window of the store.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Close discards every entry. The cache remains usable afterwards.
func (c *Cache) Close() {
	c.memo.Purge()
	c.mu.Lock()
	c.store = make(map[string]*Entry)
	c.mu.Unlock()
}

func (c *Cache) fresh(e *Entry) bool {
	return c.now().Sub(e.Timestamp) <= c.ttl
}
