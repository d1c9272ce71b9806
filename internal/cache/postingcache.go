// Package cache implements the concurrent posting-list cache
// sitting in front of the on-disk index: a fixed-capacity LRU keyed by
// term, backed by github.com/hashicorp/golang-lru/v2, with atomic hit/miss
// counters exposed for the query engine's diagnostics.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/standardbeagle/trecsearch/internal/types"
)

// DefaultCapacity is the default number of terms the posting cache holds
// before evicting the least recently used entry.
const DefaultCapacity = 131_072

// Entry is one decoded posting list, cached whole per term.
type Entry struct {
	DocIDs []types.DocID
	Freqs  []uint32
}

// Loader decodes a term's posting list from the on-disk index. It is only
// invoked on a cache miss.
type Loader func(term string) (Entry, error)

// PostingCache is a thread-safe, fixed-capacity LRU cache of decoded
// posting lists. A single mutex serializes miss handling so that two
// goroutines racing on the same cold term decode it once, not twice; the
// underlying lru.Cache is itself safe for concurrent Get/Add from hits that
// don't need the miss path at all.
type PostingCache struct {
	lru *lru.Cache[string, Entry]

	missMu sync.Mutex

	hits      int64
	misses    int64
	evictions int64

	createdAt time.Time
}

// New creates a PostingCache with the given capacity (DefaultCapacity if
// capacity <= 0).
func New(capacity int) *PostingCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	pc := &PostingCache{createdAt: time.Now()}
	l, err := lru.NewWithEvict[string, Entry](capacity, func(string, Entry) {
		atomic.AddInt64(&pc.evictions, 1)
	})
	if err != nil {
		// capacity is validated above to be > 0, so NewWithEvict cannot
		// fail; a non-nil err here means golang-lru's own invariant broke.
		panic(err)
	}
	pc.lru = l
	return pc
}

// Get returns the cached posting list for term, loading it via load on a
// miss. A concurrent miss on the same term blocks behind missMu rather than
// decoding the term twice; the second goroutine to reach the front of the
// line finds the entry already cached and skips its own load call.
func (c *PostingCache) Get(term string, load Loader) (Entry, error) {
	if e, ok := c.lru.Get(term); ok {
		atomic.AddInt64(&c.hits, 1)
		return e, nil
	}

	c.missMu.Lock()
	defer c.missMu.Unlock()

	if e, ok := c.lru.Get(term); ok {
		atomic.AddInt64(&c.hits, 1)
		return e, nil
	}

	atomic.AddInt64(&c.misses, 1)
	e, err := load(term)
	if err != nil {
		return Entry{}, err
	}
	c.lru.Add(term, e)
	return e, nil
}

// Peek returns the cached entry for term without affecting recency, or
// false if absent. Used by tests and diagnostics, never by the query path.
func (c *PostingCache) Peek(term string) (Entry, bool) {
	return c.lru.Peek(term)
}

// Len reports the current number of cached terms.
func (c *PostingCache) Len() int {
	return c.lru.Len()
}

// Purge evicts every entry, e.g. between index reloads.
func (c *PostingCache) Purge() {
	c.lru.Purge()
}

// Stats reports cumulative cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
	Entries   int
	Uptime    time.Duration
}

// Stats returns a snapshot of the cache's hit/miss/eviction counters.
func (c *PostingCache) Stats() Stats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	total := hits + misses

	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:      hits,
		Misses:    misses,
		Evictions: atomic.LoadInt64(&c.evictions),
		HitRate:   hitRate,
		Entries:   c.lru.Len(),
		Uptime:    time.Since(c.createdAt),
	}
}
