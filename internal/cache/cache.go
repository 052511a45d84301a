// Package cache memoizes generated summaries per (content fingerprint, language).
//
// The cache is a fixed-capacity LRU. Concurrent misses for the same key share a
// single computation: only one compute function runs while the others wait for
// its result.
package cache

import (
	"context"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"
)

const DefaultCapacity = 100

// Key identifies a cached summary.
type Key struct {
	Fingerprint string
	Language    string
}

func (k Key) String() string {
	return k.Language + "\x00" + k.Fingerprint
}

// Fingerprint returns the first n runes of text. n <= 0 returns text unchanged.
func Fingerprint(text string, n int) string {
	if n <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Shared    int64 `json:"shared"` // waiters served by another caller's computation
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
	Capacity  int   `json:"capacity"`
}

type Cache struct {
	mu       sync.Mutex
	capacity int
	lru      *lru.Cache
	group    singleflight.Group

	hits      int64
	misses    int64
	shared    int64
	evictions int64
}

// New creates an empty cache. capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		capacity: capacity,
		lru:      lru.New(capacity),
	}
	// Called by lru with c.mu held.
	c.lru.OnEvicted = func(lru.Key, interface{}) { c.evictions++ }
	return c
}

// Get returns the cached value and marks it most recently used.
func (c *Cache) Get(key Key) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(key)
	if !ok {
		return "", false
	}
	c.hits++
	return v.(string), true
}

// Set stores value as the most recently used entry, evicting the least
// recently used one when capacity is exceeded.
func (c *Cache) Set(key Key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, value)
}

// GetOrCreate returns the cached value for key or runs compute to produce it.
// Callers that miss while a computation for the same key is in flight wait for
// that computation instead of starting their own. Errors are returned to every
// waiter and are not cached. compute runs detached from the starting caller's
// cancellation so that its waiters are not failed by it; the caller's values
// and the deadlines applied inside compute still hold.
func (c *Cache) GetOrCreate(ctx context.Context, key Key, compute func(context.Context) (string, error)) (string, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	ran := false
	v, err, shared := c.group.Do(key.String(), func() (interface{}, error) {
		ran = true
		// A flight for this key may have completed between our miss and Do.
		if v, ok := c.Get(key); ok {
			return v, nil
		}

		c.mu.Lock()
		c.misses++
		c.mu.Unlock()

		v, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}
		c.Set(key, v)
		return v, nil
	})
	if shared && !ran {
		c.mu.Lock()
		c.shared++
		c.mu.Unlock()
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Shared:    c.shared,
		Evictions: c.evictions,
		Size:      c.lru.Len(),
		Capacity:  c.capacity,
	}
}
