package parserfacade

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// TunitCache is a bounded FIFO cache of parsed translation units keyed by
// filename and content hash (spec §3 "Translation-unit cache", §4.2
// "parse" caching note). Capacity 0 disables eviction entirely, which is
// what a short-lived indexing child wants: it parses a handful of files
// once and exits, so there is nothing to evict in its lifetime.
type TunitCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type tucacheEntry struct {
	key   string
	tunit *Tunit
}

// NewTunitCache returns a cache holding at most capacity entries (0 means
// unbounded).
func NewTunitCache(capacity int) *TunitCache {
	return &TunitCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func cacheKey(filename string, content []byte) string {
	h := xxhash.Sum64(content)
	return filename + ":" + uint64ToString(h)
}

// Get returns the cached Tunit for (filename, content) if present.
func (c *TunitCache) Get(filename string, content []byte) (*Tunit, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(filename, content)
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*tucacheEntry).tunit, true
}

// Put inserts tunit for (filename, content), evicting the oldest entry
// first if the cache is at capacity.
func (c *TunitCache) Put(filename string, content []byte, tunit *Tunit) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(filename, content)
	if _, ok := c.entries[key]; ok {
		return
	}

	el := c.order.PushBack(&tucacheEntry{key: key, tunit: tunit})
	c.entries[key] = el

	if c.capacity > 0 {
		for c.order.Len() > c.capacity {
			oldest := c.order.Front()
			if oldest == nil {
				break
			}
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*tucacheEntry).key)
		}
	}
}

// Len reports the current entry count.
func (c *TunitCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func uint64ToString(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	buf := make([]byte, 16)
	for i := 15; i >= 0 && v > 0; i-- {
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	start := 0
	for start < 16 && buf[start] == 0 {
		start++
	}
	return string(buf[start:])
}
