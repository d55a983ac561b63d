package resolve

import (
	"container/list"
	"sync"
)

const defaultCacheSize = 256

// resolutionCache is a mutex-guarded LRU keyed by the evidence fingerprint.
// Entries belong to one catalog version; a version change flushes everything,
// since the catalog reloads as a single atomic snapshot.
type resolutionCache struct {
	mu      sync.Mutex
	max     int
	version int
	order   *list.List // front = most recently used
	entries map[string]*list.Element
}

type cacheEntry struct {
	key    string
	result ResolvedResult
}

func newResolutionCache(max int) *resolutionCache {
	if max <= 0 {
		max = defaultCacheSize
	}
	return &resolutionCache{
		max:     max,
		order:   list.New(),
		entries: make(map[string]*list.Element, max),
	}
}

func (c *resolutionCache) get(version int, key string) (ResolvedResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		c.flushLocked(version)
		return ResolvedResult{}, false
	}
	elem, ok := c.entries[key]
	if !ok {
		return ResolvedResult{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).result, true
}

func (c *resolutionCache) put(version int, key string, result ResolvedResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		c.flushLocked(version)
	}
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).result = result
		c.order.MoveToFront(elem)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, result: result})
	for len(c.entries) > c.max {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *resolutionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *resolutionCache) flushLocked(version int) {
	c.version = version
	c.order.Init()
	c.entries = make(map[string]*list.Element, c.max)
}
