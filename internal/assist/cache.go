package assist

import (
	"strings"
	"sync"
	"time"

	"github.com/threadline/threadline/internal/search"
)

const (
	// deltaCacheSize is the max number of cached constraint extractions.
	deltaCacheSize = 100

	// deltaCacheTTL bounds how long a cached extraction stays valid.
	deltaCacheTTL = time.Hour
)

// deltaCache is a simple LRU cache for LLM constraint extractions, so
// repeated follow-up phrasings within a session don't pay for a round trip
// twice.
type deltaCache struct {
	mu      sync.Mutex
	entries map[string]*deltaCacheEntry
	order   []string // oldest first
	maxSize int
}

type deltaCacheEntry struct {
	delta   search.Constraints
	created time.Time
}

func newDeltaCache(maxSize int) *deltaCache {
	return &deltaCache{
		entries: make(map[string]*deltaCacheEntry),
		maxSize: maxSize,
	}
}

func (c *deltaCache) get(text string) (search.Constraints, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(text))
	entry, ok := c.entries[key]
	if !ok {
		return search.Constraints{}, false
	}
	if time.Since(entry.created) > deltaCacheTTL {
		delete(c.entries, key)
		c.dropKey(key)
		return search.Constraints{}, false
	}
	return entry.delta, true
}

func (c *deltaCache) put(text string, delta search.Constraints) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(text))
	if _, exists := c.entries[key]; exists {
		c.dropKey(key)
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &deltaCacheEntry{
		delta:   delta,
		created: time.Now(),
	}
	c.order = append(c.order, key)
}

// dropKey removes one key from the recency order. Callers hold the lock.
func (c *deltaCache) dropKey(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
