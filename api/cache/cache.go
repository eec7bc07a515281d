/* cache.go
 * Process-wide TTL cache keyed by descriptive strings. Entries are unbounded and live for the
 * process lifetime; staleness is checked at read time against the TTL the caller passes, so the
 * same entry can be fresh for one data class and stale for another
 */

package cache

import (
	"strings"
	"sync"
	"time"

	"koi-tracker/metrics"
)

type entry struct {
	value     interface{}
	timestamp time.Time
}

// Cache is a simple last-writer-wins TTL cache. Not safe for cross-process sharing; every
// process starts cold
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New returns an empty cache
func New() *Cache {
	return &Cache{entries: make(map[string]entry), now: time.Now}
}

// NewWithClock returns a cache using the supplied clock, used by tests to control expiry
func NewWithClock(now func() time.Time) *Cache {
	return &Cache{entries: make(map[string]entry), now: now}
}

// Get returns the stored value if it is younger than ttl. A stale entry is left in place;
// the next Set simply overwrites it
func (c *Cache) Get(key string, ttl time.Duration) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.timestamp) >= ttl {
		metrics.CacheMisses.WithLabelValues(classOf(key)).Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(classOf(key)).Inc()
	return e.value, true
}

// Set stores value under key, stamped with the current time
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, timestamp: c.now()}
	c.mu.Unlock()
}

// classOf reduces a cache key to its leading segment for metric labels, so cardinality stays
// bounded (keys embed ids, e.g. "matches:upcoming:panda-123")
func classOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
