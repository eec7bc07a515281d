/* cache_test.go
 * Contains unit tests for cache.go
 */

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetSet(t *testing.T) {
	c := New()
	_, ok := c.Get("teams:all", time.Minute)
	assert.False(t, ok)

	c.Set("teams:all", []string{"KOI"})
	v, ok := c.Get("teams:all", time.Minute)
	assert.True(t, ok)
	assert.Equal(t, []string{"KOI"}, v)
}

// Test that an entry is fresh within its TTL and stale after it, using a controlled clock
func TestCache_TTLExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewWithClock(func() time.Time { return now })

	c.Set("matches:upcoming", 42)

	now = now.Add(59 * time.Second)
	_, ok := c.Get("matches:upcoming", time.Minute)
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("matches:upcoming", time.Minute)
	assert.False(t, ok)
}

// Different data classes read the same entry against different TTLs
func TestCache_PerCallTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewWithClock(func() time.Time { return now })

	c.Set("wiki:page", "html")
	now = now.Add(3 * time.Hour)

	_, ok := c.Get("wiki:page", 4*time.Hour)
	assert.True(t, ok)
	_, ok = c.Get("wiki:page", 2*time.Hour)
	assert.False(t, ok)
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, "matches", classOf("matches:upcoming:panda-123"))
	assert.Equal(t, "teams", classOf("teams"))
}
