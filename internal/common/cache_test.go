package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(5*time.Minute, 10*time.Minute)

	c.Set(CacheKeyTrending, []int{3, 1, 2})

	got, ok := c.Get(CacheKeyTrending)
	assert.True(t, ok)
	assert.Equal(t, []int{3, 1, 2}, got)
}

func TestCacheDelete(t *testing.T) {
	c := NewCache(5*time.Minute, 10*time.Minute)

	c.Set(CacheKeyBlog(1), "cached")
	c.Delete(CacheKeyBlog(1))

	_, ok := c.Get(CacheKeyBlog(1))
	assert.False(t, ok)
}

func TestCacheExpiration(t *testing.T) {
	c := NewCache(10*time.Millisecond, time.Minute)

	c.Set(CacheKeyTrending, "stale")
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(CacheKeyTrending)
	assert.False(t, ok)
}

func TestCacheCustomExpiration(t *testing.T) {
	c := NewCache(10*time.Millisecond, time.Minute)

	c.Set(CacheKeyBlog(7), "pinned", time.Minute)
	time.Sleep(20 * time.Millisecond)

	got, ok := c.Get(CacheKeyBlog(7))
	assert.True(t, ok)
	assert.Equal(t, "pinned", got)
}
