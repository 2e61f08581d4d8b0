package decoration

import (
	"time"

	"github.com/dshills/marginalia/internal/cache"
)

// ImageCache remembers image URLs the builder has rendered, so repeated
// rebuilds can report them as already loaded. One cache belongs to one
// engine.
type ImageCache struct {
	seen *cache.Cache[string, struct{}]
}

// NewImageCache creates a cache. A zero ttl keeps URLs until Clear.
func NewImageCache(ttl time.Duration, opts ...cache.Option) *ImageCache {
	return &ImageCache{seen: cache.New[string, struct{}](ttl, opts...)}
}

// Seen reports whether url was recorded and has not expired.
func (c *ImageCache) Seen(url string) bool {
	_, ok := c.seen.Get(url)
	return ok
}

// Record marks url as loaded.
func (c *ImageCache) Record(url string) {
	c.seen.Set(url, struct{}{})
}

// Len returns the number of recorded URLs.
func (c *ImageCache) Len() int {
	return c.seen.Len()
}

// Clear forgets every URL.
func (c *ImageCache) Clear() {
	c.seen.Clear()
}
