package database

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type memoryURLCache struct {
	cache *cache.Cache
}

// NewMemoryURLCache is used when no Redis is configured.
func NewMemoryURLCache(ttl time.Duration) URLCache {
	return &memoryURLCache{cache: cache.New(ttl, 2*ttl)}
}

func (c *memoryURLCache) GetURL(_ context.Context, key string) (string, bool, error) {
	v, ok := c.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	url, ok := v.(string)
	return url, ok, nil
}

func (c *memoryURLCache) SetURL(_ context.Context, key, url string) error {
	c.cache.SetDefault(key, url)
	return nil
}

type noopURLCache struct{}

// NewNoopURLCache never remembers anything.
func NewNoopURLCache() URLCache {
	return noopURLCache{}
}

func (noopURLCache) GetURL(context.Context, string) (string, bool, error) { return "", false, nil }

func (noopURLCache) SetURL(context.Context, string, string) error { return nil }
