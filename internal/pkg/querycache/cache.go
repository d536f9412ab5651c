// Package querycache memoizes backend reads. Concurrent loads of the same key
// share one call and failed loads are never stored.
package querycache

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Loader fetches the value for a key
type Loader func(ctx context.Context) (interface{}, error)

// Cache is a TTL cache with request coalescing
type Cache struct {
	store  *cache.Cache
	group  singleflight.Group
	logger zerolog.Logger
}

// New creates a cache whose entries live for ttl
func New(ttl time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{
		store:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Load returns the cached value for key or runs fn to fill it.
//
// fn runs detached from ctx: a caller that goes away gets ctx.Err() back
// right away, while the shared load keeps going for the remaining callers
// and still fills the cache.
func (c *Cache) Load(ctx context.Context, key string, fn Loader) (interface{}, error) {
	if v, ok := c.store.Get(key); ok {
		c.logger.Debug().Str("key", key).Msg("query cache hit")
		return v, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		v, err := fn(detached)
		if err != nil {
			return nil, err
		}
		c.store.SetDefault(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		c.logger.Debug().Str("key", key).Bool("shared", res.Shared).Msg("query cache fill")
		return res.Val, nil
	case <-ctx.Done():
		c.logger.Debug().Str("key", key).Msg("query cache caller abandoned the load")
		return nil, ctx.Err()
	}
}

// InvalidatePrefix drops every key starting with prefix
func (c *Cache) InvalidatePrefix(prefix string) int {
	n := 0
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
			n++
		}
	}
	return n
}

// Flush drops everything, used when the session changes hands
func (c *Cache) Flush() {
	c.store.Flush()
}

// Len reports the number of live entries
func (c *Cache) Len() int {
	return c.store.ItemCount()
}
