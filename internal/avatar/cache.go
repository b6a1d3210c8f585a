package avatar

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cached memoizes another Resolver. ttl should be shorter than the lifetime
// of the URLs the inner resolver returns.
type Cached struct {
	next  Resolver
	cache *expirable.LRU[string, string]
}

func NewCached(next Resolver, size int, ttl time.Duration) *Cached {
	if size <= 0 {
		size = 256
	}
	return &Cached{
		next:  next,
		cache: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func (c *Cached) Resolve(ctx context.Context, ref string) (string, error) {
	if u, ok := c.cache.Get(ref); ok {
		return u, nil
	}
	u, err := c.next.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	c.cache.Add(ref, u)
	return u, nil
}

// Len reports the number of cached entries.
func (c *Cached) Len() int { return c.cache.Len() }
