package providers

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/i474232898/weather-log/internal/weather"
)

// CachedProvider wraps a Provider with a TTL cache so back-to-back runs in
// daemon mode do not hit the upstream again.
type CachedProvider struct {
	inner weather.Provider
	cache *cache.Cache
}

// WithCache decorates inner. A non-positive ttl returns inner unchanged.
func WithCache(inner weather.Provider, ttl time.Duration) weather.Provider {
	if ttl <= 0 {
		return inner
	}
	return &CachedProvider{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedProvider) Name() string {
	return c.inner.Name()
}

func (c *CachedProvider) Fetch(ctx context.Context) (string, error) {
	key := c.inner.Name()
	if v, ok := c.cache.Get(key); ok {
		if text, ok := v.(string); ok {
			return text, nil
		}
	}

	text, err := c.inner.Fetch(ctx)
	if err != nil {
		return "", err
	}
	// Only successful answers are cached so failures are retried next run.
	if text != "" {
		c.cache.Set(key, text, cache.DefaultExpiration)
	}
	return text, nil
}
