package titles

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/archivist/internal/logger"
)

// Cache stores resolved titles. Get returns "" on a miss.
type Cache interface {
	Get(ctx context.Context, rawURL string) (string, error)
	Set(ctx context.Context, rawURL, title string, ttl time.Duration) error
}

// Cached serves titles from a cache before calling the wrapped resolver.
// Only non-empty titles are stored. Cache errors are logged and ignored.
type Cached struct {
	next  Resolver
	cache Cache
	ttl   time.Duration
	log   logger.Logger
}

// NewCached wraps next with cache.
func NewCached(next Resolver, cache Cache, ttl time.Duration, log logger.Logger) *Cached {
	if log == nil {
		log = logger.Nop()
	}
	return &Cached{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func (c *Cached) Resolve(ctx context.Context, rawURL string) (string, error) {
	title, err := c.cache.Get(ctx, rawURL)
	if err != nil {
		c.log.Warn("title cache read failed", logger.String("url", rawURL), logger.Error(err))
	} else if title != "" {
		return title, nil
	}

	title, err = c.next.Resolve(ctx, rawURL)
	if err != nil || title == "" {
		return title, err
	}

	if err := c.cache.Set(ctx, rawURL, title, c.ttl); err != nil {
		c.log.Warn("title cache write failed", logger.String("url", rawURL), logger.Error(err))
	}
	return title, nil
}
