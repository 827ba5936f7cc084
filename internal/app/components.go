package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/archivist/internal/archive"
	"github.com/MrSnakeDoc/archivist/internal/blob"
	"github.com/MrSnakeDoc/archivist/internal/config"
	"github.com/MrSnakeDoc/archivist/internal/enrich"
	"github.com/MrSnakeDoc/archivist/internal/logger"
	"github.com/MrSnakeDoc/archivist/internal/metrics"
	"github.com/MrSnakeDoc/archivist/internal/redis"
	"github.com/MrSnakeDoc/archivist/internal/store"
	"github.com/MrSnakeDoc/archivist/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/archivist/internal/store/redis"
	"github.com/MrSnakeDoc/archivist/internal/store/sqlite"
	"github.com/MrSnakeDoc/archivist/internal/titles"
)

// Components is the import pipeline assembled from the configuration.
// The server and the import command share it.
type Components struct {
	Store     store.Store
	Blobs     blob.Store
	Providers *titles.Providers
	Breaker   *titles.Breaker
	Cache     *redisstore.TitleCache // nil unless the store backend is redis and the TTL is set
	Metrics   *metrics.Metrics
	Importer  *archive.Importer
}

// Build wires the record store, blob store, title resolver chain and
// importer. Close must be called on success.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Components, error) {
	c := &Components{Metrics: metrics.New()}

	var redisClient *goredis.Client
	switch cfg.StoreBackend {
	case config.StoreRedis:
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), log)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		redisClient = client
		c.Store = redisstore.NewStore(client)
	case config.StoreSQLite:
		s, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		c.Store = s
	case config.StoreMemory:
		log.Warn("using the in-memory record store, records are lost on exit")
		c.Store = memory.New()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	blobs, err := buildBlobs(cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Blobs = blobs

	c.Providers, err = titles.NewProviders(titles.DefaultProviders())
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("default providers: %w", err)
	}

	var resolver titles.Resolver
	switch cfg.TitleResolver {
	case config.ResolverService:
		resolver = titles.NewServiceResolver(cfg.TitleServiceURL, cfg.TitleServiceKey, cfg.TitleTimeout)
	default:
		resolver = titles.NewHTTPResolver(cfg.TitleTimeout, c.Providers, log.With(logger.String("component", "titles")))
	}

	if redisClient != nil && cfg.TitleCacheTTL > 0 {
		c.Cache = redisstore.NewTitleCache(redisClient)
		resolver = titles.NewCached(resolver, c.Cache, cfg.TitleCacheTTL, log)
	}

	bc := titles.DefaultBreakerConfig()
	bc.MinRequests = uint32(max(cfg.BreakerMinRequests, 1))
	bc.FailureThreshold = cfg.BreakerFailureThreshold
	if cfg.BreakerOpenTimeout > 0 {
		bc.Timeout = cfg.BreakerOpenTimeout
	}
	c.Breaker = titles.NewBreaker(resolver, bc, log)

	enricher := enrich.New(c.Breaker, cfg.EnrichConcurrency, log.With(logger.String("component", "enrich")), c.Metrics)
	c.Importer = archive.NewImporter(c.Store, c.Blobs, enricher, log.With(logger.String("component", "archive")), c.Metrics)

	return c, nil
}

func buildBlobs(cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case config.BlobSupabase:
		s, err := blob.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
		if err != nil {
			return nil, fmt.Errorf("supabase blob store: %w", err)
		}
		return s, nil
	case config.BlobLocal:
		l, err := blob.NewLocal(cfg.BlobDir)
		if err != nil {
			return nil, fmt.Errorf("local blob store: %w", err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

// BreakerState reports the resolver breaker state for /readyz.
func (c *Components) BreakerState() string {
	return c.Breaker.State().String()
}

// Close releases the record store (and the Redis client behind it).
func (c *Components) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}
