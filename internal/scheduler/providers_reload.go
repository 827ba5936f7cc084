package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/archivist/internal/logger"
	"github.com/MrSnakeDoc/archivist/internal/titles"
)

// CacheFlusher drops cached titles after the provider table changed.
type CacheFlusher interface {
	Flush(ctx context.Context) error
}

// ProvidersReloader re-reads the oEmbed providers file periodically and
// on manual trigger, swapping the live table in place.
type ProvidersReloader struct {
	path          string
	providers     *titles.Providers
	cache         CacheFlusher
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewProvidersReloader creates a reloader for path. cache may be nil.
func NewProvidersReloader(
	path string,
	providers *titles.Providers,
	cache CacheFlusher,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ProvidersReloader {
	return &ProvidersReloader{
		path:          path,
		providers:     providers,
		cache:         cache,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the file once, then keeps reloading in the background until
// Stop is called or ctx is done. A failing first load is returned.
func (pr *ProvidersReloader) Start(ctx context.Context) error {
	if err := pr.Reload(ctx); err != nil {
		return fmt.Errorf("initial providers load failed: %w", err)
	}

	ticker := time.NewTicker(pr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				pr.reloadLogged(ctx)
			case <-pr.manualTrigger:
				pr.logger.Info("manual providers reload triggered")
				pr.reloadLogged(ctx)
			case <-pr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (pr *ProvidersReloader) Stop() {
	close(pr.stopCh)
}

func (pr *ProvidersReloader) reloadLogged(ctx context.Context) {
	if err := pr.Reload(ctx); err != nil {
		// The previous table stays live.
		pr.logger.Error("failed to reload providers", logger.String("file", pr.path), logger.Error(err))
	}
}

// Reload reads the providers file and replaces the live table. Cached
// titles are flushed afterwards since a provider may now title a URL
// differently.
func (pr *ProvidersReloader) Reload(ctx context.Context) error {
	list, err := titles.LoadProviders(pr.path)
	if err != nil {
		return err
	}
	if err := pr.providers.Replace(list); err != nil {
		return fmt.Errorf("apply providers: %w", err)
	}

	pr.logger.Info("providers reloaded",
		logger.String("file", pr.path),
		logger.Int("count", len(list)))

	if pr.cache == nil {
		return nil
	}
	if err := pr.cache.Flush(ctx); err != nil {
		pr.logger.Warn("failed to flush title cache", logger.Error(err))
	}
	return nil
}
