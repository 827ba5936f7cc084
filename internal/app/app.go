package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/archivist/internal/config"
	"github.com/MrSnakeDoc/archivist/internal/httpserver"
	"github.com/MrSnakeDoc/archivist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/archivist/internal/logger"
	"github.com/MrSnakeDoc/archivist/internal/scheduler"
	"github.com/MrSnakeDoc/archivist/internal/version"
)

type App struct {
	cfg        *config.Config
	logger     logger.Logger
	components *Components
	server     *httpserver.Server
	reloader   *scheduler.ProvidersReloader
}

// New builds the server and its background jobs. The Redis connection is
// made here so the process fails fast when the store is unreachable.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	c, err := Build(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	var (
		reloader      *scheduler.ProvidersReloader
		reloadTrigger chan struct{}
	)
	if cfg.ProvidersFile != "" {
		loggerClient.Info("providers file configured, initializing providers reloader",
			logger.String("file", cfg.ProvidersFile))
		reloadTrigger = make(chan struct{}, 1)

		var flusher scheduler.CacheFlusher
		if c.Cache != nil {
			flusher = c.Cache
		}
		reloader = scheduler.NewProvidersReloader(
			cfg.ProvidersFile,
			c.Providers,
			flusher,
			loggerClient,
			cfg.ProvidersReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("providers file not configured, using built-in oEmbed providers")
	}

	d := deps.Deps{
		Logger:    loggerClient,
		StartTime: time.Now(),
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,

		Archivist: c.Importer,
		Store:     c.Store,
		Metrics:   c.Metrics,
		Validate:  validator.New(validator.WithRequiredStructEnabled()),
		Providers: c.Providers.Len,
		Breaker:   c.BreakerState,

		RequestTimeout: cfg.RequestTimeout,
		MaxUploadSize:  cfg.MaxUploadSize,

		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		CORSOrigins:  cfg.CORSOrigins,

		RateLimitBurst:   cfg.RateLimitBurst,
		RateLimitPerMin:  cfg.RateLimitPerMin,
		RateLimitMaxIPs:  cfg.RateLimitMaxIPs,
		RateLimitSweep:   cfg.RateLimitSweep,
		RateLimitIdleTTL: cfg.RateLimitIdleTTL,

		ProvidersReloadTrigger: reloadTrigger,
	}

	return &App{
		cfg:        cfg,
		logger:     loggerClient,
		components: c,
		server:     httpserver.New(cfg, loggerClient, d),
		reloader:   reloader,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Archivist v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Archivist %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start providers reloader: %w", err)
		}
		a.logger.Info("providers reloader started",
			logger.Duration("interval", a.cfg.ProvidersReloadInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.components.Close(); err != nil {
		a.logger.Warnf("failed to close record store: %v", err)
	} else {
		a.logger.Info("✅ Record store closed cleanly")
	}

	a.logger.Info("✅ Archivist stopped cleanly")
	return nil
}
