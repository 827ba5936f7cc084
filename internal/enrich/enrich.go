// Package enrich resolves page titles for a batch of URLs with a bounded
// number of concurrent lookups.
package enrich

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/archivist/internal/domain"
	"github.com/MrSnakeDoc/archivist/internal/logger"
	"github.com/MrSnakeDoc/archivist/internal/metrics"
)

// DefaultConcurrency caps in-flight title lookups when none is configured.
const DefaultConcurrency = 5

// Resolver returns the title of a page, or "" when it has none.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, rawURL string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, rawURL string) (string, error) {
	return f(ctx, rawURL)
}

// Enricher maps URLs to EnrichedLinks.
type Enricher struct {
	resolver    Resolver
	concurrency int
	log         logger.Logger
	metrics     *metrics.Metrics
}

// New creates an Enricher. concurrency < 1 uses DefaultConcurrency.
// log and m may be nil.
func New(resolver Resolver, concurrency int, log logger.Logger, m *metrics.Metrics) *Enricher {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Enricher{
		resolver:    resolver,
		concurrency: concurrency,
		log:         log,
		metrics:     m,
	}
}

// Concurrency returns the configured cap
func (e *Enricher) Concurrency() int {
	return e.concurrency
}

// Enrich resolves every URL and returns one link per input, in input order.
// A failed lookup yields a link with an empty title; it never fails the batch.
func (e *Enricher) Enrich(ctx context.Context, urls []string) []domain.EnrichedLink {
	out, _ := e.EnrichDetailed(ctx, urls)
	return out
}

// EnrichDetailed is Enrich plus the per-URL lookup errors (nil on success),
// aligned with urls.
func (e *Enricher) EnrichDetailed(ctx context.Context, urls []string) ([]domain.EnrichedLink, []error) {
	out := make([]domain.EnrichedLink, len(urls))
	errs := make([]error, len(urls))
	if len(urls) == 0 {
		return out, errs
	}

	start := time.Now()

	var g errgroup.Group
	g.SetLimit(min(e.concurrency, len(urls)))

	for i, u := range urls {
		out[i] = domain.EnrichedLink{URL: u}
		g.Go(func() error {
			title, err := e.resolve(ctx, u)
			if err != nil {
				errs[i] = err
				e.metrics.TitleResolved(metrics.OutcomeError)
				e.log.Debug("title lookup failed",
					logger.String("url", u),
					logger.Error(err),
				)
				return nil
			}
			if title == "" {
				e.metrics.TitleResolved(metrics.OutcomeEmpty)
			} else {
				e.metrics.TitleResolved(metrics.OutcomeResolved)
			}
			out[i].Title = title
			return nil
		})
	}
	_ = g.Wait()

	e.metrics.EnrichBatch(time.Since(start))
	return out, errs
}

// resolve turns a resolver panic into an error so one bad URL cannot take
// down the batch.
func (e *Enricher) resolve(ctx context.Context, u string) (title string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolver panic: %v", r)
		}
	}()
	return e.resolver.Resolve(ctx, u)
}
