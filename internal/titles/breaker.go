package titles

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/MrSnakeDoc/archivist/internal/logger"
)

// BreakerConfig holds configuration for the resolver circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration

	// The breaker opens once MinRequests calls were seen in the current
	// interval and at least FailureThreshold of them failed.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for the breaker
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "title-resolver",
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      10,
	}
}

// Breaker stops calling a failing resolver for a while. While open,
// Resolve fails immediately with gobreaker.ErrOpenState.
type Breaker struct {
	next Resolver
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next.
func NewBreaker(next Resolver, cfg BreakerConfig, log logger.Logger) *Breaker {
	if log == nil {
		log = logger.Nop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})

	return &Breaker{next: next, cb: cb}
}

// Resolve calls the wrapped resolver through the breaker.
func (b *Breaker) Resolve(ctx context.Context, rawURL string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Resolve(ctx, rawURL)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the current breaker state
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
