package titles

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

type resolverFunc func(ctx context.Context, rawURL string) (string, error)

func (f resolverFunc) Resolve(ctx context.Context, rawURL string) (string, error) {
	return f(ctx, rawURL)
}

type mapCache struct {
	mu     sync.Mutex
	titles map[string]string
	err    error
}

func (c *mapCache) Get(_ context.Context, rawURL string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	return c.titles[rawURL], nil
}

func (c *mapCache) Set(_ context.Context, rawURL, title string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.titles[rawURL] = title
	return nil
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	var calls int
	failing := resolverFunc(func(context.Context, string) (string, error) {
		calls++
		return "", errors.New("down")
	})

	cfg := DefaultBreakerConfig()
	cfg.MinRequests = 3
	cfg.FailureThreshold = 0.5
	cfg.Timeout = time.Hour

	b := NewBreaker(failing, cfg, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := b.Resolve(ctx, "https://a.example"); err == nil {
			t.Fatalf("Resolve() call %d expected error", i)
		}
	}

	if b.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", b.State())
	}

	_, err := b.Resolve(ctx, "https://a.example")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Resolve() while open error = %v, want ErrOpenState", err)
	}
	if calls != 3 {
		t.Errorf("wrapped resolver called %d times, want 3", calls)
	}
}

func TestBreaker_PassesThrough(t *testing.T) {
	ok := resolverFunc(func(_ context.Context, u string) (string, error) {
		return "title:" + u, nil
	})

	b := NewBreaker(ok, DefaultBreakerConfig(), nil)
	got, err := b.Resolve(context.Background(), "x")
	if err != nil || got != "title:x" {
		t.Errorf("Resolve() = %q, %v; want title:x, nil", got, err)
	}
}

func TestCached_Resolve(t *testing.T) {
	var calls int
	next := resolverFunc(func(_ context.Context, u string) (string, error) {
		calls++
		if u == "https://untitled.example" {
			return "", nil
		}
		return "Title", nil
	})

	cache := &mapCache{titles: map[string]string{}}
	c := NewCached(next, cache, time.Hour, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := c.Resolve(ctx, "https://a.example")
		if err != nil || got != "Title" {
			t.Fatalf("Resolve() = %q, %v; want Title, nil", got, err)
		}
	}
	if calls != 1 {
		t.Errorf("wrapped resolver called %d times, want 1", calls)
	}

	for i := 0; i < 2; i++ {
		_, _ = c.Resolve(ctx, "https://untitled.example")
	}
	if calls != 3 {
		t.Errorf("empty titles should not be cached, calls = %d, want 3", calls)
	}
}

func TestCached_IgnoresCacheErrors(t *testing.T) {
	next := resolverFunc(func(context.Context, string) (string, error) {
		return "Live", nil
	})

	c := NewCached(next, &mapCache{err: errors.New("redis down")}, time.Hour, nil)
	got, err := c.Resolve(context.Background(), "https://a.example")
	if err != nil || got != "Live" {
		t.Errorf("Resolve() = %q, %v; want Live, nil", got, err)
	}
}
