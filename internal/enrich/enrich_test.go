package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/MrSnakeDoc/archivist/internal/metrics"
)

func testURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://site%d.example", i)
	}
	return urls
}

func TestNew_DefaultConcurrency(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultConcurrency},
		{-3, DefaultConcurrency},
		{1, 1},
		{8, 8},
	}

	for _, tt := range tests {
		e := New(ResolverFunc(func(context.Context, string) (string, error) { return "", nil }), tt.in, nil, nil)
		if got := e.Concurrency(); got != tt.want {
			t.Errorf("New(%d).Concurrency() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEnrich_RespectsConcurrencyLimit(t *testing.T) {
	var (
		inFlight atomic.Int32
		peak     atomic.Int32
	)

	resolver := ResolverFunc(func(_ context.Context, u string) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return "title of " + u, nil
	})

	e := New(resolver, 3, nil, nil)
	urls := testURLs(10)
	got := e.Enrich(context.Background(), urls)

	if p := peak.Load(); p > 3 {
		t.Errorf("peak in-flight = %d, want <= 3", p)
	}
	if p := peak.Load(); p < 2 {
		t.Errorf("peak in-flight = %d, expected lookups to overlap", p)
	}
	if len(got) != len(urls) {
		t.Fatalf("Enrich() returned %d links, want %d", len(got), len(urls))
	}
}

func TestEnrich_KeepsInputOrder(t *testing.T) {
	urls := testURLs(10)

	// Later URLs finish first
	resolver := ResolverFunc(func(_ context.Context, u string) (string, error) {
		var i int
		_, _ = fmt.Sscanf(u, "https://site%d.example", &i)
		time.Sleep(time.Duration(10-i) * 2 * time.Millisecond)
		return fmt.Sprintf("T%d", i), nil
	})

	got := New(resolver, 4, nil, nil).Enrich(context.Background(), urls)

	for i, link := range got {
		if link.URL != urls[i] {
			t.Errorf("got[%d].URL = %q, want %q", i, link.URL, urls[i])
		}
		if want := fmt.Sprintf("T%d", i); link.Title != want {
			t.Errorf("got[%d].Title = %q, want %q", i, link.Title, want)
		}
	}
}

func TestEnrichDetailed_IsolatesFailures(t *testing.T) {
	urls := testURLs(10)
	boom := errors.New("lookup failed")

	resolver := ResolverFunc(func(_ context.Context, u string) (string, error) {
		switch u {
		case urls[4]:
			return "", boom
		case urls[7]:
			panic("resolver bug")
		}
		return "ok", nil
	})

	m := metrics.New()
	got, errs := New(resolver, 3, nil, m).EnrichDetailed(context.Background(), urls)

	if len(got) != 10 || len(errs) != 10 {
		t.Fatalf("EnrichDetailed() lengths = %d/%d, want 10/10", len(got), len(errs))
	}

	for i, link := range got {
		switch i {
		case 4:
			if link.Title != "" || !errors.Is(errs[i], boom) {
				t.Errorf("slot 4 = %+v err %v, want placeholder with lookup error", link, errs[i])
			}
		case 7:
			if link.Title != "" || errs[i] == nil {
				t.Errorf("slot 7 = %+v err %v, want placeholder with panic error", link, errs[i])
			}
		default:
			if link.Title != "ok" || errs[i] != nil {
				t.Errorf("slot %d = %+v err %v, want resolved", i, link, errs[i])
			}
		}
		if link.URL != urls[i] {
			t.Errorf("slot %d URL = %q, want %q", i, link.URL, urls[i])
		}
	}

	if n := testutil.ToFloat64(m.TitleResolutions.WithLabelValues(metrics.OutcomeError)); n != 2 {
		t.Errorf("error outcomes = %v, want 2", n)
	}
	if n := testutil.ToFloat64(m.TitleResolutions.WithLabelValues(metrics.OutcomeResolved)); n != 8 {
		t.Errorf("resolved outcomes = %v, want 8", n)
	}
}

func TestEnrich_EmptyInput(t *testing.T) {
	var calls atomic.Int32
	resolver := ResolverFunc(func(context.Context, string) (string, error) {
		calls.Add(1)
		return "", nil
	})

	got := New(resolver, 5, nil, nil).Enrich(context.Background(), nil)

	if got == nil || len(got) != 0 {
		t.Errorf("Enrich(nil) = %v, want empty non-nil slice", got)
	}
	if calls.Load() != 0 {
		t.Errorf("resolver called %d times, want 0", calls.Load())
	}
}

func TestEnrich_EachURLResolvedOnce(t *testing.T) {
	var (
		mu    sync.Mutex
		calls = map[string]int{}
	)
	resolver := ResolverFunc(func(_ context.Context, u string) (string, error) {
		mu.Lock()
		calls[u]++
		mu.Unlock()
		return "", nil
	})

	urls := testURLs(25)
	New(resolver, 5, nil, nil).Enrich(context.Background(), urls)

	for _, u := range urls {
		if calls[u] != 1 {
			t.Errorf("resolver called %d times for %s, want 1", calls[u], u)
		}
	}
}
