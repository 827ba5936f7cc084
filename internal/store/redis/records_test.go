package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/archivist/internal/store"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestStore_InsertAssignsIDAndServerTime(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	serverNow := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mr.SetTime(serverNow)

	id, err := s.Insert(ctx, "notes", store.Record{
		UserID:     "u1",
		CategoryID: "c1",
		Fields:     map[string]string{"text": "hello"},
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id == "" {
		t.Fatal("Insert() returned empty id")
	}

	if !mr.Exists(RecordKey("notes", id)) {
		t.Errorf("record key %q not written", RecordKey("notes", id))
	}

	records, err := s.Query(ctx, "notes", []store.Filter{store.Eq(store.FieldUserID, "u1")}, store.OldestFirst)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Query() returned %d records, want 1", len(records))
	}
	if !records[0].CreatedAt.Equal(serverNow) {
		t.Errorf("CreatedAt = %v, want %v", records[0].CreatedAt, serverNow)
	}
	if got := records[0].Get("text"); got != "hello" {
		t.Errorf("Get(text) = %q, want %q", got, "hello")
	}
}

func TestStore_QueryScopeAndOrder(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	inserts := []struct {
		user, category, url string
	}{
		{"u1", "c1", "https://a.example"},
		{"u1", "c2", "https://b.example"},
		{"u2", "c1", "https://c.example"},
		{"u1", "c1", "https://d.example"},
	}
	for i, in := range inserts {
		mr.SetTime(base.Add(time.Duration(i) * time.Second))
		_, err := s.Insert(ctx, "links", store.Record{
			UserID:     in.user,
			CategoryID: in.category,
			Fields:     map[string]string{"url": in.url},
		})
		if err != nil {
			t.Fatalf("Insert(%s) error = %v", in.url, err)
		}
	}

	tests := []struct {
		name    string
		filters []store.Filter
		order   store.Order
		want    []string
	}{
		{
			name:    "scope oldest first",
			filters: []store.Filter{store.Eq(store.FieldUserID, "u1"), store.Eq(store.FieldCategoryID, "c1")},
			order:   store.OldestFirst,
			want:    []string{"https://a.example", "https://d.example"},
		},
		{
			name:    "scope newest first",
			filters: []store.Filter{store.Eq(store.FieldUserID, "u1"), store.Eq(store.FieldCategoryID, "c1")},
			order:   store.NewestFirst,
			want:    []string{"https://d.example", "https://a.example"},
		},
		{
			name:    "user only",
			filters: []store.Filter{store.Eq(store.FieldUserID, "u1")},
			order:   store.OldestFirst,
			want:    []string{"https://a.example", "https://b.example", "https://d.example"},
		},
		{
			name:    "free-form field",
			filters: []store.Filter{store.Eq("url", "https://c.example")},
			order:   store.OldestFirst,
			want:    []string{"https://c.example"},
		},
		{
			name:    "unknown scope",
			filters: []store.Filter{store.Eq(store.FieldUserID, "nobody")},
			order:   store.OldestFirst,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := s.Query(ctx, "links", tt.filters, tt.order)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(records) != len(tt.want) {
				t.Fatalf("Query() returned %d records, want %d", len(records), len(tt.want))
			}
			for i, rec := range records {
				if got := rec.Get("url"); got != tt.want[i] {
					t.Errorf("records[%d].url = %q, want %q", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestStore_Exists(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "links", store.Record{
		UserID:     "u1",
		CategoryID: "c1",
		Fields:     map[string]string{"url": "https://x.example"},
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	tests := []struct {
		name     string
		category string
		url      string
		want     bool
	}{
		{"same scope and url", "c1", "https://x.example", true},
		{"other category", "c2", "https://x.example", false},
		{"other url", "c1", "https://y.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Exists(ctx, "links", []store.Filter{
				store.Eq(store.FieldUserID, "u1"),
				store.Eq(store.FieldCategoryID, tt.category),
				store.Eq("url", tt.url),
			})
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_QuerySkipsDanglingIndexEntries(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "notes", store.Record{UserID: "u1", CategoryID: "c1"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	mr.Del(RecordKey("notes", id))

	records, err := s.Query(ctx, "notes", nil, store.OldestFirst)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Query() returned %d records, want 0", len(records))
	}
}

func TestStore_Ping(t *testing.T) {
	s, mr := newTestStore(t)

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	mr.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() after server shutdown should fail")
	}
}
