package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/archivist/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "archivist.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_InsertAndQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)

	urls := []string{"https://a.example", "https://b.example", "https://c.example"}
	for _, u := range urls {
		if _, err := s.Insert(ctx, "links", store.Record{
			UserID:     "u1",
			CategoryID: "c1",
			Fields:     map[string]string{"url": u, "title": u},
		}); err != nil {
			t.Fatalf("Insert(%s) error = %v", u, err)
		}
	}
	// Noise in another scope and collection
	_, _ = s.Insert(ctx, "links", store.Record{UserID: "u1", CategoryID: "c2", Fields: map[string]string{"url": "https://z.example"}})
	_, _ = s.Insert(ctx, "notes", store.Record{UserID: "u1", CategoryID: "c1", Fields: map[string]string{"text": "hi"}})

	scope := []store.Filter{store.Eq(store.FieldUserID, "u1"), store.Eq(store.FieldCategoryID, "c1")}

	oldest, err := s.Query(ctx, "links", scope, store.OldestFirst)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(oldest) != len(urls) {
		t.Fatalf("Query() returned %d records, want %d", len(oldest), len(urls))
	}
	for i, rec := range oldest {
		if rec.Get("url") != urls[i] {
			t.Errorf("oldest[%d].url = %q, want %q", i, rec.Get("url"), urls[i])
		}
		if rec.CreatedAt.Before(before) {
			t.Errorf("oldest[%d].CreatedAt = %v, expected a server-assigned time", i, rec.CreatedAt)
		}
	}

	newest, err := s.Query(ctx, "links", scope, store.NewestFirst)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if newest[0].Get("url") != "https://c.example" {
		t.Errorf("newest[0].url = %q, want https://c.example", newest[0].Get("url"))
	}
}

func TestStore_Exists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "links", store.Record{UserID: "u1", CategoryID: "c1", Fields: map[string]string{"url": "https://a.example"}})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	tests := []struct {
		name     string
		category string
		url      string
		want     bool
	}{
		{"duplicate", "c1", "https://a.example", true},
		{"other category", "c2", "https://a.example", false},
		{"other url", "c1", "https://b.example", false},
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

func TestStore_ReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archivist.db")
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	id, err := s.Insert(ctx, "archives", store.Record{UserID: "u1", CategoryID: "c1", Fields: map[string]string{"filename": "chat.txt"}})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	_ = s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("New() on reopen error = %v", err)
	}
	defer s.Close()

	records, err := s.Query(ctx, "archives", []store.Filter{store.Eq(store.FieldID, id)}, store.OldestFirst)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 1 || records[0].Get("filename") != "chat.txt" {
		t.Errorf("Query() after reopen = %+v, want the archive record", records)
	}
}
