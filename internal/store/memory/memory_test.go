package memory

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/archivist/internal/store"
)

func steppingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func TestStore_InsertAndQuery(t *testing.T) {
	s := NewWithClock(steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if _, err := s.Insert(ctx, "notes", store.Record{
			UserID:     "u1",
			CategoryID: "c1",
			Fields:     map[string]string{"text": text},
		}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	scope := []store.Filter{store.Eq(store.FieldUserID, "u1"), store.Eq(store.FieldCategoryID, "c1")}

	oldest, _ := s.Query(ctx, "notes", scope, store.OldestFirst)
	newest, _ := s.Query(ctx, "notes", scope, store.NewestFirst)

	if len(oldest) != 3 || len(newest) != 3 {
		t.Fatalf("Query() lengths = %d/%d, want 3/3", len(oldest), len(newest))
	}
	if oldest[0].Get("text") != "first" {
		t.Errorf("oldest[0] = %q, want first", oldest[0].Get("text"))
	}
	if newest[0].Get("text") != "third" {
		t.Errorf("newest[0] = %q, want third", newest[0].Get("text"))
	}
	if s.Count("notes") != 3 {
		t.Errorf("Count() = %d, want 3", s.Count("notes"))
	}
}

func TestStore_QueryReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	fields := map[string]string{"url": "https://a.example"}
	if _, err := s.Insert(ctx, "links", store.Record{UserID: "u1", CategoryID: "c1", Fields: fields}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	fields["url"] = "mutated"

	records, _ := s.Query(ctx, "links", nil, store.OldestFirst)
	records[0].Fields["url"] = "mutated again"

	again, _ := s.Query(ctx, "links", nil, store.OldestFirst)
	if got := again[0].Get("url"); got != "https://a.example" {
		t.Errorf("stored url = %q, want https://a.example", got)
	}
}

func TestStore_Exists(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, _ = s.Insert(ctx, "links", store.Record{UserID: "u1", CategoryID: "c1", Fields: map[string]string{"url": "https://a.example"}})

	tests := []struct {
		name    string
		filters []store.Filter
		want    bool
	}{
		{"match", []store.Filter{store.Eq(store.FieldUserID, "u1"), store.Eq("url", "https://a.example")}, true},
		{"other user", []store.Filter{store.Eq(store.FieldUserID, "u2")}, false},
		{"no filters", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Exists(ctx, "links", tt.filters)
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists() = %v, want %v", got, tt.want)
			}
		})
	}
}
