package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/archivist/internal/store"
)

// Store keeps records in process memory.
// It backs local development runs and the pipeline tests.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]store.Record // collection -> records in insertion order
	now         func() time.Time
}

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)

// New creates an empty memory store using the wall clock.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty memory store stamping records with now().
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		collections: make(map[string][]store.Record),
		now:         now,
	}
}

// Insert appends a record and assigns its id and creation time.
func (s *Store) Insert(_ context.Context, collection string, rec store.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec = store.Clone(rec)
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now().UTC()
	s.collections[collection] = append(s.collections[collection], rec)
	return rec.ID, nil
}

// Query returns matching records ordered by creation time.
func (s *Store) Query(_ context.Context, collection string, filters []store.Filter, order store.Order) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Record, 0)
	for _, rec := range s.collections[collection] {
		if store.Matches(rec, filters) {
			out = append(out, store.Clone(rec))
		}
	}
	store.Sort(out, order)
	return out, nil
}

// Exists reports whether any record matches.
func (s *Store) Exists(_ context.Context, collection string, filters []store.Filter) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.collections[collection] {
		if store.Matches(rec, filters) {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of records in a collection.
func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.collections[collection])
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }
