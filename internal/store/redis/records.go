package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/archivist/internal/store"
)

// Store persists records as JSON documents with sorted-set indexes
// scored by the Redis server clock.
type Store struct {
	client *redis.Client
}

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)

// NewStore creates a new Redis record store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Insert stores a record and adds it to the collection, user and scope indexes.
// CreatedAt comes from the Redis TIME command so every client shares one clock.
func (s *Store) Insert(ctx context.Context, collection string, rec store.Record) (string, error) {
	now, err := s.client.Time(ctx).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read server time: %w", err)
	}

	rec = store.Clone(rec)
	rec.ID = uuid.NewString()
	rec.CreatedAt = now.UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	member := redis.Z{Score: float64(now.UnixMicro()), Member: rec.ID}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, RecordKey(collection, rec.ID), data, 0)
		pipe.ZAdd(ctx, AllKey(collection), member)
		if rec.UserID != "" {
			pipe.ZAdd(ctx, UserKey(collection, rec.UserID), member)
			if rec.CategoryID != "" {
				pipe.ZAdd(ctx, ScopeKey(collection, rec.UserID, rec.CategoryID), member)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to save %s record: %w", collection, err)
	}

	return rec.ID, nil
}

// Query reads the narrowest matching index, loads the documents and applies
// the remaining filters in memory.
func (s *Store) Query(ctx context.Context, collection string, filters []store.Filter, order store.Order) ([]store.Record, error) {
	userID, categoryID := store.ScopeFilters(filters)
	key := indexKey(collection, userID, categoryID)

	var (
		ids []string
		err error
	)
	if order == store.NewestFirst {
		ids, err = s.client.ZRevRange(ctx, key, 0, -1).Result()
	} else {
		ids, err = s.client.ZRange(ctx, key, 0, -1).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s index: %w", collection, err)
	}

	records := make([]store.Record, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = RecordKey(collection, id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s records: %w", collection, err)
	}

	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a document; skip it
			continue
		}
		var rec store.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s record: %w", collection, err)
		}
		if store.Matches(rec, filters) {
			records = append(records, rec)
		}
	}

	return records, nil
}

// Exists reports whether a matching record is present.
func (s *Store) Exists(ctx context.Context, collection string, filters []store.Filter) (bool, error) {
	records, err := s.Query(ctx, collection, filters, store.OldestFirst)
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
