// Package sqlite implements the record store on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/MrSnakeDoc/archivist/internal/store"
)

//go:embed schema.sql
var schema string

// Store handles database operations
type Store struct {
	db *sql.DB
}

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single writer keeps created_at monotonic with seq.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Insert writes a record. The id is generated here and created_at comes
// from the SQLite clock.
func (s *Store) Insert(ctx context.Context, collection string, rec store.Record) (string, error) {
	id := uuid.NewString()

	fields := rec.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO records (id, collection, user_id, category_id, fields) VALUES (?, ?, ?, ?, ?)",
		id, collection, rec.UserID, rec.CategoryID, string(data),
	)
	if err != nil {
		return "", fmt.Errorf("insert %s record: %w", collection, err)
	}

	return id, nil
}

// Query selects on the indexed columns and filters free-form fields in memory.
func (s *Store) Query(ctx context.Context, collection string, filters []store.Filter, order store.Order) ([]store.Record, error) {
	var (
		where = []string{"collection = ?"}
		args  = []any{collection}
	)
	for _, f := range filters {
		switch f.Field {
		case store.FieldID:
			where = append(where, "id = ?")
		case store.FieldUserID:
			where = append(where, "user_id = ?")
		case store.FieldCategoryID:
			where = append(where, "category_id = ?")
		default:
			continue
		}
		args = append(args, f.Value)
	}

	direction := "ASC"
	if order == store.NewestFirst {
		direction = "DESC"
	}

	query := fmt.Sprintf(
		"SELECT id, user_id, category_id, fields, created_at FROM records WHERE %s ORDER BY created_at %s, seq %s",
		strings.Join(where, " AND "), direction, direction,
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	records := make([]store.Record, 0)
	for rows.Next() {
		var (
			rec       store.Record
			fields    string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.CategoryID, &fields, &createdAt); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", collection, err)
		}
		if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
			return nil, fmt.Errorf("decode %s fields: %w", collection, err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		if store.Matches(rec, filters) {
			records = append(records, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
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

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
