// Package store defines the append-only record store the import pipeline
// writes to. Concrete backends live in the redis, sqlite and memory
// sub-packages.
package store

import (
	"context"
	"sort"
	"time"
)

// Reserved field names usable in filters.
const (
	FieldID         = "id"
	FieldUserID     = "userId"
	FieldCategoryID = "categoryId"
)

// Record is a schemaless document scoped to a user and a category.
type Record struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	CategoryID string            `json:"categoryId"`
	Fields     map[string]string `json:"fields"`

	// CreatedAt is set by the store at insert time; any caller value is ignored.
	CreatedAt time.Time `json:"createdAt"`
}

// Get returns the value of a reserved or free-form field.
func (r Record) Get(field string) string {
	switch field {
	case FieldID:
		return r.ID
	case FieldUserID:
		return r.UserID
	case FieldCategoryID:
		return r.CategoryID
	default:
		return r.Fields[field]
	}
}

// Filter is an equality predicate on one field.
type Filter struct {
	Field string
	Value string
}

// Eq builds an equality filter.
func Eq(field, value string) Filter {
	return Filter{Field: field, Value: value}
}

// Order controls the CreatedAt ordering of query results.
type Order int

const (
	OldestFirst Order = iota
	NewestFirst
)

// Store is the record store contract.
type Store interface {
	// Insert appends rec to collection and returns the assigned id.
	Insert(ctx context.Context, collection string, rec Record) (string, error)
	// Query returns every record of collection matching all filters.
	Query(ctx context.Context, collection string, filters []Filter, order Order) ([]Record, error)
	// Exists reports whether at least one record matches all filters.
	Exists(ctx context.Context, collection string, filters []Filter) (bool, error)
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Matches reports whether rec satisfies every filter.
func Matches(rec Record, filters []Filter) bool {
	for _, f := range filters {
		if rec.Get(f.Field) != f.Value {
			return false
		}
	}
	return true
}

// ScopeFilters extracts the user and category values from filters, if present.
func ScopeFilters(filters []Filter) (userID, categoryID string) {
	for _, f := range filters {
		switch f.Field {
		case FieldUserID:
			userID = f.Value
		case FieldCategoryID:
			categoryID = f.Value
		}
	}
	return userID, categoryID
}

// Sort orders records in place by CreatedAt. Ties keep insertion order.
func Sort(records []Record, order Order) {
	sort.SliceStable(records, func(i, j int) bool {
		if order == NewestFirst {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}

func cloneFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of rec.
func Clone(rec Record) Record {
	rec.Fields = cloneFields(rec.Fields)
	return rec
}
