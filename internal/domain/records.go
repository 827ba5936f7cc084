package domain

import (
	"strings"
	"time"
)

// Collection names of the record store.
const (
	CollectionArchives = "archives"
	CollectionNotes    = "notes"
	CollectionLinks    = "links"
)

// Scope is the (user, category) pair every persisted record belongs to.
type Scope struct {
	UserID     string `json:"userId"`
	CategoryID string `json:"categoryId"`
}

// Validate reports ErrInvalidScope when either half of the scope is blank
// or is not a single path segment. Both halves end up in blob keys.
func (s Scope) Validate() error {
	if !isSegment(s.UserID) || !isSegment(s.CategoryID) {
		return ErrInvalidScope
	}
	return nil
}

// Archive is the metadata record written for one uploaded export file.
type Archive struct {
	// ─────────────────────────────
	// Identity (assigned by the store)
	// ─────────────────────────────

	ID string `json:"id"`

	// ─────────────────────────────
	// Ownership
	// ─────────────────────────────

	Scope

	// ─────────────────────────────
	// Blob reference
	// ─────────────────────────────

	// StoragePath is the blob key.
	// Example: archives/u1/1717171717171_chat.txt
	StoragePath string `json:"storagePath"`

	// Filename is the name of the uploaded file as sent by the client.
	Filename string `json:"filename"`

	// CreatedAt is assigned by the record store clock.
	CreatedAt time.Time `json:"createdAt"`
}

// Note is a persisted message body.
type Note struct {
	ID string `json:"id"`
	Scope

	Text string `json:"text"`

	// Sender, Date and Time are only set for notes that came from an import.
	Sender string `json:"sender,omitempty"`
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Link is a persisted URL with its display title.
type Link struct {
	ID string `json:"id"`
	Scope

	URL   string `json:"url"`
	Title string `json:"title"`

	CreatedAt time.Time `json:"createdAt"`
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isSegment(s string) bool {
	if isBlank(s) || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\")
}
