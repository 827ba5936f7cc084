package archive

import (
	"github.com/MrSnakeDoc/archivist/internal/domain"
	"github.com/MrSnakeDoc/archivist/internal/store"
)

// Field names of the persisted documents.
const (
	fieldStoragePath = "storagePath"
	fieldFilename    = "filename"
	fieldText        = "text"
	fieldSender      = "sender"
	fieldDate        = "date"
	fieldTime        = "time"
	fieldURL         = "url"
	fieldTitle       = "title"
)

func scopedRecord(scope domain.Scope, fields map[string]string) store.Record {
	return store.Record{
		UserID:     scope.UserID,
		CategoryID: scope.CategoryID,
		Fields:     fields,
	}
}

func scopeFilters(scope domain.Scope) []store.Filter {
	return []store.Filter{
		store.Eq(store.FieldUserID, scope.UserID),
		store.Eq(store.FieldCategoryID, scope.CategoryID),
	}
}

func archiveRecord(scope domain.Scope, storagePath, filename string) store.Record {
	return scopedRecord(scope, map[string]string{
		fieldStoragePath: storagePath,
		fieldFilename:    filename,
	})
}

func noteRecord(scope domain.Scope, msg domain.ParsedMessage) store.Record {
	return scopedRecord(scope, map[string]string{
		fieldText:   msg.Content,
		fieldSender: msg.Sender,
		fieldDate:   msg.Date,
		fieldTime:   msg.Time,
	})
}

func linkRecord(scope domain.Scope, link domain.EnrichedLink) store.Record {
	return scopedRecord(scope, map[string]string{
		fieldURL:   link.URL,
		fieldTitle: link.Title,
	})
}

func scopeOf(rec store.Record) domain.Scope {
	return domain.Scope{UserID: rec.UserID, CategoryID: rec.CategoryID}
}

func noteFromRecord(rec store.Record) domain.Note {
	return domain.Note{
		ID:        rec.ID,
		Scope:     scopeOf(rec),
		Text:      rec.Get(fieldText),
		Sender:    rec.Get(fieldSender),
		Date:      rec.Get(fieldDate),
		Time:      rec.Get(fieldTime),
		CreatedAt: rec.CreatedAt,
	}
}

func linkFromRecord(rec store.Record) domain.Link {
	return domain.Link{
		ID:        rec.ID,
		Scope:     scopeOf(rec),
		URL:       rec.Get(fieldURL),
		Title:     rec.Get(fieldTitle),
		CreatedAt: rec.CreatedAt,
	}
}

func archiveFromRecord(rec store.Record) domain.Archive {
	return domain.Archive{
		ID:          rec.ID,
		Scope:       scopeOf(rec),
		StoragePath: rec.Get(fieldStoragePath),
		Filename:    rec.Get(fieldFilename),
		CreatedAt:   rec.CreatedAt,
	}
}
