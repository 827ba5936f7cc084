// Package archive imports chat exports into the record store: the raw file
// goes to the blob store, each message becomes a note and each URL found in
// a message becomes a link with a resolved title.
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/archivist/internal/blob"
	"github.com/MrSnakeDoc/archivist/internal/domain"
	"github.com/MrSnakeDoc/archivist/internal/enrich"
	"github.com/MrSnakeDoc/archivist/internal/links"
	"github.com/MrSnakeDoc/archivist/internal/logger"
	"github.com/MrSnakeDoc/archivist/internal/metrics"
	"github.com/MrSnakeDoc/archivist/internal/parser"
	"github.com/MrSnakeDoc/archivist/internal/store"
)

// Importer runs imports and manual note/link entry for one deployment.
// It holds no per-import state and is safe for concurrent use.
type Importer struct {
	records  store.Store
	blobs    blob.Store
	enricher *enrich.Enricher
	log      logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewImporter creates an Importer. m may be nil.
func NewImporter(records store.Store, blobs blob.Store, enricher *enrich.Enricher, log logger.Logger, m *metrics.Metrics) *Importer {
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{
		records:  records,
		blobs:    blobs,
		enricher: enricher,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

// Import stores data as an archive of scope and appends its messages and
// links to the record store.
//
// The upload and the archive metadata write are fatal: on failure nothing
// else is written and the error is returned. After that, note and link
// write failures are logged and collected in the Report, and the import
// carries on. Cancelling ctx before the upload aborts the import; after it,
// cancellation is ignored.
func (i *Importer) Import(ctx context.Context, scope domain.Scope, filename string, data []byte) (report Report, err error) {
	defer func() { i.metrics.ImportFinished(err) }()

	if err := scope.Validate(); err != nil {
		return Report{}, err
	}

	log := i.log.With(
		logger.String("user", scope.UserID),
		logger.String("category", scope.CategoryID),
		logger.String("filename", filename),
	)

	messages := parser.Parse(filename, string(data))

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	path := blob.ArchivePath(scope.UserID, i.now(), filename)
	if err := i.blobs.Upload(ctx, path, data); err != nil {
		log.Error("archive upload failed", logger.String("path", path), logger.Error(err))
		return Report{}, &UploadError{Path: path, Err: err}
	}

	// Once the blob is stored the import always runs to the end, even if
	// the caller goes away. Slow resolvers are bounded by their own timeouts.
	ctx = context.WithoutCancel(ctx)

	archiveID, err := i.records.Insert(ctx, domain.CollectionArchives, archiveRecord(scope, path, filename))
	if err != nil {
		log.Error("failed to save archive metadata", logger.String("path", path), logger.Error(err))
		return Report{}, fmt.Errorf("save archive metadata: %w", err)
	}
	i.metrics.RecordWritten(domain.CollectionArchives)

	report = Report{
		Archive: domain.Archive{
			ID:          archiveID,
			Scope:       scope,
			StoragePath: path,
			Filename:    filename,
		},
		Messages: len(messages),
		Notes:    newOutcome(),
		Links:    newOutcome(),
	}

	for idx, msg := range messages {
		i.importMessage(ctx, log, scope, idx, msg, &report)
	}

	log.Info("archive imported",
		logger.String("archive", archiveID),
		logger.Int("messages", report.Messages),
		logger.Int("skipped", report.Skipped),
		logger.Int("notes", len(report.Notes.Written)),
		logger.Int("links", len(report.Links.Written)),
		logger.Int("failed", len(report.Notes.Failed)+len(report.Links.Failed)),
	)

	return report, nil
}

// importMessage folds one message into report.
func (i *Importer) importMessage(ctx context.Context, log logger.Logger, scope domain.Scope, idx int, msg domain.ParsedMessage, report *Report) {
	if strings.TrimSpace(msg.Content) == "" {
		report.Skipped++
		return
	}

	if id, err := i.insert(ctx, domain.CollectionNotes, noteRecord(scope, msg)); err != nil {
		log.Warn("failed to save note", logger.Int("message", idx), logger.Error(err))
		report.Notes.fail(idx, "", err)
	} else {
		report.Notes.ok(id)
	}

	urls := links.Extract(msg.Content)
	if len(urls) == 0 {
		return
	}

	// Link writes stay sequential; only title lookups run concurrently.
	for _, link := range i.enricher.Enrich(ctx, urls) {
		if link.URL == "" {
			continue
		}
		if link.Title == "" {
			report.Untitled++
		}
		link = link.WithFallbackTitle()

		id, err := i.insert(ctx, domain.CollectionLinks, linkRecord(scope, link))
		if err != nil {
			log.Warn("failed to save link", logger.Int("message", idx), logger.String("url", link.URL), logger.Error(err))
			report.Links.fail(idx, link.URL, err)
			continue
		}
		report.Links.ok(id)
	}
}

func (i *Importer) insert(ctx context.Context, collection string, rec store.Record) (string, error) {
	id, err := i.records.Insert(ctx, collection, rec)
	if err != nil {
		i.metrics.RecordWriteFailed(collection)
		return "", err
	}
	i.metrics.RecordWritten(collection)
	return id, nil
}

// AddLink saves a single URL typed by the user. The same URL may exist
// once per (user, category).
func (i *Importer) AddLink(ctx context.Context, scope domain.Scope, rawURL string) (domain.Link, error) {
	if err := scope.Validate(); err != nil {
		return domain.Link{}, err
	}

	u := strings.TrimSpace(rawURL)
	if u == "" {
		return domain.Link{}, ErrEmptyURL
	}

	filters := append(scopeFilters(scope), store.Eq(fieldURL, u))
	exists, err := i.records.Exists(ctx, domain.CollectionLinks, filters)
	if err != nil {
		return domain.Link{}, fmt.Errorf("check duplicate link: %w", err)
	}
	if exists {
		return domain.Link{}, ErrDuplicateLink
	}

	link := i.enricher.Enrich(ctx, []string{u})[0].WithFallbackTitle()

	id, err := i.insert(ctx, domain.CollectionLinks, linkRecord(scope, link))
	if err != nil {
		return domain.Link{}, fmt.Errorf("save link: %w", err)
	}

	return domain.Link{
		ID:    id,
		Scope: scope,
		URL:   link.URL,
		Title: link.Title,
	}, nil
}

// AddNote saves a note typed by the user.
func (i *Importer) AddNote(ctx context.Context, scope domain.Scope, text string) (domain.Note, error) {
	if err := scope.Validate(); err != nil {
		return domain.Note{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Note{}, ErrEmptyNote
	}

	id, err := i.insert(ctx, domain.CollectionNotes, scopedRecord(scope, map[string]string{fieldText: text}))
	if err != nil {
		return domain.Note{}, fmt.Errorf("save note: %w", err)
	}

	return domain.Note{ID: id, Scope: scope, Text: text}, nil
}

// Notes lists the notes of scope, newest first.
func (i *Importer) Notes(ctx context.Context, scope domain.Scope) ([]domain.Note, error) {
	recs, err := i.list(ctx, domain.CollectionNotes, scope)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Note, len(recs))
	for n, rec := range recs {
		out[n] = noteFromRecord(rec)
	}
	return out, nil
}

// Links lists the links of scope, newest first.
func (i *Importer) Links(ctx context.Context, scope domain.Scope) ([]domain.Link, error) {
	recs, err := i.list(ctx, domain.CollectionLinks, scope)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Link, len(recs))
	for n, rec := range recs {
		out[n] = linkFromRecord(rec)
	}
	return out, nil
}

// Archives lists the imported archives of scope, newest first.
func (i *Importer) Archives(ctx context.Context, scope domain.Scope) ([]domain.Archive, error) {
	recs, err := i.list(ctx, domain.CollectionArchives, scope)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Archive, len(recs))
	for n, rec := range recs {
		out[n] = archiveFromRecord(rec)
	}
	return out, nil
}

func (i *Importer) list(ctx context.Context, collection string, scope domain.Scope) ([]store.Record, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	recs, err := i.records.Query(ctx, collection, scopeFilters(scope), store.NewestFirst)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return recs, nil
}
