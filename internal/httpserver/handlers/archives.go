package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/archivist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/archivist/internal/logger"
)

// UploadField is the multipart field holding the export file.
const UploadField = "file"

// UploadArchive imports a multipart export file into the category and
// answers with the import report.
func UploadArchive(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > d.MaxUploadSize {
			writeError(d, w, r, &http.MaxBytesError{Limit: d.MaxUploadSize})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadSize)

		file, header, err := r.FormFile(UploadField)
		if err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				writeError(d, w, r, err)
				return
			}
			badRequest(w, "multipart field \""+UploadField+"\" is required")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		// Title resolution may outlast the server write timeout.
		if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
			d.Logger.Debug("could not lift write deadline", logger.Error(err))
		}

		scope := scopeOf(r)
		report, err := d.Archivist.Import(r.Context(), scope, header.Filename, data)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		if !report.Complete() {
			d.Logger.Warn("import completed with write failures",
				logger.String("archive", report.Archive.ID),
				logger.Int("failed_notes", len(report.Notes.Failed)),
				logger.Int("failed_links", len(report.Links.Failed)))
		}
		writeJSON(w, http.StatusCreated, report)
	}
}

// ListArchives lists the archives of the category, newest first.
func ListArchives(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		archives, err := d.Archivist.Archives(r.Context(), scopeOf(r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, archives)
	}
}
