package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/archivist/internal/httpserver/deps"
)

type addNoteRequest struct {
	Text string `json:"text" validate:"required,max=65536"`
}

// AddNote saves a note typed by the user.
func AddNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addNoteRequest
		if err := decode(d, r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}

		note, err := d.Archivist.AddNote(r.Context(), scopeOf(r), req.Text)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, note)
	}
}

// ListNotes lists the notes of the category, newest first.
func ListNotes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notes, err := d.Archivist.Notes(r.Context(), scopeOf(r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, notes)
	}
}
