package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/archivist/internal/httpserver/deps"
)

type addLinkRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

// AddLink saves one URL with its resolved title. 409 when the URL already
// exists in the category.
func AddLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addLinkRequest
		if err := decode(d, r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}

		link, err := d.Archivist.AddLink(r.Context(), scopeOf(r), req.URL)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, link)
	}
}

// ListLinks lists the links of the category, newest first.
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, err := d.Archivist.Links(r.Context(), scopeOf(r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, links)
	}
}

// decode reads a JSON body into dst and validates it.
func decode(d deps.Deps, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &bodyError{err: err}
	}
	return d.Validate.Struct(dst)
}

// bodyError marks a body that is not valid JSON for the request type.
type bodyError struct {
	err error
}

func (e *bodyError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *bodyError) Unwrap() error { return e.err }
