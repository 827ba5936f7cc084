package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/archivist/internal/archive"
	"github.com/MrSnakeDoc/archivist/internal/domain"
	"github.com/MrSnakeDoc/archivist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/archivist/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var validationErrs validator.ValidationErrors
	var maxBytes *http.MaxBytesError

	var bodyErr *bodyError

	switch {
	case errors.Is(err, archive.ErrUpload):
		return http.StatusBadGateway
	case errors.Is(err, archive.ErrDuplicateLink):
		return http.StatusConflict
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidScope),
		errors.Is(err, archive.ErrEmptyURL),
		errors.Is(err, archive.ErrEmptyNote),
		errors.As(err, &validationErrs),
		errors.As(err, &bodyErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the mapped status. Server-side failures are
// logged and their cause is still returned to the caller.
func writeError(d deps.Deps, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
