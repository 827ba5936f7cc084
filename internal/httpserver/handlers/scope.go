package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/archivist/internal/domain"
	"github.com/MrSnakeDoc/archivist/internal/httpserver/mw"
)

// CategoryParam is the route parameter naming the category.
const CategoryParam = "categoryID"

func scopeOf(r *http.Request) domain.Scope {
	return domain.Scope{
		UserID:     mw.UserID(r.Context()),
		CategoryID: chi.URLParam(r, CategoryParam),
	}
}
