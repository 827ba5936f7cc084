package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/archivist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/archivist/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/archivist/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	r.Route("/api", func(api chi.Router) {
		api.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		api.Use(mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RateLimitBurst,
			RefillPerIPPerMin: d.RateLimitPerMin,
			MaxEntries:        d.RateLimitMaxIPs,
			SweepInterval:     d.RateLimitSweep,
			IdleTTL:           d.RateLimitIdleTTL,
			TrustProxy:        d.TrustProxy,
		}, d.Logger))
		api.Use(mw.RequireUser)

		api.Route("/categories/{"+handlers.CategoryParam+"}", func(c chi.Router) {
			// An import runs to completion once its file is stored, so it
			// gets no request timeout.
			c.Post("/archives", handlers.UploadArchive(d))

			timed := c.With(middleware.Timeout(d.RequestTimeout))
			timed.Get("/archives", handlers.ListArchives(d))
			timed.Post("/links", handlers.AddLink(d))
			timed.Get("/links", handlers.ListLinks(d))
			timed.Post("/notes", handlers.AddNote(d))
			timed.Get("/notes", handlers.ListNotes(d))
		})
	})
}
