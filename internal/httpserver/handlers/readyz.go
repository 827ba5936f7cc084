package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/archivist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/archivist/internal/logger"
)

const readyzPingTimeout = 2 * time.Second

type componentStatus struct {
	OK     bool   `json:"ok"`
	State  string `json:"state,omitempty"`
	Loaded *int   `json:"loaded,omitempty"`
	Error  string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz pings the record store. It answers 503 while the store is
// unreachable; the resolver components are informational.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Ready: true, Components: map[string]componentStatus{}}

		ctx, cancel := context.WithTimeout(r.Context(), readyzPingTimeout)
		defer cancel()

		store := componentStatus{OK: true}
		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("record store not ready", logger.Error(err))
			store = componentStatus{OK: false, Error: err.Error()}
			resp.Ready = false
		}
		resp.Components["store"] = store

		if d.Providers != nil {
			n := d.Providers()
			resp.Components["providers"] = componentStatus{OK: n > 0, Loaded: &n}
		}
		if d.Breaker != nil {
			state := d.Breaker()
			resp.Components["title_breaker"] = componentStatus{OK: state != "open", State: state}
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
