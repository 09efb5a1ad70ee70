package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
)

// Page renders the current state of the hosted document.
func Page(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := d.Session.Render(r.Context(), w); err != nil {
			d.Logger.Warn("failed to render page", logger.Error(err))
			http.Error(w, "page unavailable", http.StatusServiceUnavailable)
		}
	}
}
