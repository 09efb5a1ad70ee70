package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/mw"
)

func init() { Register(GroupProbes, registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	restricted := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	restricted.Get("/healthz", handlers.Healthz(d))
	restricted.Get("/readyz", handlers.Readyz(d))
}
