package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/mw"
)

func init() { Register(GroupPage, registerPage) }

func registerPage(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Page(d))
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/status", handlers.Status(d))

	r.Route("/events", func(r chi.Router) {
		if d.EventLimit.Burst > 0 {
			r.Use(mw.RateLimit(d.EventLimit))
		}
		r.Post("/search", handlers.SearchEvent(d))
		r.Post("/comments", handlers.CommentEvent(d))
		r.Post("/comments/refresh", handlers.CommentRefreshEvent(d))
		r.Post("/watchlist/{auctionId}", handlers.WatchlistEvent(d))
	})
}
