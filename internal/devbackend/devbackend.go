// Package devbackend is a development stand-in for the auction site: it
// serves listing pages that satisfy the page's DOM contract and the JSON
// endpoints the components call.
package devbackend

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/mw"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
	"github.com/MrSnakeDoc/auctionsync/internal/page"
)

// CommentTimeLayout formats cm_date.
const CommentTimeLayout = "2006-01-02 15:04:05"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Options struct {
	Store       Store
	DefaultUser string // used when the request carries no session cookie
	Logger      logger.Logger
	RateLimit   mw.RateLimitConfig // zero Burst disables limiting
	Now         func() time.Time
}

// Handler serves the development backend.
type Handler struct {
	store  Store
	user   string
	logger logger.Logger
	limit  mw.RateLimitConfig
	now    func() time.Time
}

func New(opts Options) *Handler {
	h := &Handler{
		store:  opts.Store,
		user:   opts.DefaultUser,
		logger: opts.Logger,
		limit:  opts.RateLimit,
		now:    opts.Now,
	}
	if h.user == "" {
		h.user = "demo"
	}
	if h.logger == nil {
		h.logger = logger.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Mount registers the routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/", h.index)

	r.Route("/listing/{auctionId}", func(r chi.Router) {
		r.MethodNotAllowed(methodNotAllowed)
		r.Get("/", h.listing)
		r.Get("/get_comments/", h.comments)
		// Removal refuses GET in the body only and still answers 200.
		r.Get("/removeWatchlist/", refuseGet)

		r.Group(func(r chi.Router) {
			if h.limit.Burst > 0 {
				r.Use(mw.RateLimit(h.limit))
			}
			r.Use(requireToken)
			r.Post("/comment/", h.createComment)
			r.Post("/addWatchlist/", h.addWatchlist)
			r.Post("/removeWatchlist/", h.removeWatchlist)
		})
	})
}

// userOf returns the session user: the session cookie value, or the
// configured default.
func (h *Handler) userOf(r *http.Request) string {
	if c, err := r.Cookie(page.SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return h.user
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, statusBody{
		Status:  "error",
		Message: r.Method + " method not allowed",
	})
}

func refuseGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusBody{
		Status:  "error",
		Message: r.Method + " method not allowed",
	})
}

type statusBody struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Added   *bool  `json:"added,omitempty"`
	Removed *bool  `json:"removed,omitempty"`
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
