package devbackend

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auctionsync/internal/backend"
	"github.com/MrSnakeDoc/auctionsync/internal/domain"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
)

type indexEntry struct {
	*domain.Listing
	Path string
}

type listingView struct {
	Listing       *domain.Listing
	Watching      bool
	Comments      []*domain.Comment
	CSRFToken     string
	CommentAction string
}

type errorView struct {
	Code    int
	Message string
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	ensureToken(w, r)

	listings, err := h.store.ListListings(r.Context())
	if err != nil {
		h.logger.Error("failed to list listings", logger.Error(err))
		h.renderError(w, http.StatusInternalServerError, "Listings are unavailable.")
		return
	}
	entries := make([]indexEntry, 0, len(listings))
	for _, l := range listings {
		entries = append(entries, indexEntry{Listing: l, Path: backend.ListingPath(l.ID)})
	}
	h.render(w, http.StatusOK, "index.html", map[string]any{"Listings": entries})
}

// listing renders the page the client components bind to, with the
// user's watch state and the comments already in place.
func (h *Handler) listing(w http.ResponseWriter, r *http.Request) {
	token := ensureToken(w, r)
	id := chi.URLParam(r, "auctionId")

	l, err := h.store.GetListing(r.Context(), id)
	if errors.Is(err, domain.ErrListingNotFound) {
		h.renderError(w, http.StatusNotFound, "The auction does not exist.")
		return
	}
	if err != nil {
		h.logger.Error("failed to load listing", logger.String("listing_id", id), logger.Error(err))
		h.renderError(w, http.StatusInternalServerError, "The auction is unavailable.")
		return
	}

	watching, err := h.store.IsWatching(r.Context(), h.userOf(r), id)
	if err != nil {
		h.logger.Warn("failed to read watchlist", logger.String("listing_id", id), logger.Error(err))
	}
	comments, err := h.store.ListComments(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to read comments", logger.String("listing_id", id), logger.Error(err))
	}

	h.render(w, http.StatusOK, "listing.html", listingView{
		Listing:       l,
		Watching:      watching,
		Comments:      comments,
		CSRFToken:     token,
		CommentAction: backend.CommentPath(id),
	})
}

func (h *Handler) renderError(w http.ResponseWriter, code int, msg string) {
	h.render(w, code, "error.html", errorView{Code: code, Message: msg})
}

func (h *Handler) render(w http.ResponseWriter, code int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("failed to render template", logger.String("template", name), logger.Error(err))
	}
}
