package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auctionsync/internal/domain"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/deps"
)

// maxFormMemory bounds multipart comment submissions kept in memory.
const maxFormMemory = 1 << 20

type eventResponse struct {
	Status string `json:"status"` // "accepted" | "ok" | "stale" | "error"
	Error  string `json:"error,omitempty"`
}

// SearchEvent submits the search form with query q.
func SearchEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := d.Session.Search()
		if c == nil {
			writeEvent(w, http.StatusNotFound, eventResponse{Status: "error", Error: "page has no search form"})
			return
		}
		query := r.FormValue("q")
		dispatch(w, r, d, "search", func(ctx context.Context) error {
			return c.Submit(ctx, query)
		})
	}
}

// CommentEvent writes the posted values into the comment form, then
// submits it.
func CommentEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := d.Session.Comments()
		if c == nil {
			writeEvent(w, http.StatusNotFound, eventResponse{Status: "error", Error: "page has no comment section"})
			return
		}
		if err := parseForm(r); err != nil {
			writeEvent(w, http.StatusBadRequest, eventResponse{Status: "error", Error: err.Error()})
			return
		}
		edits := formEdits(r)
		dispatch(w, r, d, "comments.submit", func(ctx context.Context) error {
			return c.Submit(ctx, edits...)
		})
	}
}

// CommentRefreshEvent re-fetches the comment list.
func CommentRefreshEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := d.Session.Comments()
		if c == nil {
			writeEvent(w, http.StatusNotFound, eventResponse{Status: "error", Error: "page has no comment section"})
			return
		}
		dispatch(w, r, d, "comments.refresh", c.Refresh)
	}
}

// WatchlistEvent clicks the icon of the listing in the URL.
func WatchlistEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wl := d.Session.Watchlist()
		if wl == nil {
			writeEvent(w, http.StatusNotFound, eventResponse{Status: "error", Error: "page has no watchlist icons"})
			return
		}
		icon := wl.Icon(chi.URLParam(r, "auctionId"))
		if icon == nil {
			writeEvent(w, http.StatusNotFound, eventResponse{Status: "error", Error: "no icon for this listing"})
			return
		}
		dispatch(w, r, d, "watchlist.toggle", func(ctx context.Context) error {
			return wl.Toggle(ctx, icon)
		})
	}
}

// dispatch runs action in the background and answers 202, or with
// ?wait=true runs it inline and reports the outcome.
func dispatch(w http.ResponseWriter, r *http.Request, d deps.Deps, name string, action func(context.Context) error) {
	if r.URL.Query().Get("wait") != "true" {
		d.Session.Loop().Go(context.WithoutCancel(r.Context()), name, action)
		writeEvent(w, http.StatusAccepted, eventResponse{Status: "accepted"})
		return
	}

	err := action(r.Context())
	switch {
	case err == nil:
		writeEvent(w, http.StatusOK, eventResponse{Status: "ok"})
	case errors.Is(err, domain.ErrStale):
		writeEvent(w, http.StatusConflict, eventResponse{Status: "stale", Error: err.Error()})
	case errors.Is(err, domain.ErrEmptyQuery), errors.Is(err, domain.ErrMissingListingID):
		writeEvent(w, http.StatusBadRequest, eventResponse{Status: "error", Error: err.Error()})
	default:
		writeEvent(w, http.StatusBadGateway, eventResponse{Status: "error", Error: err.Error()})
	}
}

func parseForm(r *http.Request) error {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// formEdits returns the posted fields in name order; the first value of a
// repeated name wins.
func formEdits(r *http.Request) []domain.Field {
	names := make([]string, 0, len(r.PostForm))
	for name := range r.PostForm {
		names = append(names, name)
	}
	sort.Strings(names)

	edits := make([]domain.Field, 0, len(names))
	for _, name := range names {
		edits = append(edits, domain.Field{Name: name, Value: r.PostForm.Get(name)})
	}
	return edits
}

func writeEvent(w http.ResponseWriter, status int, resp eventResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
