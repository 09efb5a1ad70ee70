package devbackend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/auctionsync/internal/domain"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
)

// maxCommentForm bounds the multipart body of a comment post.
const maxCommentForm = 1 << 20

type commentJSON struct {
	Username string `json:"username"`
	CmDate   string `json:"cm_date"`
	Headline string `json:"headline"`
	Message  string `json:"message"`
}

// comments lists a listing's comments newest first. Unknown listings have
// no comments.
func (h *Handler) comments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "auctionId")

	stored, err := h.store.ListComments(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list comments", logger.String("listing_id", id), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}

	out := make([]commentJSON, 0, len(stored))
	for _, c := range stored {
		out = append(out, commentJSON{
			Username: c.Author,
			CmDate:   c.PostedAt.Format(CommentTimeLayout),
			Headline: c.Headline,
			Message:  c.Message,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "auctionId")

	if err := r.ParseMultipartForm(maxCommentForm); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeJSON(w, http.StatusBadRequest, errorBody("Please submit a valid comment."))
		return
	}
	headline := strings.TrimSpace(r.PostFormValue("headline"))
	message := strings.TrimSpace(r.PostFormValue("message"))
	if headline == "" || message == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("Please submit a valid comment."))
		return
	}

	c := &domain.Comment{
		ID:        uuid.NewString(),
		ListingID: id,
		Author:    h.userOf(r),
		Headline:  headline,
		Message:   message,
		PostedAt:  h.now().UTC(),
	}
	err := h.store.AddComment(r.Context(), c)
	if errors.Is(err, domain.ErrListingNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("The auction does not exist."))
		return
	}
	if err != nil {
		h.logger.Error("failed to save comment", logger.String("listing_id", id), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("Comment could not be saved."))
		return
	}

	h.logger.Info("comment added",
		logger.String("listing_id", id),
		logger.String("comment_id", c.ID),
		logger.String("user", c.Author))
	writeJSON(w, http.StatusOK, statusBody{Status: "success", Message: "Comment added successfully"})
}

func (h *Handler) addWatchlist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireListing(w, r)
	if !ok {
		return
	}
	added, err := h.store.AddToWatchlist(r.Context(), h.userOf(r), id)
	if err != nil {
		h.logger.Error("failed to add to watchlist", logger.String("listing_id", id), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, statusBody{Status: "error", Message: "Watchlist unavailable"})
		return
	}
	if !added {
		writeJSON(w, http.StatusOK, statusBody{Status: "error", Message: "Already in watchlist"})
		return
	}
	h.logger.Info("added to watchlist", logger.String("listing_id", id))
	yes := true
	writeJSON(w, http.StatusOK, statusBody{Status: "success", Added: &yes})
}

func (h *Handler) removeWatchlist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireListing(w, r)
	if !ok {
		return
	}
	removed, err := h.store.RemoveFromWatchlist(r.Context(), h.userOf(r), id)
	if err != nil {
		h.logger.Error("failed to remove from watchlist", logger.String("listing_id", id), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, statusBody{Status: "error", Message: "Watchlist unavailable"})
		return
	}
	if !removed {
		writeJSON(w, http.StatusOK, statusBody{Status: "error", Message: "Not in watchlist"})
		return
	}
	h.logger.Info("removed from watchlist", logger.String("listing_id", id))
	yes := true
	writeJSON(w, http.StatusOK, statusBody{Status: "success", Removed: &yes})
}

// requireListing answers 404 for unknown listings.
func (h *Handler) requireListing(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "auctionId")
	_, err := h.store.GetListing(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrListingNotFound):
		writeJSON(w, http.StatusNotFound, statusBody{Status: "error", Message: "The auction does not exist."})
		return "", false
	case err != nil:
		h.logger.Error("failed to load listing", logger.String("listing_id", id), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, statusBody{Status: "error", Message: "Listing unavailable"})
		return "", false
	}
	return id, true
}
