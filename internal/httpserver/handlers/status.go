package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/deps"
)

type componentStatus struct {
	Enabled bool   `json:"enabled"`
	State   string `json:"state,omitempty"`
	Icons   *int   `json:"icons,omitempty"`
}

type statusResponse struct {
	ListingID  string                     `json:"listing_id"`
	Components map[string]componentStatus `json:"components"`
}

// Status reports which components the page carries and what the comment
// component is doing.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		s := d.Session
		components := map[string]componentStatus{
			"search":    {Enabled: s.Search() != nil},
			"comments":  {Enabled: s.Comments() != nil},
			"watchlist": {Enabled: s.Watchlist() != nil},
		}
		if c := s.Comments(); c != nil {
			components["comments"] = componentStatus{Enabled: true, State: c.State().String()}
		}
		if wl := s.Watchlist(); wl != nil {
			n := len(wl.Icons())
			components["watchlist"] = componentStatus{Enabled: true, Icons: &n}
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(statusResponse{
			ListingID:  d.ListingID,
			Components: components,
		})
	}
}
