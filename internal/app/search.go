package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/auctionsync/internal/catalog"
)

type searchLine struct {
	Title     string `json:"title"`
	DetailURL string `json:"url"`
	ImageURL  string `json:"image_url"`
}

// Search queries the catalog once and writes one JSON object per hit.
// It needs no site or listing configuration.
func Search(ctx context.Context, w io.Writer, baseURL, query string, timeout time.Duration) error {
	client := catalog.NewClient(baseURL, &http.Client{Timeout: timeout})
	results, err := client.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(searchLine{Title: r.Title, DetailURL: r.DetailURL, ImageURL: r.ImageURL}); err != nil {
			return err
		}
	}
	return nil
}
