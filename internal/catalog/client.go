// Package catalog queries the external anime catalog (Jikan-compatible).
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/auctionsync/internal/domain"
)

// DefaultBaseURL is the public Jikan anime search endpoint.
const DefaultBaseURL = "https://api.jikan.moe/v4/anime"

// Client performs read-only catalog lookups.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type searchResponse struct {
	Data []item `json:"data"`
}

type item struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Images struct {
		JPG struct {
			ImageURL string `json:"image_url"`
		} `json:"jpg"`
	} `json:"images"`
}

// SearchURL builds the lookup URL; the query is percent-encoded.
func (c *Client) SearchURL(query string) string {
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + "q=" + url.QueryEscape(query)
}

// Search looks up query and returns the hits in catalog order.
// An empty hit list is a valid answer, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(query), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &domain.StatusError{Op: "catalog search", Status: resp.StatusCode}
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: catalog search: %v", domain.ErrMalformedResponse, err)
	}

	results := make([]domain.SearchResult, 0, len(body.Data))
	for _, it := range body.Data {
		results = append(results, domain.SearchResult{
			Title:     it.Title,
			DetailURL: it.URL,
			ImageURL:  it.Images.JPG.ImageURL,
		})
	}
	return results, nil
}
