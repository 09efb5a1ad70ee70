// Package backend talks to the auction site's listing endpoints: comment
// creation and listing, and watchlist add/remove.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/auctionsync/internal/csrf"
	"github.com/MrSnakeDoc/auctionsync/internal/domain"
)

// maxBody bounds how much of a response is read.
const maxBody = 1 << 20

// Client is bound to one site origin and shares its cookie jar with the
// page session.
type Client struct {
	site       *url.URL
	httpClient *http.Client
	tokens     *csrf.Source
}

// NewClient creates a backend client. httpClient.Jar must be set: it holds
// the session and CSRF cookies.
func NewClient(site *url.URL, httpClient *http.Client) (*Client, error) {
	if httpClient == nil || httpClient.Jar == nil {
		return nil, fmt.Errorf("backend client needs an http client with a cookie jar")
	}
	return &Client{
		site:       site,
		httpClient: httpClient,
		tokens:     csrf.NewSource(httpClient.Jar, site),
	}, nil
}

// Resolve turns a path or relative reference (e.g. a form action) into an
// absolute URL on the site.
func (c *Client) Resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", ref, err)
	}
	return c.site.ResolveReference(u).String(), nil
}

// ─────────────────────────────────────────────────────────────────
// Comments
// ─────────────────────────────────────────────────────────────────

type commentDTO struct {
	Username string `json:"username"`
	CmDate   string `json:"cm_date"`
	Headline string `json:"headline"`
	Message  string `json:"message"`
}

// CreateComment posts fields as multipart/form-data to endpoint.
// The call succeeds only on a 2xx status with a non-empty JSON body that has
// no "error" member.
func (c *Client) CreateComment(ctx context.Context, endpoint string, fields []domain.Field) error {
	const op = "create comment"
	if endpoint == "" {
		return domain.ErrMissingEndpoint
	}
	target, err := c.Resolve(endpoint)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return fmt.Errorf("failed to encode field %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if err := c.tokens.Apply(req); err != nil {
		return err
	}

	body, err := c.do(req, op)
	if err != nil {
		return err
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, op, err)
	}
	switch v := payload.(type) {
	case nil:
		return &domain.AppError{Op: op, Message: "empty response"}
	case map[string]any:
		if len(v) == 0 {
			return &domain.AppError{Op: op, Message: "empty response"}
		}
		if e, ok := v["error"]; ok {
			return &domain.AppError{Op: op, Message: fmt.Sprint(e)}
		}
	case []any:
		if len(v) == 0 {
			return &domain.AppError{Op: op, Message: "empty response"}
		}
	}
	return nil
}

// ListComments fetches the full comment list of a listing in server order.
func (c *Client) ListComments(ctx context.Context, listingID string) ([]domain.CommentEntry, error) {
	const op = "list comments"
	if listingID == "" {
		return nil, domain.ErrMissingListingID
	}
	target, err := c.Resolve(CommentsPath(listingID))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, op)
	if err != nil {
		return nil, err
	}

	var dtos []commentDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, op, err)
	}

	entries := make([]domain.CommentEntry, 0, len(dtos))
	for _, d := range dtos {
		entries = append(entries, domain.CommentEntry{
			Author:   d.Username,
			PostedAt: d.CmDate,
			Headline: d.Headline,
			Body:     d.Message,
		})
	}
	return entries, nil
}

// ─────────────────────────────────────────────────────────────────
// Watchlist
// ─────────────────────────────────────────────────────────────────

type watchlistRequest struct {
	AuctionID string `json:"auction_id"`
}

type watchlistResponse struct {
	Status  string `json:"status"`
	Added   *bool  `json:"added,omitempty"`
	Message string `json:"message,omitempty"`
}

// AddWatchlist asks the server to add the listing to the user's watchlist.
func (c *Client) AddWatchlist(ctx context.Context, listingID string) (domain.Membership, error) {
	return c.watchlist(ctx, listingID, AddWatchlistPath(listingID), "add watchlist")
}

// RemoveWatchlist asks the server to remove the listing from the watchlist.
func (c *Client) RemoveWatchlist(ctx context.Context, listingID string) (domain.Membership, error) {
	return c.watchlist(ctx, listingID, RemoveWatchlistPath(listingID), "remove watchlist")
}

// watchlist posts the JSON body and decodes the server's verdict. The HTTP
// status is not consulted: the payload's status field decides, and a body
// that cannot be decoded is a failure.
func (c *Client) watchlist(ctx context.Context, listingID, path, op string) (domain.Membership, error) {
	if listingID == "" {
		return domain.Membership{}, domain.ErrMissingListingID
	}
	target, err := c.Resolve(path)
	if err != nil {
		return domain.Membership{}, err
	}

	payload, err := json.Marshal(watchlistRequest{AuctionID: listingID})
	if err != nil {
		return domain.Membership{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return domain.Membership{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if err := c.tokens.Apply(req); err != nil {
		return domain.Membership{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Membership{}, fmt.Errorf("%s failed: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var out watchlistResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return domain.Membership{}, &domain.StatusError{Op: op, Status: resp.StatusCode}
		}
		return domain.Membership{}, fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, op, err)
	}
	if out.Status != "success" {
		return domain.Membership{}, &domain.AppError{Op: op, Message: out.Message}
	}

	// Presence of "added" means the listing is now watched, whatever its value.
	return domain.Membership{ListingID: listingID, InWatchlist: out.Added != nil}, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, &domain.StatusError{Op: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read body: %w", op, err)
	}
	return body, nil
}
