package domain

import (
	"errors"
	"time"
)

// ErrListingNotFound is returned by stores for an unknown listing id.
var ErrListingNotFound = errors.New("listing not found")

// Listing is an auction as stored by the development backend.
type Listing struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	StartingBid string `json:"starting_bid"`
}

// Comment is a stored comment. Comments are listed newest first.
type Comment struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	Author    string    `json:"author"`
	Headline  string    `json:"headline"`
	Message   string    `json:"message"`
	PostedAt  time.Time `json:"posted_at"`
}
