package devbackend

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/auctionsync/internal/domain"
)

// SeedListings are written on startup so a fresh store has pages to serve.
var SeedListings = []domain.Listing{
	{ID: "1", Title: "Naruto complete box set", Description: "All 220 episodes on DVD.", StartingBid: "40.00",
		ImageURL: "https://cdn.myanimelist.net/images/anime/13/17405.jpg"},
	{ID: "2", Title: "Cowboy Bebop art book", Description: "Hardcover, first edition.", StartingBid: "25.00",
		ImageURL: "https://cdn.myanimelist.net/images/anime/4/19644.jpg"},
	{ID: "3", Title: "Totoro plush", Description: "30cm, tags attached.", StartingBid: "15.00",
		ImageURL: "https://cdn.myanimelist.net/images/anime/4/75923.jpg"},
}

// Seed writes SeedListings. Existing listings with the same ids are
// overwritten, comments and watchlists are left alone.
func Seed(ctx context.Context, store Store) error {
	for i := range SeedListings {
		l := SeedListings[i]
		if err := store.SaveListing(ctx, &l); err != nil {
			return fmt.Errorf("failed to seed listing %s: %w", l.ID, err)
		}
	}
	return nil
}
