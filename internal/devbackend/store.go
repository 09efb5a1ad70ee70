package devbackend

import (
	"context"

	"github.com/MrSnakeDoc/auctionsync/internal/domain"
)

// Store persists listings, comments and watchlists. Implemented by
// store/memory and store/redis.
type Store interface {
	SaveListing(ctx context.Context, listing *domain.Listing) error
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	ListListings(ctx context.Context) ([]*domain.Listing, error)

	AddComment(ctx context.Context, comment *domain.Comment) error
	ListComments(ctx context.Context, listingID string) ([]*domain.Comment, error)

	AddToWatchlist(ctx context.Context, user, listingID string) (bool, error)
	RemoveFromWatchlist(ctx context.Context, user, listingID string) (bool, error)
	IsWatching(ctx context.Context, user, listingID string) (bool, error)

	Ping(ctx context.Context) error
}
