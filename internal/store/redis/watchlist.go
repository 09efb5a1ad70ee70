package redis

import (
	"context"
	"fmt"
)

// AddToWatchlist adds a listing to the user's watchlist. It reports false
// if the listing was already there.
func (s *Store) AddToWatchlist(ctx context.Context, user, listingID string) (bool, error) {
	n, err := s.client.SAdd(ctx, WatchlistKey(user), listingID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return n == 1, nil
}

// RemoveFromWatchlist removes a listing from the user's watchlist. It
// reports false if the listing was not there.
func (s *Store) RemoveFromWatchlist(ctx context.Context, user, listingID string) (bool, error) {
	n, err := s.client.SRem(ctx, WatchlistKey(user), listingID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return n == 1, nil
}

// IsWatching reports whether the listing is on the user's watchlist
func (s *Store) IsWatching(ctx context.Context, user, listingID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, WatchlistKey(user), listingID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read watchlist: %w", err)
	}
	return ok, nil
}
