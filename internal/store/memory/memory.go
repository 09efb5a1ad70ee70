// Package memory is the in-process store of the development backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/MrSnakeDoc/auctionsync/internal/domain"
)

// Store keeps listings, comments and watchlists in maps. It is used when
// no Redis is configured, and by tests.
type Store struct {
	mu        sync.RWMutex
	listings  map[string]*domain.Listing   // ID -> Listing
	comments  map[string][]*domain.Comment // listing ID -> comments, insertion order
	watchlist map[string]map[string]bool   // user -> listing IDs
}

func NewStore() *Store {
	return &Store{
		listings:  make(map[string]*domain.Listing),
		comments:  make(map[string][]*domain.Comment),
		watchlist: make(map[string]map[string]bool),
	}
}

// SaveListing adds or replaces a listing.
func (s *Store) SaveListing(_ context.Context, l *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *l
	s.listings[l.ID] = &cp
	return nil
}

func (s *Store) GetListing(_ context.Context, id string) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

// AddComment appends a comment to its listing.
func (s *Store) AddComment(_ context.Context, c *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[c.ListingID]; !ok {
		return domain.ErrListingNotFound
	}
	cp := *c
	s.comments[c.ListingID] = append(s.comments[c.ListingID], &cp)
	return nil
}

// ListComments returns the listing's comments, newest first. Comments
// posted at the same instant keep reverse insertion order.
func (s *Store) ListComments(_ context.Context, listingID string) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.comments[listingID]
	out := make([]*domain.Comment, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		cp := *stored[i]
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PostedAt.After(out[j].PostedAt)
	})
	return out, nil
}

// AddToWatchlist reports false if the listing was already watched.
func (s *Store) AddToWatchlist(_ context.Context, user, listingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.watchlist[user]
	if !ok {
		set = make(map[string]bool)
		s.watchlist[user] = set
	}
	if set[listingID] {
		return false, nil
	}
	set[listingID] = true
	return true, nil
}

// RemoveFromWatchlist reports false if the listing was not watched.
func (s *Store) RemoveFromWatchlist(_ context.Context, user, listingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.watchlist[user][listingID] {
		return false, nil
	}
	delete(s.watchlist[user], listingID)
	return true, nil
}

func (s *Store) IsWatching(_ context.Context, user, listingID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.watchlist[user][listingID], nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// ListListings returns all listings ordered by ID.
func (s *Store) ListListings(_ context.Context) ([]*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
