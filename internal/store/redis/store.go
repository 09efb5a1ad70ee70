package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/auctionsync/internal/domain"
)

// Store handles Redis operations for the development backend
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SaveListing stores a listing in Redis
func (s *Store) SaveListing(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, ListingKey(listing.ID), data, 0)
	pipe.SAdd(ctx, AllListingsKey(), listing.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}

	return nil
}

// GetListing retrieves a listing from Redis by ID
func (s *Store) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := s.client.Get(ctx, ListingKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing: %w", err)
	}

	return &listing, nil
}

// ListListings retrieves all listings sorted by ID, skipping entries whose
// data is gone
func (s *Store) ListListings(ctx context.Context) ([]*domain.Listing, error) {
	ids, err := s.client.SMembers(ctx, AllListingsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get listing IDs: %w", err)
	}

	listings := make([]*domain.Listing, 0, len(ids))
	for _, id := range ids {
		listing, err := s.GetListing(ctx, id)
		if err != nil {
			continue
		}
		listings = append(listings, listing)
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].ID < listings[j].ID })

	return listings, nil
}
