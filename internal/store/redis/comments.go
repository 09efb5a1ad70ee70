package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/auctionsync/internal/domain"
)

// AddComment stores a comment and indexes it under its listing
func (s *Store) AddComment(ctx context.Context, comment *domain.Comment) error {
	exists, err := s.client.SIsMember(ctx, AllListingsKey(), comment.ListingID).Result()
	if err != nil {
		return fmt.Errorf("failed to check listing: %w", err)
	}
	if !exists {
		return domain.ErrListingNotFound
	}

	data, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("failed to marshal comment: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, CommentKey(comment.ID), data, 0)
	pipe.ZAdd(ctx, CommentsKey(comment.ListingID), redis.Z{
		Score:  float64(comment.PostedAt.UnixMilli()),
		Member: comment.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}

	return nil
}

// ListComments retrieves the comments of a listing, newest first
func (s *Store) ListComments(ctx context.Context, listingID string) ([]*domain.Comment, error) {
	ids, err := s.client.ZRevRange(ctx, CommentsKey(listingID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get comment IDs: %w", err)
	}

	if len(ids) == 0 {
		return []*domain.Comment{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = CommentKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	comments := make([]*domain.Comment, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Skip comments whose data has gone missing
			continue
		}
		var comment domain.Comment
		if err := json.Unmarshal([]byte(raw), &comment); err != nil {
			continue
		}
		comments = append(comments, &comment)
	}

	return comments, nil
}
