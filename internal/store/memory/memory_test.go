package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/auctionsync/internal/domain"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	if err := s.SaveListing(context.Background(), &domain.Listing{ID: "7", Title: "Naruto box set"}); err != nil {
		t.Fatalf("SaveListing() error = %v", err)
	}
	return s
}

func TestGetListing(t *testing.T) {
	s := seeded(t)

	l, err := s.GetListing(context.Background(), "7")
	if err != nil {
		t.Fatalf("GetListing() error = %v", err)
	}
	if l.Title != "Naruto box set" {
		t.Errorf("Title = %q", l.Title)
	}

	l.Title = "mutated"
	again, _ := s.GetListing(context.Background(), "7")
	if again.Title != "Naruto box set" {
		t.Error("GetListing() must return a copy")
	}

	if _, err := s.GetListing(context.Background(), "404"); !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("GetListing(404) error = %v, want ErrListingNotFound", err)
	}
}

func TestCommentsNewestFirst(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, h := range []string{"first", "second", "third"} {
		c := &domain.Comment{ID: h, ListingID: "7", Headline: h, PostedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.AddComment(ctx, c); err != nil {
			t.Fatalf("AddComment() error = %v", err)
		}
	}

	got, err := s.ListComments(ctx, "7")
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(got) != len(want) {
		t.Fatalf("ListComments() returned %d comments, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Headline != want[i] {
			t.Errorf("comment %d = %q, want %q", i, got[i].Headline, want[i])
		}
	}
}

func TestAddCommentUnknownListing(t *testing.T) {
	s := NewStore()
	err := s.AddComment(context.Background(), &domain.Comment{ListingID: "nope"})
	if !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("AddComment() error = %v, want ErrListingNotFound", err)
	}
}

func TestListCommentsEmpty(t *testing.T) {
	s := seeded(t)
	got, err := s.ListComments(context.Background(), "7")
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListComments() = %v, want empty non-nil slice", got)
	}
}

func TestWatchlist(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	tests := []struct {
		name string
		op   func() (bool, error)
		want bool
	}{
		{name: "add", op: func() (bool, error) { return s.AddToWatchlist(ctx, "demo", "7") }, want: true},
		{name: "add again", op: func() (bool, error) { return s.AddToWatchlist(ctx, "demo", "7") }, want: false},
		{name: "remove", op: func() (bool, error) { return s.RemoveFromWatchlist(ctx, "demo", "7") }, want: true},
		{name: "remove again", op: func() (bool, error) { return s.RemoveFromWatchlist(ctx, "demo", "7") }, want: false},
		{name: "remove unknown user", op: func() (bool, error) { return s.RemoveFromWatchlist(ctx, "ghost", "7") }, want: false},
	}
	for _, tt := range tests {
		got, err := tt.op()
		if err != nil {
			t.Fatalf("%s: error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	watching, _ := s.IsWatching(ctx, "demo", "7")
	if watching {
		t.Error("IsWatching() = true after remove")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.AddComment(ctx, &domain.Comment{ListingID: "7", PostedAt: time.Now()})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.ListComments(ctx, "7")
			_, _ = s.AddToWatchlist(ctx, "demo", "7")
		}()
	}
	wg.Wait()

	got, _ := s.ListComments(ctx, "7")
	if len(got) != 20 {
		t.Errorf("ListComments() returned %d comments, want 20", len(got))
	}
}
