package redis

const (
	// KeyPrefixListing is the prefix for listing keys
	KeyPrefixListing = "auctionsync:listing:"
	// KeyPrefixComment is the prefix for comment keys
	KeyPrefixComment = "auctionsync:comment:"
	// KeyPrefixComments is the prefix for the per-listing comment index
	KeyPrefixComments = "auctionsync:comments:"
	// KeyPrefixWatchlist is the prefix for per-user watchlist sets
	KeyPrefixWatchlist = "auctionsync:watchlist:"
	// KeyAllListings is the key for the set of all listing IDs
	KeyAllListings = "auctionsync:listings:all"
)

// ListingKey returns the Redis key for a listing by ID
func ListingKey(id string) string {
	return KeyPrefixListing + id
}

// CommentKey returns the Redis key for a comment by ID
func CommentKey(id string) string {
	return KeyPrefixComment + id
}

// CommentsKey returns the sorted set of comment IDs of a listing, scored by
// posting time
func CommentsKey(listingID string) string {
	return KeyPrefixComments + listingID
}

// WatchlistKey returns the set of listing IDs watched by user
func WatchlistKey(user string) string {
	return KeyPrefixWatchlist + user
}

// AllListingsKey returns the key for the set of all listing IDs
func AllListingsKey() string {
	return KeyAllListings
}
