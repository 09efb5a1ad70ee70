package domain

// SearchResult is one catalog hit as rendered on a search card.
// It has no identity beyond display and is replaced on every search.
type SearchResult struct {
	Title     string
	DetailURL string
	ImageURL  string
}

// CommentEntry is the client's read-only copy of a server-owned comment.
type CommentEntry struct {
	Author   string
	PostedAt string
	Headline string
	Body     string
}

// Membership is the authoritative watchlist state of a listing,
// as reported by the backend after an add/remove request.
type Membership struct {
	ListingID   string
	InWatchlist bool
}

// Field is a single form field sent as part of a multipart payload.
type Field struct {
	Name  string
	Value string
}
