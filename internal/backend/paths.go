package backend

import "net/url"

// Listing endpoint paths, as mounted by the site and the dev backend.
func ListingPath(id string) string         { return "/listing/" + url.PathEscape(id) + "/" }
func CommentPath(id string) string         { return ListingPath(id) + "comment/" }
func CommentsPath(id string) string        { return ListingPath(id) + "get_comments/" }
func AddWatchlistPath(id string) string    { return ListingPath(id) + "addWatchlist/" }
func RemoveWatchlistPath(id string) string { return ListingPath(id) + "removeWatchlist/" }
