package dom

import (
	"net/url"
	"strings"
)

// SafeURL returns raw if it is a relative reference or an http(s) URL,
// and "#" otherwise, so server data cannot smuggle javascript: links.
func SafeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return raw
	default:
		return "#"
	}
}
