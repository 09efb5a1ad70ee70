// Package csrf reads the anti-forgery token that the site stores in a cookie.
package csrf

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const (
	// CookieName is the cookie the site issues the token in.
	CookieName = "csrftoken"
	// HeaderName carries the token on mutating requests.
	HeaderName = "X-CSRFToken"
)

var ErrNoToken = errors.New("csrf cookie not set")

// Source looks the token up in a cookie jar. It keeps no copy: the token
// may rotate between requests, so every call reads the jar again.
type Source struct {
	jar  http.CookieJar
	site *url.URL
	name string
}

func NewSource(jar http.CookieJar, site *url.URL) *Source {
	return &Source{jar: jar, site: site, name: CookieName}
}

// Token returns the URL-decoded cookie value.
func (s *Source) Token() (string, error) {
	for _, c := range s.jar.Cookies(s.site) {
		if c.Name != s.name {
			continue
		}
		v, err := url.PathUnescape(c.Value)
		if err != nil {
			return "", fmt.Errorf("failed to decode csrf cookie: %w", err)
		}
		return v, nil
	}
	return "", ErrNoToken
}

// Apply sets the token header on req. A missing cookie is not an error
// here: the request goes out without it and the server decides.
func (s *Source) Apply(req *http.Request) error {
	tok, err := s.Token()
	if errors.Is(err, ErrNoToken) {
		return nil
	}
	if err != nil {
		return err
	}
	req.Header.Set(HeaderName, tok)
	return nil
}
