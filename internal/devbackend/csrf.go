package devbackend

import (
	"crypto/subtle"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/auctionsync/internal/csrf"
)

// formTokenField is the hidden form field carrying the token.
const formTokenField = "csrfmiddlewaretoken"

// ensureToken returns the request's CSRF token, issuing a cookie when the
// client has none.
func ensureToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrf.CookieName); err == nil && c.Value != "" {
		if v, err := url.PathUnescape(c.Value); err == nil {
			return v
		}
	}
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     csrf.CookieName,
		Value:    url.PathEscape(token),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// requireToken rejects unsafe requests whose header (or form field) does
// not match the csrftoken cookie.
func requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		c, err := r.Cookie(csrf.CookieName)
		if err != nil || c.Value == "" {
			writeJSON(w, http.StatusForbidden, errorBody("CSRF cookie not set."))
			return
		}
		want, err := url.PathUnescape(c.Value)
		if err != nil {
			writeJSON(w, http.StatusForbidden, errorBody("CSRF cookie malformed."))
			return
		}

		got := r.Header.Get(csrf.HeaderName)
		if got == "" {
			got = r.FormValue(formTokenField)
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			writeJSON(w, http.StatusForbidden, errorBody("CSRF token missing or incorrect."))
			return
		}
		next.ServeHTTP(w, r)
	})
}
