package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/auctionsync/internal/csrf"
	"github.com/MrSnakeDoc/auctionsync/internal/domain"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *url.URL, http.CookieJar) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	site, err := url.Parse(srv.URL)
	require.NoError(t, err)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	jar.SetCookies(site, []*http.Cookie{{Name: csrf.CookieName, Value: "tok%21", Path: "/"}})

	hc := srv.Client()
	hc.Jar = jar
	c, err := NewClient(site, hc)
	require.NoError(t, err)
	return c, site, jar
}

func TestNewClientRequiresJar(t *testing.T) {
	site, _ := url.Parse("http://localhost")
	_, err := NewClient(site, &http.Client{})
	assert.Error(t, err)
}

func TestCreateComment(t *testing.T) {
	var gotToken string
	var gotFields map[string]string
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/listing/7/comment/", r.URL.Path)
		gotToken = r.Header.Get(csrf.HeaderName)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		gotFields = map[string]string{
			"headline": r.FormValue("headline"),
			"message":  r.FormValue("message"),
		}
		_, _ = w.Write([]byte(`{"message":"Comment added successfully","status":"success"}`))
	}))

	err := c.CreateComment(context.Background(), "/listing/7/comment/", []domain.Field{
		{Name: "headline", Value: "Hi"},
		{Name: "message", Value: "<b>bold</b>"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tok!", gotToken)
	assert.Equal(t, map[string]string{"headline": "Hi", "message": "<b>bold</b>"}, gotFields)
}

func TestCreateCommentFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "non-2xx", status: http.StatusInternalServerError, body: `{}`, wantErr: domain.ErrHTTPStatus},
		{name: "error field", status: http.StatusOK, body: `{"error":"invalid form"}`, wantErr: domain.ErrApplication},
		{name: "null body", status: http.StatusOK, body: `null`, wantErr: domain.ErrApplication},
		{name: "empty object", status: http.StatusOK, body: `{}`, wantErr: domain.ErrApplication},
		{name: "not json", status: http.StatusOK, body: `<html>login</html>`, wantErr: domain.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			err := c.CreateComment(context.Background(), "/listing/7/comment/", nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateCommentNeedsEndpoint(t *testing.T) {
	c, _, _ := newTestClient(t, http.NotFoundHandler())
	assert.ErrorIs(t, c.CreateComment(context.Background(), "", nil), domain.ErrMissingEndpoint)
}

func TestListCommentsKeepsServerOrder(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/listing/7/get_comments/", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"username":"zoe","cm_date":"2024-05-02","headline":"B","message":"second"},
			{"username":"adam","cm_date":"2024-05-01","headline":"A","message":"first"}
		]`))
	}))

	entries, err := c.ListComments(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.CommentEntry{Author: "zoe", PostedAt: "2024-05-02", Headline: "B", Body: "second"}, entries[0])
	assert.Equal(t, "adam", entries[1].Author)
}

func TestListCommentsFailure(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"db down"}`))
	}))

	_, err := c.ListComments(context.Background(), "7")
	var se *domain.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
}

func TestWatchlist(t *testing.T) {
	var bodies []watchlistRequest
	var tokens []string
	c, site, jar := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req watchlistRequest
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &req))
		bodies = append(bodies, req)
		tokens = append(tokens, r.Header.Get(csrf.HeaderName))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		switch r.URL.Path {
		case "/listing/7/addWatchlist/":
			_, _ = w.Write([]byte(`{"status":"success","added":true}`))
		case "/listing/7/removeWatchlist/":
			_, _ = w.Write([]byte(`{"status":"success","removed":true}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	m, err := c.AddWatchlist(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, domain.Membership{ListingID: "7", InWatchlist: true}, m)

	// Token rotates between requests; the second one must carry the new value.
	jar.SetCookies(site, []*http.Cookie{{Name: csrf.CookieName, Value: "rotated", Path: "/"}})

	m, err = c.RemoveWatchlist(context.Background(), "7")
	require.NoError(t, err)
	assert.False(t, m.InWatchlist)

	assert.Equal(t, []watchlistRequest{{AuctionID: "7"}, {AuctionID: "7"}}, bodies)
	assert.Equal(t, []string{"tok!", "rotated"}, tokens)
}

func TestWatchlistFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "error status field", status: http.StatusOK, body: `{"status":"error","message":"Already in watchlist"}`, wantErr: domain.ErrApplication},
		{name: "error with 405", status: http.StatusMethodNotAllowed, body: `{"status":"error","message":"GET method not allowed"}`, wantErr: domain.ErrApplication},
		{name: "forbidden html", status: http.StatusForbidden, body: `<h1>CSRF verification failed</h1>`, wantErr: domain.ErrHTTPStatus},
		{name: "malformed", status: http.StatusOK, body: `{"status":`, wantErr: domain.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			_, err := c.AddWatchlist(context.Background(), "7")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolve(t *testing.T) {
	c, site, _ := newTestClient(t, http.NotFoundHandler())

	got, err := c.Resolve("comment/")
	require.NoError(t, err)
	assert.Equal(t, site.String()+"/comment/", got)

	got, err = c.Resolve("https://other.example/x")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example/x", got)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/listing/a%2Fb/", ListingPath("a/b"))
	assert.Equal(t, "/listing/9/get_comments/", CommentsPath("9"))
	assert.Equal(t, "/listing/9/addWatchlist/", AddWatchlistPath("9"))
	assert.Equal(t, "/listing/9/removeWatchlist/", RemoveWatchlistPath("9"))
	assert.Equal(t, "/listing/9/comment/", CommentPath("9"))
}
