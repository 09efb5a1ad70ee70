package devbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/auctionsync/internal/csrf"
	"github.com/MrSnakeDoc/auctionsync/internal/store/memory"
)

const token = "tok-123"

func newServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, Seed(context.Background(), store))

	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	h := New(Options{
		Store: store,
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
	})
	r := chi.NewRouter()
	h.Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func post(t *testing.T, url, contentType string, body []byte, withToken bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token})
	if withToken {
		req.Header.Set(csrf.HeaderName, token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func commentForm(t *testing.T, fields map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestListingPageIssuesToken(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/listing/1/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var issued *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == csrf.CookieName {
			issued = c
		}
	}
	require.NotNil(t, issued, "csrftoken cookie should be set")

	body := readAll(t, resp)
	for _, hook := range []string{`id="search-form"`, `id="results-container"`, `id="comment-section"`,
		`data-auction-id="1"`, `id="comment_display"`, `class="watchlist-icon fas fa-heart-broken"`,
		`action="/listing/1/comment/"`, "No comments so far."} {
		assert.Contains(t, body, hook)
	}
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return buf.String()
}

func TestListingNotFound(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/listing/404/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommentLifecycle(t *testing.T) {
	srv, _ := newServer(t)

	for _, h := range []string{"first", "second"} {
		body, ct := commentForm(t, map[string]string{"headline": h, "message": "msg " + h})
		resp := post(t, srv.URL+"/listing/1/comment/", ct, body, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "success", decode(t, resp)["status"])
	}

	resp, err := http.Get(srv.URL + "/listing/1/get_comments/")
	require.NoError(t, err)
	defer resp.Body.Close()

	var list []commentJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Headline, "newest first")
	assert.Equal(t, "demo", list[0].Username)
	assert.Equal(t, "2024-05-01 10:02:00", list[0].CmDate)
}

func TestCommentsOfUnknownListingIsEmpty(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/listing/404/get_comments/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "[]\n", readAll(t, resp))
}

func TestCommentValidation(t *testing.T) {
	srv, _ := newServer(t)

	body, ct := commentForm(t, map[string]string{"headline": "only headline"})
	resp := post(t, srv.URL+"/listing/1/comment/", ct, body, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode(t, resp), "error")
}

func TestCommentAcceptsFormToken(t *testing.T) {
	srv, _ := newServer(t)

	body, ct := commentForm(t, map[string]string{
		"csrfmiddlewaretoken": token, "headline": "h", "message": "m",
	})
	resp := post(t, srv.URL+"/listing/1/comment/", ct, body, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMutationsRequireToken(t *testing.T) {
	srv, _ := newServer(t)

	resp := post(t, srv.URL+"/listing/1/addWatchlist/", "application/json", []byte(`{"auction_id":"1"}`), false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWatchlistTransitions(t *testing.T) {
	srv, store := newServer(t)
	add := srv.URL + "/listing/2/addWatchlist/"
	remove := srv.URL + "/listing/2/removeWatchlist/"
	body := []byte(`{"auction_id":"2"}`)

	out := decode(t, post(t, add, "application/json", body, true))
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, true, out["added"])

	watching, _ := store.IsWatching(context.Background(), "demo", "2")
	assert.True(t, watching)

	out = decode(t, post(t, add, "application/json", body, true))
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "Already in watchlist", out["message"])

	out = decode(t, post(t, remove, "application/json", body, true))
	assert.Equal(t, "success", out["status"])
	assert.NotContains(t, out, "added")

	out = decode(t, post(t, remove, "application/json", body, true))
	assert.Equal(t, "Not in watchlist", out["message"])

	resp := post(t, srv.URL+"/listing/404/addWatchlist/", "application/json", body, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWatchStateRenderedIntoPage(t *testing.T) {
	srv, store := newServer(t)
	_, err := store.AddToWatchlist(context.Background(), "demo", "3")
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/listing/3/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, readAll(t, resp), `class="watchlist-icon fas fa-heart in-watchlist"`)
}

func TestGetOnMutationIsNotAllowed(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/listing/1/addWatchlist/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "error", decode(t, resp)["status"])
}

func TestGetOnRemovalAnswersErrorBody(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/listing/1/removeWatchlist/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "GET method not allowed", body["message"])
}

func TestIndexListsSeeds(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body := readAll(t, resp)
	for _, l := range SeedListings {
		assert.Contains(t, body, `href="/listing/`+l.ID+`/"`)
	}
}
