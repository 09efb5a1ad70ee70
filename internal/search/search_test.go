package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/auctionsync/internal/dom"
	"github.com/MrSnakeDoc/auctionsync/internal/domain"
	"github.com/MrSnakeDoc/auctionsync/internal/eventloop"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
	"github.com/MrSnakeDoc/auctionsync/internal/notify"
)

const page = `<html><body>
<form id="search-form"><input id="search-input" name="q" value=" naruto "></form>
<div id="results-container"><p>old</p></div>
</body></html>`

// gatedCatalog answers each query once its gate is released.
type gatedCatalog struct {
	mu      sync.Mutex
	calls   []string
	started chan string
	gates   map[string]chan struct{}
	answers map[string][]domain.SearchResult
	errs    map[string]error
}

func newGatedCatalog() *gatedCatalog {
	return &gatedCatalog{
		started: make(chan string, 8),
		gates:   map[string]chan struct{}{},
		answers: map[string][]domain.SearchResult{},
		errs:    map[string]error{},
	}
}

func (g *gatedCatalog) Search(ctx context.Context, q string) ([]domain.SearchResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, q)
	gate := g.gates[q]
	res, err := g.answers[q], g.errs[q]
	g.mu.Unlock()

	g.started <- q
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return res, err
}

type fixture struct {
	doc     *dom.Document
	comp    *Component
	loop    *eventloop.Loop
	catalog *gatedCatalog
	events  chan notify.Event
}

func setup(t *testing.T) *fixture {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	loop := eventloop.New(8, logger.NewNop())
	go loop.Run(ctx)

	f := &fixture{
		doc:     doc,
		loop:    loop,
		catalog: newGatedCatalog(),
		events:  make(chan notify.Event, 8),
	}
	f.comp, err = New(Options{
		Input:   doc.ByID("search-input"),
		Results: doc.ByID("results-container"),
		Catalog: f.catalog,
		Loop:    loop,
		Logger:  logger.NewNop(),
		Notifier: notify.Func(func(_ context.Context, ev notify.Event) {
			f.events <- ev
		}),
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) cards(t *testing.T) []*dom.Element {
	t.Helper()
	var out []*dom.Element
	require.NoError(t, f.loop.Do(context.Background(), func() {
		out = f.doc.ByID("results-container").ByClass("anime-card")
	}))
	return out
}

func TestSubmitRendersCards(t *testing.T) {
	f := setup(t)
	f.catalog.answers["naruto"] = []domain.SearchResult{
		{Title: "Naruto", DetailURL: "https://myanimelist.net/anime/20", ImageURL: "https://cdn.example/20.jpg"},
		{Title: "Naruto: Shippuden", DetailURL: "https://myanimelist.net/anime/1735", ImageURL: "https://cdn.example/1735.jpg"},
	}

	require.NoError(t, f.comp.SubmitForm(context.Background()))
	assert.Equal(t, []string{"naruto"}, f.catalog.calls, "query is trimmed before dispatch")

	cards := f.cards(t)
	require.Len(t, cards, 2)

	links := cards[0].ByTag("a")
	require.Len(t, links, 1)
	href, _ := links[0].Attr("href")
	tgt, _ := links[0].Attr("target")
	assert.Equal(t, "https://myanimelist.net/anime/20", href)
	assert.Equal(t, "_blank", tgt)

	img := cards[0].ByTag("img")[0]
	alt, _ := img.Attr("alt")
	assert.Equal(t, "Naruto Poster", alt)
	assert.Equal(t, "Naruto: Shippuden", cards[1].ByTag("h3")[0].Text())

	var html string
	require.NoError(t, f.loop.Do(context.Background(), func() {
		html = f.doc.ByID("results-container").Render()
	}))
	assert.NotContains(t, html, "old", "previous content is replaced")
}

func TestSubmitEscapesTitles(t *testing.T) {
	f := setup(t)
	f.catalog.answers["x"] = []domain.SearchResult{
		{Title: `<img src=x onerror=alert(1)>`, DetailURL: "javascript:alert(1)"},
	}

	require.NoError(t, f.comp.Submit(context.Background(), "x"))

	cards := f.cards(t)
	require.Len(t, cards, 1)
	assert.Len(t, cards[0].ByTag("img"), 1, "title must not create elements")
	href, _ := cards[0].ByTag("a")[0].Attr("href")
	assert.Equal(t, "#", href)
	assert.Equal(t, `<img src=x onerror=alert(1)>`, cards[0].ByTag("h3")[0].Text())
}

func TestSubmitEmptyResultsClears(t *testing.T) {
	f := setup(t)
	f.catalog.answers["zzz"] = nil

	require.NoError(t, f.comp.Submit(context.Background(), "zzz"))

	var children int
	require.NoError(t, f.loop.Do(context.Background(), func() {
		children = len(f.doc.ByID("results-container").Children())
	}))
	assert.Zero(t, children)
}

func TestSubmitBlankQuerySendsNothing(t *testing.T) {
	f := setup(t)

	err := f.comp.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	assert.Empty(t, f.catalog.calls)
	assert.Len(t, f.cards(t), 0)
}

func TestSubmitFailureLeavesResults(t *testing.T) {
	f := setup(t)
	f.catalog.answers["naruto"] = []domain.SearchResult{{Title: "Naruto"}}
	require.NoError(t, f.comp.Submit(context.Background(), "naruto"))

	f.catalog.errs["broken"] = &domain.StatusError{Op: "catalog search", Status: 503}
	err := f.comp.Submit(context.Background(), "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrHTTPStatus)

	ev := <-f.events
	assert.Equal(t, "search", ev.Component)
	assert.Equal(t, "broken", ev.Target)
	assert.Len(t, f.cards(t), 1, "failed search keeps the previous results")
}

func TestLatestSearchWins(t *testing.T) {
	f := setup(t)
	slow := make(chan struct{})
	f.catalog.gates["first"] = slow
	f.catalog.answers["first"] = []domain.SearchResult{{Title: "First"}}
	f.catalog.answers["second"] = []domain.SearchResult{{Title: "Second A"}, {Title: "Second B"}}

	firstErr := make(chan error, 1)
	go func() { firstErr <- f.comp.Submit(context.Background(), "first") }()
	require.Equal(t, "first", <-f.catalog.started)

	// The later search answers first and is applied.
	require.NoError(t, f.comp.Submit(context.Background(), "second"))
	<-f.catalog.started

	// The earlier one arrives late and must be dropped.
	close(slow)
	assert.ErrorIs(t, <-firstErr, domain.ErrStale)

	cards := f.cards(t)
	require.Len(t, cards, 2)
	assert.Equal(t, "Second A", cards[0].ByTag("h3")[0].Text())
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	doc, _ := dom.ParseString(page)
	_, err = New(Options{Results: doc.ByID("results-container")})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrEmptyQuery))
}
