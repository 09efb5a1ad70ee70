// Package search wires the catalog search form to its results container.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/auctionsync/internal/dom"
	"github.com/MrSnakeDoc/auctionsync/internal/domain"
	"github.com/MrSnakeDoc/auctionsync/internal/eventloop"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
	"github.com/MrSnakeDoc/auctionsync/internal/metrics"
	"github.com/MrSnakeDoc/auctionsync/internal/notify"
	"github.com/MrSnakeDoc/auctionsync/internal/seq"
)

const (
	component = "search"
	target    = "search"
)

// Catalog is the remote title search.
type Catalog interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

type Options struct {
	Input   *dom.Element // text input holding the query
	Results *dom.Element // container replaced on every accepted response

	Catalog  Catalog
	Loop     *eventloop.Loop
	Guard    *seq.Guard
	Logger   logger.Logger
	Notifier notify.Notifier
}

type Component struct {
	input    *dom.Element
	results  *dom.Element
	catalog  Catalog
	loop     *eventloop.Loop
	guard    *seq.Guard
	logger   logger.Logger
	notifier notify.Notifier
}

func New(opts Options) (*Component, error) {
	if opts.Results == nil {
		return nil, errors.New("search: results container is required")
	}
	if opts.Catalog == nil || opts.Loop == nil {
		return nil, errors.New("search: catalog and event loop are required")
	}
	c := &Component{
		input:    opts.Input,
		results:  opts.Results,
		catalog:  opts.Catalog,
		loop:     opts.Loop,
		guard:    opts.Guard,
		logger:   opts.Logger,
		notifier: opts.Notifier,
	}
	if c.guard == nil {
		c.guard = seq.NewGuard()
	}
	if c.logger == nil {
		c.logger = logger.NewNop()
	}
	c.logger = c.logger.Named(component)
	if c.notifier == nil {
		c.notifier = notify.Log(c.logger)
	}
	return c, nil
}

// SubmitForm handles a submit of the search form: the query is read from
// the input in its current state.
func (c *Component) SubmitForm(ctx context.Context) error {
	if c.input == nil {
		return errors.New("search: no input element bound")
	}
	var query string
	if err := c.loop.Do(ctx, func() { query = c.input.Value() }); err != nil {
		return err
	}
	return c.Submit(ctx, query)
}

// Submit runs one search and, unless a newer search has already been
// applied, replaces the results container with one card per result.
// A blank query sends nothing and leaves the container as it is.
func (c *Component) Submit(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		c.logger.Debug("blank query ignored")
		return domain.ErrEmptyQuery
	}

	started := time.Now()
	tok := c.guard.Begin(target)

	results, err := c.catalog.Search(ctx, query)
	if err != nil {
		return c.fail(ctx, query, started, err)
	}

	applied := false
	err = c.loop.Do(ctx, func() {
		if !c.guard.Commit(tok) {
			return
		}
		applied = true
		c.render(results)
	})
	if err != nil {
		return c.fail(ctx, query, started, err)
	}
	if !applied {
		c.logger.Debug("stale search response dropped",
			logger.String("query", query),
			logger.Uint64("seq", tok.N))
		metrics.Observe(component, "submit", metrics.OutcomeStale, started)
		return domain.ErrStale
	}

	metrics.Observe(component, "submit", metrics.OutcomeSuccess, started)
	metrics.RenderedNodes.WithLabelValues("results").Set(float64(len(results)))
	c.logger.Debug("search rendered",
		logger.String("query", query),
		logger.Int("results", len(results)))
	return nil
}

func (c *Component) render(results []domain.SearchResult) {
	c.results.Clear()
	for _, r := range results {
		c.results.Append(Card(r))
	}
}

// Card builds the result card:
//
//	div.anime-card > a[href][target=_blank] > (img[src][alt], h3)
func Card(r domain.SearchResult) *dom.Element {
	link := dom.New("a").
		SetAttr("href", dom.SafeURL(r.DetailURL)).
		SetAttr("target", "_blank").
		SetAttr("rel", "noopener noreferrer")
	link.Append(
		dom.New("img").
			SetAttr("src", dom.SafeURL(r.ImageURL)).
			SetAttr("alt", r.Title+" Poster"),
		dom.NewText("h3", r.Title),
	)
	return dom.New("div", "anime-card").Append(link)
}

func (c *Component) fail(ctx context.Context, query string, started time.Time, err error) error {
	metrics.Observe(component, "submit", metrics.OutcomeFailure, started)
	c.notifier.Notify(ctx, notify.Event{
		Component: component,
		Op:        "submit",
		Target:    query,
		Err:       err,
	})
	return fmt.Errorf("search %q: %w", query, err)
}
