// Package comments keeps a listing's comment list in sync with the server:
// it posts the comment form and re-renders the full list after every
// successful post, and once when the page loads.
package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
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
	component = "comments"

	// DefaultListingAttr carries the listing id on the comment section.
	DefaultListingAttr = "data-auction-id"

	// EmptyText is shown when a listing has no comments.
	EmptyText = "No comments so far."
)

type Backend interface {
	CreateComment(ctx context.Context, endpoint string, fields []domain.Field) error
	ListComments(ctx context.Context, listingID string) ([]domain.CommentEntry, error)
}

type Options struct {
	Section *dom.Element // element carrying the listing id
	Form    *dom.Element // comment form; its action is the POST endpoint
	Display *dom.Element // container replaced on every refresh

	ListingAttr string

	Backend  Backend
	Loop     *eventloop.Loop
	Guard    *seq.Guard
	Logger   logger.Logger
	Notifier notify.Notifier
}

// State is the component's in-flight status.
type State struct {
	Submitting bool
	Refreshing bool
}

func (s State) String() string {
	switch {
	case s.Submitting && s.Refreshing:
		return "SUBMITTING+REFRESHING"
	case s.Submitting:
		return "SUBMITTING"
	case s.Refreshing:
		return "REFRESHING"
	default:
		return "IDLE"
	}
}

type Component struct {
	listingID string
	form      *dom.Element
	display   *dom.Element

	backend  Backend
	loop     *eventloop.Loop
	guard    *seq.Guard
	logger   logger.Logger
	notifier notify.Notifier

	submitting atomic.Int32
	refreshing atomic.Int32
}

// New reads the listing id from the section once. It must run before the
// loop starts, or from inside a loop task.
func New(opts Options) (*Component, error) {
	if opts.Section == nil || opts.Display == nil {
		return nil, errors.New("comments: section and display elements are required")
	}
	if opts.Backend == nil || opts.Loop == nil {
		return nil, errors.New("comments: backend and event loop are required")
	}
	attr := opts.ListingAttr
	if attr == "" {
		attr = DefaultListingAttr
	}
	id, _ := opts.Section.Attr(attr)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("comments: section has no %s: %w", attr, domain.ErrMissingListingID)
	}

	c := &Component{
		listingID: id,
		form:      opts.Form,
		display:   opts.Display,
		backend:   opts.Backend,
		loop:      opts.Loop,
		guard:     opts.Guard,
		logger:    opts.Logger,
		notifier:  opts.Notifier,
	}
	if c.guard == nil {
		c.guard = seq.NewGuard()
	}
	if c.logger == nil {
		c.logger = logger.NewNop()
	}
	c.logger = c.logger.Named(component).With(logger.String("listing_id", id))
	if c.notifier == nil {
		c.notifier = notify.Log(c.logger)
	}
	return c, nil
}

func (c *Component) ListingID() string { return c.listingID }

func (c *Component) State() State {
	return State{
		Submitting: c.submitting.Load() > 0,
		Refreshing: c.refreshing.Load() > 0,
	}
}

// Start performs the initial load.
func (c *Component) Start(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Submit posts the comment form. edits are written into the form first, as
// if typed by the user. On success the text fields are cleared and the
// list is refreshed; on failure the form and list stay as they are.
func (c *Component) Submit(ctx context.Context, edits ...domain.Field) error {
	if c.form == nil {
		return errors.New("comments: no form bound")
	}
	c.submitting.Add(1)
	defer c.submitting.Add(-1)
	started := time.Now()

	var (
		endpoint string
		fields   []domain.Field
	)
	err := c.loop.Do(ctx, func() {
		for _, e := range edits {
			if !dom.SetField(c.form, e.Name, e.Value) {
				c.logger.Debug("unknown form field", logger.String("field", e.Name))
			}
		}
		endpoint, _ = c.form.Attr("action")
		fields = dom.FormFields(c.form)
	})
	if err != nil {
		return c.fail(ctx, "submit", started, err)
	}
	if strings.TrimSpace(endpoint) == "" {
		return c.fail(ctx, "submit", started, domain.ErrMissingEndpoint)
	}

	if err := c.backend.CreateComment(ctx, endpoint, fields); err != nil {
		return c.fail(ctx, "submit", started, err)
	}
	if err := c.loop.Do(ctx, func() { dom.ResetText(c.form) }); err != nil {
		return c.fail(ctx, "submit", started, err)
	}
	metrics.Observe(component, "submit", metrics.OutcomeSuccess, started)
	c.logger.Info("comment posted")

	return c.Refresh(ctx)
}

// Refresh fetches the full list and replaces the display with it, unless
// a refresh dispatched later has already been applied.
func (c *Component) Refresh(ctx context.Context) error {
	c.refreshing.Add(1)
	defer c.refreshing.Add(-1)
	started := time.Now()

	tok := c.guard.Begin("comments:" + c.listingID)
	entries, err := c.backend.ListComments(ctx, c.listingID)
	if err != nil {
		return c.fail(ctx, "refresh", started, err)
	}

	applied := false
	err = c.loop.Do(ctx, func() {
		if !c.guard.Commit(tok) {
			return
		}
		applied = true
		c.render(entries)
	})
	if err != nil {
		return c.fail(ctx, "refresh", started, err)
	}
	if !applied {
		c.logger.Debug("stale comment list dropped", logger.Uint64("seq", tok.N))
		metrics.Observe(component, "refresh", metrics.OutcomeStale, started)
		return domain.ErrStale
	}

	metrics.Observe(component, "refresh", metrics.OutcomeSuccess, started)
	metrics.RenderedNodes.WithLabelValues("comments").Set(float64(len(entries)))
	return nil
}

func (c *Component) render(entries []domain.CommentEntry) {
	c.display.Clear()
	if len(entries) == 0 {
		c.display.Append(dom.NewText("p", EmptyText))
		return
	}
	for _, e := range entries {
		c.display.Append(Card(e))
	}
}

// Card builds one comment card:
//
//	div.card.bg-dark.mb-3
//	  div.card-header > strong(author), div.text-muted.small("commented on <date>")
//	  div.card-body   > h5.card-title(headline), p.card-text(body)
func Card(e domain.CommentEntry) *dom.Element {
	header := dom.New("div", "card-header").Append(
		dom.NewText("strong", e.Author),
		dom.NewText("div", "commented on "+e.PostedAt, "text-muted", "small"),
	)
	body := dom.New("div", "card-body").Append(
		dom.NewText("h5", e.Headline, "card-title"),
		dom.NewText("p", e.Body, "card-text"),
	)
	return dom.New("div", "card", "bg-dark", "mb-3").Append(header, body)
}

func (c *Component) fail(ctx context.Context, op string, started time.Time, err error) error {
	metrics.Observe(component, op, metrics.OutcomeFailure, started)
	c.notifier.Notify(ctx, notify.Event{
		Component: component,
		Op:        op,
		Target:    c.listingID,
		Err:       err,
	})
	return fmt.Errorf("comments %s: %w", op, err)
}
