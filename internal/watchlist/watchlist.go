// Package watchlist drives the heart icons that add a listing to, or
// remove it from, the user's watchlist.
//
// The icon's marker class is the only client-side record of membership.
// It changes only after the server confirms, together with the heart
// classes and the color, in one event-loop turn.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/auctionsync/internal/dom"
	"github.com/MrSnakeDoc/auctionsync/internal/domain"
	"github.com/MrSnakeDoc/auctionsync/internal/eventloop"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
	"github.com/MrSnakeDoc/auctionsync/internal/metrics"
	"github.com/MrSnakeDoc/auctionsync/internal/notify"
	"github.com/MrSnakeDoc/auctionsync/internal/seq"
)

const component = "watchlist"

// Defaults for the icon contract.
const (
	DefaultMarker        = "in-watchlist"
	DefaultActiveClass   = "fa-heart"
	DefaultInactiveClass = "fa-heart-broken"
	DefaultListingAttr   = "data-auction-id"
	IconColor            = "red"
)

type Backend interface {
	AddWatchlist(ctx context.Context, listingID string) (domain.Membership, error)
	RemoveWatchlist(ctx context.Context, listingID string) (domain.Membership, error)
}

type Options struct {
	Icons []*dom.Element

	Marker        string
	ActiveClass   string
	InactiveClass string
	ListingAttr   string

	Backend  Backend
	Loop     *eventloop.Loop
	Guard    *seq.Guard
	Logger   logger.Logger
	Notifier notify.Notifier
}

type Component struct {
	mu    sync.RWMutex // guards icons and byID, not the elements
	icons []*dom.Element
	byID  map[string]*dom.Element

	marker   string
	active   string
	inactive string
	attr     string

	backend  Backend
	loop     *eventloop.Loop
	guard    *seq.Guard
	logger   logger.Logger
	notifier notify.Notifier
}

// New binds the icons. Like the other components it reads the DOM, so it
// must run before the loop starts or inside a loop task.
func New(opts Options) (*Component, error) {
	if opts.Backend == nil || opts.Loop == nil {
		return nil, errors.New("watchlist: backend and event loop are required")
	}
	c := &Component{
		byID:     make(map[string]*dom.Element, len(opts.Icons)),
		marker:   orDefault(opts.Marker, DefaultMarker),
		active:   orDefault(opts.ActiveClass, DefaultActiveClass),
		inactive: orDefault(opts.InactiveClass, DefaultInactiveClass),
		attr:     orDefault(opts.ListingAttr, DefaultListingAttr),
		backend:  opts.Backend,
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

	c.Bind(opts.Icons...)
	return c, nil
}

// Bind registers icons, including ones added to the page after
// construction. The first icon seen for a listing id is the one Icon
// returns. Once the loop runs, call it from a loop task.
func (c *Component) Bind(icons ...*dom.Element) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, icon := range icons {
		c.icons = append(c.icons, icon)
		id, _ := icon.Attr(c.attr)
		id = strings.TrimSpace(id)
		if id == "" {
			c.logger.Warn("watchlist icon without listing id")
			continue
		}
		if _, dup := c.byID[id]; !dup {
			c.byID[id] = icon
		}
	}
}

// Icon returns the first bound icon for listingID, or nil.
func (c *Component) Icon(listingID string) *dom.Element {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[listingID]
}

// Icons returns every bound icon in document order.
func (c *Component) Icons() []*dom.Element {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*dom.Element(nil), c.icons...)
}

// InWatchlist reports the icon's current membership as the page shows it.
func (c *Component) InWatchlist(ctx context.Context, icon *dom.Element) (bool, error) {
	var in bool
	err := c.loop.Do(ctx, func() { in = icon.HasClass(c.marker) })
	return in, err
}

// Toggle handles a click on icon. The icon's id and marker are read at
// click time; the request goes to remove when the marker is present and to
// add otherwise. The icon is updated only on a confirmed success.
func (c *Component) Toggle(ctx context.Context, icon *dom.Element) error {
	return c.change(ctx, "toggle", icon, nil)
}

// Add requests membership regardless of what the icon currently shows.
func (c *Component) Add(ctx context.Context, icon *dom.Element) error {
	want := true
	return c.change(ctx, "add", icon, &want)
}

// Remove requests removal regardless of what the icon currently shows.
func (c *Component) Remove(ctx context.Context, icon *dom.Element) error {
	want := false
	return c.change(ctx, "remove", icon, &want)
}

// change sends one add or remove request for icon. With want nil the
// direction is derived from the marker.
func (c *Component) change(ctx context.Context, op string, icon *dom.Element, want *bool) error {
	if icon == nil {
		return errors.New("watchlist: no icon")
	}
	started := time.Now()

	var (
		id  string
		add bool
	)
	if err := c.loop.Do(ctx, func() {
		id, _ = icon.Attr(c.attr)
		id = strings.TrimSpace(id)
		if want != nil {
			add = *want
		} else {
			add = !icon.HasClass(c.marker)
		}
	}); err != nil {
		return c.fail(ctx, op, id, started, err)
	}
	if id == "" {
		return c.fail(ctx, op, id, started, domain.ErrMissingListingID)
	}

	tok := c.guard.Begin(component + ":" + id)
	var (
		m   domain.Membership
		err error
	)
	if add {
		m, err = c.backend.AddWatchlist(ctx, id)
	} else {
		m, err = c.backend.RemoveWatchlist(ctx, id)
	}
	if err != nil {
		return c.fail(ctx, op, id, started, err)
	}

	applied := false
	if err := c.loop.Do(ctx, func() {
		if !c.guard.Commit(tok) {
			return
		}
		applied = true
		c.apply(icon, m.InWatchlist)
	}); err != nil {
		return c.fail(ctx, op, id, started, err)
	}
	if !applied {
		c.logger.Debug("stale watchlist response dropped",
			logger.String("listing_id", id),
			logger.Uint64("seq", tok.N))
		metrics.Observe(component, op, metrics.OutcomeStale, started)
		return domain.ErrStale
	}

	metrics.Observe(component, op, metrics.OutcomeSuccess, started)
	c.logger.Info("watchlist updated",
		logger.String("listing_id", id),
		logger.Bool("in_watchlist", m.InWatchlist))
	return nil
}

// apply moves the icon to the confirmed state in a single turn.
func (c *Component) apply(icon *dom.Element, in bool) {
	if in {
		icon.RemoveClass(c.inactive).AddClass(c.active)
	} else {
		icon.RemoveClass(c.active).AddClass(c.inactive)
	}
	icon.ToggleClass(c.marker, in)
	icon.SetStyle("color", IconColor)
}

func (c *Component) fail(ctx context.Context, op, id string, started time.Time, err error) error {
	metrics.Observe(component, op, metrics.OutcomeFailure, started)
	c.notifier.Notify(ctx, notify.Event{
		Component: component,
		Op:        op,
		Target:    id,
		Err:       err,
	})
	return fmt.Errorf("watchlist %s %s: %w", op, id, err)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
