// Package page hosts one listing page: it owns the parsed document,
// resolves the DOM contract once and builds the components over it.
package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/auctionsync/internal/comments"
	"github.com/MrSnakeDoc/auctionsync/internal/dom"
	"github.com/MrSnakeDoc/auctionsync/internal/eventloop"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
	"github.com/MrSnakeDoc/auctionsync/internal/notify"
	"github.com/MrSnakeDoc/auctionsync/internal/profile"
	"github.com/MrSnakeDoc/auctionsync/internal/search"
	"github.com/MrSnakeDoc/auctionsync/internal/seq"
	"github.com/MrSnakeDoc/auctionsync/internal/watchlist"
)

// SessionCookieName is the site's login session cookie.
const SessionCookieName = "sessionid"

// Backend serves both comment and watchlist endpoints.
type Backend interface {
	comments.Backend
	watchlist.Backend
}

type Options struct {
	Profile  profile.Profile
	Catalog  search.Catalog
	Backend  Backend
	Loop     *eventloop.Loop
	Guard    *seq.Guard
	Logger   logger.Logger
	Notifier notify.Notifier
}

// Session is a loaded page with its components. A component is nil when
// the page does not carry its elements.
type Session struct {
	doc    *dom.Document
	loop   *eventloop.Loop
	logger logger.Logger

	search    *search.Component
	comments  *comments.Component
	watchlist *watchlist.Component
}

// New binds the components to doc. It must be called before the loop runs.
func New(doc *dom.Document, opts Options) (*Session, error) {
	if doc == nil || opts.Loop == nil {
		return nil, errors.New("page: document and event loop are required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Guard == nil {
		opts.Guard = seq.NewGuard()
	}
	p := opts.Profile
	s := &Session{doc: doc, loop: opts.Loop, logger: opts.Logger.Named("page")}

	if results := doc.ByID(p.Search.ResultsID); results != nil && opts.Catalog != nil {
		c, err := search.New(search.Options{
			Input:    doc.ByID(p.Search.InputID),
			Results:  results,
			Catalog:  opts.Catalog,
			Loop:     opts.Loop,
			Guard:    opts.Guard,
			Logger:   opts.Logger,
			Notifier: opts.Notifier,
		})
		if err != nil {
			return nil, err
		}
		s.search = c
	} else {
		s.logger.Info("search disabled", logger.String("results_id", p.Search.ResultsID))
	}

	section := doc.ByID(p.Comments.SectionID)
	display := doc.ByID(p.Comments.DisplayID)
	if section != nil && display != nil && opts.Backend != nil {
		c, err := comments.New(comments.Options{
			Section:     section,
			Form:        doc.ByID(p.Comments.FormID),
			Display:     display,
			ListingAttr: p.Comments.ListingAttr,
			Backend:     opts.Backend,
			Loop:        opts.Loop,
			Guard:       opts.Guard,
			Logger:      opts.Logger,
			Notifier:    opts.Notifier,
		})
		if err != nil {
			return nil, err
		}
		s.comments = c
	} else {
		s.logger.Info("comments disabled", logger.String("section_id", p.Comments.SectionID))
	}

	if icons := doc.ByClass(p.Watchlist.IconClass); len(icons) > 0 && opts.Backend != nil {
		c, err := watchlist.New(watchlist.Options{
			Icons:         icons,
			Marker:        p.Watchlist.MarkerClass,
			ActiveClass:   p.Watchlist.ActiveClass,
			InactiveClass: p.Watchlist.InactiveClass,
			ListingAttr:   p.Watchlist.ListingAttr,
			Backend:       opts.Backend,
			Loop:          opts.Loop,
			Guard:         opts.Guard,
			Logger:        opts.Logger,
			Notifier:      opts.Notifier,
		})
		if err != nil {
			return nil, err
		}
		s.watchlist = c
	} else {
		s.logger.Info("watchlist disabled", logger.String("icon_class", p.Watchlist.IconClass))
	}

	return s, nil
}

func (s *Session) Search() *search.Component       { return s.search }
func (s *Session) Comments() *comments.Component   { return s.comments }
func (s *Session) Watchlist() *watchlist.Component { return s.watchlist }
func (s *Session) Loop() *eventloop.Loop           { return s.loop }

// Start runs the page-load work: the initial comment list fetch.
func (s *Session) Start(ctx context.Context) error {
	if s.comments == nil {
		return nil
	}
	return s.comments.Start(ctx)
}

// Render writes the current document. The snapshot is taken in one loop
// turn, so it never shows half of an update.
func (s *Session) Render(ctx context.Context, w io.Writer) error {
	var (
		buf bytes.Buffer
		err error
	)
	if doErr := s.loop.Do(ctx, func() { err = s.doc.Render(&buf) }); doErr != nil {
		return doErr
	}
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Fetch loads and parses the page at pageURL. Cookies set by the response
// (csrftoken among them) land in the client's jar.
func Fetch(ctx context.Context, client *http.Client, pageURL string) (*dom.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch page: status %d", resp.StatusCode)
	}
	return dom.Parse(resp.Body)
}

// SeedSession stores a login session cookie for site in jar.
func SeedSession(jar http.CookieJar, site *url.URL, value string) {
	if value == "" {
		return
	}
	jar.SetCookies(site, []*http.Cookie{{
		Name:  SessionCookieName,
		Value: value,
		Path:  "/",
	}})
}
