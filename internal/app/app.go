// Package app wires configuration, logging and the HTTP servers of both
// binaries.
package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/auctionsync/internal/backend"
	"github.com/MrSnakeDoc/auctionsync/internal/catalog"
	"github.com/MrSnakeDoc/auctionsync/internal/config"
	"github.com/MrSnakeDoc/auctionsync/internal/eventloop"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/mw"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
	"github.com/MrSnakeDoc/auctionsync/internal/page"
	"github.com/MrSnakeDoc/auctionsync/internal/profile"
	"github.com/MrSnakeDoc/auctionsync/internal/version"
)

const (
	// requestTimeout bounds one inbound request, including ?wait=true events.
	requestTimeout = 30 * time.Second
	// loopBuffer is the event loop's task queue size.
	loopBuffer = 64
)

// App hosts one listing page and serves it with its UI events.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	server  *httpserver.Server
	loop    *eventloop.Loop
	session *page.Session
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	prof, err := profile.NewLoader(cfg.ProfileFile).Load()
	if err != nil {
		loggerClient.Errorf("Failed to load page profile: %v", err)
		os.Exit(1)
	}

	site, err := url.Parse(cfg.SiteURL)
	if err != nil || site.Host == "" {
		loggerClient.Errorf("Invalid AUCTIONSYNC_SITE_URL %q", cfg.SiteURL)
		os.Exit(1)
	}

	// The jar is shared by the page fetch and the backend client: the
	// csrftoken cookie set by the page is what mutating requests echo.
	jar, err := cookiejar.New(nil)
	if err != nil {
		loggerClient.Errorf("Failed to create cookie jar: %v", err)
		os.Exit(1)
	}
	siteClient := &http.Client{Jar: jar, Timeout: cfg.HTTPTimeout}
	page.SeedSession(jar, site, cfg.SessionCookie)

	pageURL := site.ResolveReference(&url.URL{Path: backend.ListingPath(cfg.ListingID)}).String()
	loggerClient.Infof("Loading listing page %s", pageURL)
	fetchCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	doc, err := page.Fetch(fetchCtx, siteClient, pageURL)
	cancel()
	if err != nil {
		loggerClient.Errorf("Failed to load listing page: %v", err)
		os.Exit(1)
	}

	be, err := backend.NewClient(site, siteClient)
	if err != nil {
		loggerClient.Errorf("Failed to create backend client: %v", err)
		os.Exit(1)
	}

	loop := eventloop.New(loopBuffer, loggerClient.Named("eventloop"))
	session, err := page.New(doc, page.Options{
		Profile: prof,
		Catalog: catalog.NewClient(cfg.CatalogURL, &http.Client{Timeout: cfg.HTTPTimeout}),
		Backend: be,
		Loop:    loop,
		Logger:  loggerClient,
	})
	if err != nil {
		loggerClient.Errorf("Failed to bind page: %v", err)
		os.Exit(1)
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Build:        version.Get(),
		Service:      "driver",
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		Session:      session,
		ListingID:    cfg.ListingID,
		EventLimit: mw.RateLimitConfig{
			Burst:        cfg.EventBurst,
			RefillPerMin: cfg.EventRefillPerMin,
			TrustProxy:   cfg.TrustProxy,
		},
		Ready: func(ctx context.Context) error {
			return ready(ctx, loop, siteClient, pageURL)
		},
	}

	return &App{
		cfg:     cfg,
		logger:  loggerClient,
		server:  httpserver.NewDriver(cfg.ListenPort, requestTimeout, loggerClient, d),
		loop:    loop,
		session: session,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting auctionsync %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("auctionsync %s", version.Get())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go a.loop.Run(loopCtx)

	// The initial comment load is a page-load task: its failure is reported
	// and the page keeps running.
	a.loop.Go(ctx, "comments.start", a.session.Start)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// In-flight page actions finish against a live loop.
	done := make(chan struct{})
	go func() {
		a.loop.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.logger.Warn("page actions still running at shutdown")
	}
	stopLoop()
	<-a.loop.Stopped()

	a.logger.Info("✅ auctionsync stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

// ready passes when the loop answers and the site serves the listing page.
func ready(ctx context.Context, loop *eventloop.Loop, client *http.Client, pageURL string) error {
	if err := loop.Do(ctx, func() {}); err != nil {
		return fmt.Errorf("event loop: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, pageURL, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("site unreachable: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("site answered %d", resp.StatusCode)
	}
	return nil
}
