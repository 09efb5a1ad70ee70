package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/mw"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
	"github.com/MrSnakeDoc/auctionsync/internal/page"
	"github.com/MrSnakeDoc/auctionsync/internal/version"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Build        version.Info
	Service      string             // "driver" | "devbackend"
	AllowedCIDRS []string           // IPs allowed to access healthz/readyz/metrics
	TrustProxy   bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Session      *page.Session      // the hosted page
	ListingID    string             // listing driven by this process
	EventLimit   mw.RateLimitConfig // per-client limit on /events, zero Burst disables
	Ready        func(ctx context.Context) error
}
