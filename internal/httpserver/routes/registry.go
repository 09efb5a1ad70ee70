package routes

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
)

// Route groups.
const (
	GroupProbes  = "probes"  // /healthz, /readyz
	GroupMetrics = "metrics" // /metrics
	GroupPage    = "page"    // page render, /status and UI events
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var registry []entry

// Register adds a named route group with optional group middlewares.
// Groups register themselves from init.
func Register(name string, reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{name: name, reg: reg, mws: mws})
}

// RegisterAll mounts the named groups on r, or every group when no name
// is given. Called once per router.
func RegisterAll(r chi.Router, d deps.Deps, only ...string) {
	for _, e := range registry {
		if len(only) > 0 && !slices.Contains(only, e.name) {
			continue
		}
		target := r
		if len(e.mws) > 0 {
			target = r.With(e.mws...)
		}
		e.reg(target, d)
		if d.Logger != nil {
			d.Logger.Debug("route group registered", logger.String("group", e.name))
		}
	}
}
