// Package notify is the hook through which component failures leave the
// core. The default implementation only writes to the diagnostic log; a
// host can add visible feedback by supplying its own Notifier.
package notify

import (
	"context"

	"github.com/MrSnakeDoc/auctionsync/internal/logger"
)

// Event describes one failed operation.
type Event struct {
	Component string // "search" | "comments" | "watchlist"
	Op        string // "submit", "refresh", "toggle", ...
	Target    string // listing id or query, when there is one
	Err       error
}

type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Func adapts a plain function.
type Func func(ctx context.Context, ev Event)

func (f Func) Notify(ctx context.Context, ev Event) { f(ctx, ev) }

// Log writes failures to the diagnostic logger.
func Log(log logger.Logger) Notifier {
	return Func(func(_ context.Context, ev Event) {
		log.Warn("operation failed",
			logger.String("component", ev.Component),
			logger.String("op", ev.Op),
			logger.String("target", ev.Target),
			logger.Error(ev.Err))
	})
}

// Multi fans an event out to several notifiers. Nil entries are skipped.
func Multi(ns ...Notifier) Notifier {
	return Func(func(ctx context.Context, ev Event) {
		for _, n := range ns {
			if n != nil {
				n.Notify(ctx, ev)
			}
		}
	})
}

// Nop drops every event.
var Nop Notifier = Func(func(context.Context, Event) {})
