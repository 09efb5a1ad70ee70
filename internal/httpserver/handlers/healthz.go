package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auctionsync/internal/version"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	Service       string  `json:"service,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	version.Info
}

// Healthz is the liveness probe. It never touches the page or the backend.
func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(healthzResponse{
			Status:        "ok",
			Service:       d.Service,
			UptimeSeconds: time.Since(start).Seconds(),
			Info:          d.Build,
		})
	}
}
