package handlers

import (
	"net/http"
	"time"
)

var serviceStart = time.Now()

// Health is the liveness probe. It deliberately touches no backing store;
// store outages surface as 503s on real endpoints, not as a failed probe.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(serviceStart).Seconds()),
	})
}
