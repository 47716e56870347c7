package handlers

import (
	"net/http"

	"boardserver/internal/middleware"
)

// ForceRollup runs the daily rollup for the most recent completed day on
// demand. It shares the scheduler's re-entrancy guard, so a trigger that
// overlaps a running rollup is refused rather than queued.
func (a *App) ForceRollup(w http.ResponseWriter, r *http.Request) {
	result, err := a.Rollup.ForceRollup(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.auditEntry(r, middleware.UserIDFromContext(r.Context()), http.StatusOK, nil, result)
	a.json(w, http.StatusOK, map[string]any{
		"day":      result.Day,
		"visitors": result.Visitors,
		"total":    result.NewTotal,
	})
}
