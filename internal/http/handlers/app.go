package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"boardserver/internal/audit"
	"boardserver/internal/domain"
	"boardserver/internal/middleware"
	"boardserver/internal/session"
	"boardserver/internal/storage"
)

// RollupTrigger is the slice of the scheduler the admin endpoint needs.
type RollupTrigger interface {
	ForceRollup(ctx context.Context) (domain.RollupResult, error)
}

// RecentSearches records and lists per-account search history.
type RecentSearches interface {
	Add(ctx context.Context, accountID, term string) error
	List(ctx context.Context, accountID string, limit int64) ([]string, error)
}

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Logger zerolog.Logger

	Accounts    domain.AccountRepository
	Posts       domain.PostRepository
	Comments    domain.CommentRepository
	History     domain.HistoryRepository
	Totals      domain.LoginTotalStore
	Credentials domain.CredentialVerifier

	Guard    *session.Guard
	Tracker  *session.Tracker
	Rollup   RollupTrigger
	Searches RecentSearches

	Audit audit.Recorder
	Store storage.ObjectStore

	JWTSecret string
	TokenTTL  time.Duration
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}

// fail maps domain errors to HTTP responses in one place.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateSession):
		a.error(w, http.StatusConflict, "duplicate_session", localize(r.Context(), msgAlreadyLoggedIn))
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", localize(r.Context(), msgBadCredentials))
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "not allowed")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "no matching record")
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", "already in use")
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		a.Logger.Error().Err(err).Msg("store unavailable")
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", "temporarily unavailable, try again")
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// audit emits one history entry for the handled request. Best effort; the
// recorder never blocks the request path.
func (a *App) auditEntry(r *http.Request, accountID string, status int, input, output any) {
	if a.Audit == nil {
		return
	}
	entry := &domain.HistoryEntry{
		AccountID: accountID,
		IP:        middleware.ClientIP(r),
		API:       r.URL.Path,
		Method:    r.Method,
		Status:    status,
		Time:      time.Now().UTC(),
	}
	if input != nil {
		entry.Input, _ = json.Marshal(input)
	}
	if output != nil {
		entry.Output, _ = json.Marshal(output)
	}
	a.Audit.Record(entry)
}
