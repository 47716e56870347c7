package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"boardserver/internal/domain"
	"boardserver/internal/middleware"
)

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"pw"`
}

type loginResponse struct {
	Message    string `json:"message"`
	Token      string `json:"token"`
	DailyLogin int64  `json:"daily_login"`
	TotalLogin int64  `json:"total_login"`
	IsAdmin    bool   `json:"is_admin"`
}

// Login verifies credentials, claims the account's session slot and issues an
// access token. A second login inside the freshness window is rejected with
// 409 before any counter is touched.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.LoginID == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "login_id and pw are required")
		return
	}

	account, err := a.Credentials.Verify(r.Context(), req.LoginID, req.Password)
	if err != nil {
		a.auditEntry(r, "", http.StatusUnauthorized, map[string]string{"login_id": req.LoginID}, nil)
		a.fail(w, r, err)
		return
	}

	marker, err := a.Guard.AttemptLogin(r.Context(), account.ID)
	if err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, domain.ErrDuplicateSession) {
			status = http.StatusConflict
		}
		a.auditEntry(r, account.ID, status, map[string]string{"login_id": req.LoginID}, nil)
		a.fail(w, r, err)
		return
	}

	// The login is already accepted; a tracker hiccup must not undo it.
	if err := a.Tracker.Record(r.Context(), account.ID); err != nil {
		a.Logger.Warn().Err(err).Str("account_id", account.ID).Msg("visitor record failed")
	}

	counts, err := a.Tracker.Counts(r.Context(), a.Totals)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("login counts unavailable")
		counts = domain.LoginCounts{}
	}

	token, err := middleware.SignJWT(a.JWTSecret, middleware.TokenClaims{
		Sub:       account.ID,
		LoginID:   account.LoginID,
		SessionID: marker.SessionID,
		Admin:     account.IsAdmin,
		Exp:       marker.CreatedAt.Add(a.TokenTTL).Unix(),
		Issuer:    "boardserver",
		Audience:  "boardserver-client",
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	resp := loginResponse{
		Message:    localize(r.Context(), msgLoginSuccess),
		Token:      token,
		DailyLogin: counts.Daily,
		TotalLogin: counts.Total,
		IsAdmin:    account.IsAdmin,
	}
	a.auditEntry(r, account.ID, http.StatusOK, map[string]string{"login_id": req.LoginID},
		map[string]any{"daily_login": counts.Daily, "total_login": counts.Total})
	a.json(w, http.StatusOK, resp)
}

// Logout releases the caller's session marker so the account can log in again
// before the freshness window elapses. It is idempotent.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.UserIDFromContext(r.Context())
	if accountID == "" {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}
	if err := a.Guard.EndSession(r.Context(), accountID); err != nil {
		a.fail(w, r, err)
		return
	}
	a.auditEntry(r, accountID, http.StatusOK, nil, nil)
	a.json(w, http.StatusOK, map[string]string{"message": localize(r.Context(), msgLogoutSuccess)})
}

// CountLogin reports today's distinct-visitor count and the combined
// cumulative total.
func (a *App) CountLogin(w http.ResponseWriter, r *http.Request) {
	counts, err := a.Tracker.Counts(r.Context(), a.Totals)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]int64{
		"daily_login": counts.Daily,
		"total_login": counts.Total,
	})
}
