package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boardserver/internal/domain"
)

type capturingHistory struct {
	filter  domain.HistoryFilter
	entries []domain.HistoryEntry
}

func (h *capturingHistory) Insert(ctx context.Context, entry *domain.HistoryEntry) error {
	h.entries = append(h.entries, *entry)
	return nil
}

func (h *capturingHistory) Query(ctx context.Context, filter domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	h.filter = filter
	return h.entries, nil
}

func TestHistoryQueryFilterParsing(t *testing.T) {
	app, _ := newTestApp(t)
	history := &capturingHistory{entries: []domain.HistoryEntry{
		{ID: "h1", API: "/account/login", Method: "POST", Status: 200, Time: time.Now()},
	}}
	app.History = history

	r := httptest.NewRequest(http.MethodGet,
		"/history?id=acct-1&api=/account/login&start=2026-08-01&end=2026-08-28&order=asc&limit=50", nil)
	w := httptest.NewRecorder()
	app.HistoryQuery(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d, body %s", w.Code, w.Body.String())
	}
	f := history.filter
	if f.AccountID != "acct-1" || f.API != "/account/login" {
		t.Fatalf("filter = %+v, want id and api set", f)
	}
	if !f.Ascending || f.Limit != 50 {
		t.Fatalf("filter = %+v, want ascending limit 50", f)
	}
	if f.From.Format("2006-01-02") != "2026-08-01" || f.To.Format("2006-01-02") != "2026-08-28" {
		t.Fatalf("filter range = %v..%v", f.From, f.To)
	}

	var out []historyEntryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 || out[0].API != "/account/login" {
		t.Fatalf("response = %+v, want the seeded entry", out)
	}
}

func TestHistoryQueryRejectsBadParams(t *testing.T) {
	app, _ := newTestApp(t)
	app.History = &capturingHistory{}

	for _, target := range []string{
		"/history?start=not-a-time",
		"/history?end=13/01/2026",
		"/history?limit=zero",
		"/history?limit=-5",
	} {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		app.HistoryQuery(w, r)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", target, w.Code)
		}
	}
}

type stubRollup struct {
	result domain.RollupResult
	err    error
	calls  int
}

func (s *stubRollup) ForceRollup(ctx context.Context) (domain.RollupResult, error) {
	s.calls++
	return s.result, s.err
}

func TestForceRollupHandler(t *testing.T) {
	app, _ := newTestApp(t)
	rollup := &stubRollup{result: domain.RollupResult{Day: "2026-08-27", NewTotal: 112, Visitors: 12}}
	app.Rollup = rollup

	r := httptest.NewRequest(http.MethodPost, "/admin/rollup", nil)
	w := httptest.NewRecorder()
	app.ForceRollup(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("rollup status = %d, body %s", w.Code, w.Body.String())
	}
	if rollup.calls != 1 {
		t.Fatalf("ForceRollup called %d times, want 1", rollup.calls)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["day"] != "2026-08-27" || resp["total"] != float64(112) || resp["visitors"] != float64(12) {
		t.Fatalf("response = %v", resp)
	}
}

func TestForceRollupInFlight(t *testing.T) {
	app, _ := newTestApp(t)
	app.Rollup = &stubRollup{err: domain.ErrRollupFailed}

	r := httptest.NewRequest(http.MethodPost, "/admin/rollup", nil)
	w := httptest.NewRecorder()
	app.ForceRollup(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("rollup status = %d, want 500", w.Code)
	}
}
