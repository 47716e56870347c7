package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"boardserver/internal/domain"
)

type historyEntryResponse struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id,omitempty"`
	IP        string          `json:"ip"`
	Country   string          `json:"country,omitempty"`
	API       string          `json:"api"`
	Method    string          `json:"method"`
	Status    int             `json:"status"`
	Input     json.RawMessage `json:"input,omitempty"`
	Output    json.RawMessage `json:"output,omitempty"`
	Time      time.Time       `json:"time"`
}

// HistoryQuery serves the admin audit-log query. Filters arrive as query
// parameters: id, api, start, end (RFC 3339 or 2006-01-02), order=asc|desc
// and limit.
func (a *App) HistoryQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.HistoryFilter{
		AccountID: q.Get("id"),
		API:       q.Get("api"),
		Ascending: q.Get("order") == "asc",
	}

	var err error
	if filter.From, err = parseHistoryTime(q.Get("start")); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid start time")
		return
	}
	if filter.To, err = parseHistoryTime(q.Get("end")); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid end time")
		return
	}
	if v := q.Get("limit"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid limit")
			return
		}
		filter.Limit = n
	}

	entries, err := a.History.Query(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryResponse{
			ID:        e.ID,
			AccountID: e.AccountID,
			IP:        e.IP,
			Country:   e.Country,
			API:       e.API,
			Method:    e.Method,
			Status:    e.Status,
			Input:     e.Input,
			Output:    e.Output,
			Time:      e.Time,
		})
	}
	a.json(w, http.StatusOK, out)
}

func parseHistoryTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
