package domain

import (
	"encoding/json"
	"time"
)

// HistoryEntry is one audit record emitted by a handled request. Input and
// Output hold request/response snapshots as raw JSON documents.
type HistoryEntry struct {
	ID        string
	AccountID string
	IP        string
	Country   string
	API       string
	Method    string
	Status    int
	Input     json.RawMessage
	Output    json.RawMessage
	Time      time.Time
}

// HistoryFilter narrows an admin audit-log query. Zero values mean "no
// constraint". Ascending defaults to newest first when false.
type HistoryFilter struct {
	AccountID string
	API       string
	From      time.Time
	To        time.Time
	Ascending bool
	Limit     int
}
