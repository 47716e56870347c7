package domain

import "time"

// SessionMarker records a live login for an account. At most one live marker
// exists per account at any instant; the marker's store-level TTL equals the
// freshness window, so its presence implies an active session younger than
// that window.
type SessionMarker struct {
	SessionID string
	AccountID string
	CreatedAt time.Time
}

// RollupResult reports what a completed daily rollup did.
type RollupResult struct {
	Day      string
	NewTotal int64
	Visitors int64
}

// LoginCounts is the read-path view over login accounting: the live daily
// distinct-visitor count plus the combined total. Combined is always derived
// at read time (durable total + daily count), never persisted.
type LoginCounts struct {
	Daily int64
	Total int64
}
