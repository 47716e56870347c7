package session

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"

	"boardserver/internal/domain"
)

const (
	visitorKeyPrefix = "visitors:"
	dayFormat        = "2006-01-02"

	// visitorTTL keeps a day's set alive for a full day past its last write,
	// so an active day never expires mid-day and an unrolled set eventually
	// falls away on its own.
	visitorTTL = 24 * time.Hour
)

// Tracker records which accounts logged in on a given calendar day as a
// deduplicated set. Adds are commutative and need no ordering between each
// other; only the reconciler's Clear must not race an add for the same day.
type Tracker struct {
	store KeyStore
	clock quartz.Clock
	loc   *time.Location
}

// NewTracker constructs a Tracker. loc is the single time zone used to
// derive calendar days.
func NewTracker(store KeyStore, clock quartz.Clock, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{store: store, clock: clock, loc: loc}
}

// Record adds accountID to today's visitor set and refreshes the set TTL.
// Recording the same account any number of times in one day counts once.
func (t *Tracker) Record(ctx context.Context, accountID string) error {
	day := t.Today()
	if err := t.store.AddSetMember(ctx, visitorKey(day), accountID, visitorTTL); err != nil {
		return fmt.Errorf("record visitor for %s: %w", day, err)
	}
	return nil
}

// CurrentCount returns the number of distinct accounts recorded for day,
// 0 when no set exists.
func (t *Tracker) CurrentCount(ctx context.Context, day string) (int64, error) {
	n, err := t.store.SetCardinality(ctx, visitorKey(day))
	if err != nil {
		return 0, fmt.Errorf("count visitors for %s: %w", day, err)
	}
	return n, nil
}

// Members returns the recorded accounts for day. Only the rollup reconciler
// uses it.
func (t *Tracker) Members(ctx context.Context, day string) ([]string, error) {
	members, err := t.store.SetMembers(ctx, visitorKey(day))
	if err != nil {
		return nil, fmt.Errorf("list visitors for %s: %w", day, err)
	}
	return members, nil
}

// Clear deletes the visitor set for day. Only the rollup reconciler may call
// it, and only after the durable total for that day has been written.
func (t *Tracker) Clear(ctx context.Context, day string) error {
	if err := t.store.DeleteSet(ctx, visitorKey(day)); err != nil {
		return fmt.Errorf("clear visitors for %s: %w", day, err)
	}
	return nil
}

// Today returns the current calendar day in the tracker's time zone.
func (t *Tracker) Today() string {
	return t.clock.Now().In(t.loc).Format(dayFormat)
}

// Yesterday returns the calendar day before today in the tracker's time zone.
func (t *Tracker) Yesterday() string {
	return t.clock.Now().In(t.loc).AddDate(0, 0, -1).Format(dayFormat)
}

// Counts assembles the read-path view: today's live distinct-visitor count
// plus the combined total derived from the durable ledger. The combined
// value is computed here and never persisted.
func (t *Tracker) Counts(ctx context.Context, counter domain.LoginTotalStore) (domain.LoginCounts, error) {
	daily, err := t.CurrentCount(ctx, t.Today())
	if err != nil {
		return domain.LoginCounts{}, err
	}
	total, _, err := counter.Current(ctx)
	if err != nil {
		return domain.LoginCounts{}, fmt.Errorf("read login total: %w", err)
	}
	return domain.LoginCounts{Daily: daily, Total: total + daily}, nil
}

func visitorKey(day string) string {
	return visitorKeyPrefix + day
}
