package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"

	"boardserver/internal/domain"
)

func newTestTracker(t *testing.T) (*Tracker, *quartz.Mock) {
	t.Helper()
	_, store := newTestStore(t)
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC))
	return NewTracker(store, clock, time.UTC), clock
}

func TestRecordCountsDistinctAccountsOnce(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	for _, id := range []string{"alice", "bob", "alice", "carol"} {
		if err := tracker.Record(ctx, id); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}

	n, err := tracker.CurrentCount(ctx, "2026-08-27")
	if err != nil {
		t.Fatalf("CurrentCount(): %v", err)
	}
	if n != 3 {
		t.Fatalf("CurrentCount() = %d, want 3", n)
	}
}

func TestCurrentCountZeroForUnknownDay(t *testing.T) {
	tracker, _ := newTestTracker(t)

	n, err := tracker.CurrentCount(context.Background(), "1999-12-31")
	if err != nil {
		t.Fatalf("CurrentCount(): %v", err)
	}
	if n != 0 {
		t.Fatalf("CurrentCount() on unknown day = %d, want 0", n)
	}
}

func TestRecordKeysByCalendarDayInZone(t *testing.T) {
	_, store := newTestStore(t)
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	clock := quartz.NewMock(t)
	// 23:30 UTC on the 27th is already the 28th in Seoul.
	clock.Set(time.Date(2026, 8, 27, 23, 30, 0, 0, time.UTC))
	tracker := NewTracker(store, clock, seoul)

	if err := tracker.Record(context.Background(), "alice"); err != nil {
		t.Fatalf("Record(): %v", err)
	}
	if got := tracker.Today(); got != "2026-08-28" {
		t.Fatalf("Today() = %q, want 2026-08-28", got)
	}
	n, err := tracker.CurrentCount(context.Background(), "2026-08-28")
	if err != nil {
		t.Fatalf("CurrentCount(): %v", err)
	}
	if n != 1 {
		t.Fatalf("CurrentCount(2026-08-28) = %d, want 1", n)
	}
}

func TestRecordAcrossMidnightStartsFreshSet(t *testing.T) {
	tracker, clock := newTestTracker(t)
	ctx := context.Background()

	if err := tracker.Record(ctx, "alice"); err != nil {
		t.Fatalf("Record(): %v", err)
	}
	clock.Advance(24 * time.Hour)
	if err := tracker.Record(ctx, "alice"); err != nil {
		t.Fatalf("Record() next day: %v", err)
	}

	today, err := tracker.CurrentCount(ctx, "2026-08-28")
	if err != nil {
		t.Fatalf("CurrentCount(): %v", err)
	}
	if today != 1 {
		t.Fatalf("CurrentCount(today) = %d, want 1", today)
	}
	yesterday, err := tracker.CurrentCount(ctx, "2026-08-27")
	if err != nil {
		t.Fatalf("CurrentCount(): %v", err)
	}
	if yesterday != 1 {
		t.Fatalf("CurrentCount(yesterday) = %d, want 1", yesterday)
	}
}

func TestConcurrentRecordsAreSafe(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if err := tracker.Record(ctx, id); err != nil {
					t.Errorf("Record(%s): %v", id, err)
				}
			}(id)
		}
	}
	wg.Wait()

	n, err := tracker.CurrentCount(ctx, tracker.Today())
	if err != nil {
		t.Fatalf("CurrentCount(): %v", err)
	}
	if n != int64(len(ids)) {
		t.Fatalf("CurrentCount() = %d, want %d", n, len(ids))
	}
}

func TestClearRemovesTheDay(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	if err := tracker.Record(ctx, "alice"); err != nil {
		t.Fatalf("Record(): %v", err)
	}
	if err := tracker.Clear(ctx, "2026-08-27"); err != nil {
		t.Fatalf("Clear(): %v", err)
	}
	n, err := tracker.CurrentCount(ctx, "2026-08-27")
	if err != nil {
		t.Fatalf("CurrentCount(): %v", err)
	}
	if n != 0 {
		t.Fatalf("CurrentCount() after clear = %d, want 0", n)
	}
}

func TestCountsCombinesLedgerAndLiveSet(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()
	ledger := &fakeLedger{total: 100, lastDay: "2026-08-26"}

	for _, id := range []string{"alice", "bob"} {
		if err := tracker.Record(ctx, id); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}

	counts, err := tracker.Counts(ctx, ledger)
	if err != nil {
		t.Fatalf("Counts(): %v", err)
	}
	if counts.Daily != 2 || counts.Total != 102 {
		t.Fatalf("Counts() = %+v, want daily 2 total 102", counts)
	}
}

var _ domain.LoginTotalStore = (*fakeLedger)(nil)
