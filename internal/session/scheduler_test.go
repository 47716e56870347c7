package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"boardserver/internal/domain"
)

func newTestScheduler(t *testing.T, ledger *fakeLedger) (*Scheduler, *Tracker) {
	t.Helper()
	_, store := newTestStore(t)
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC))
	tracker := NewTracker(store, clock, time.UTC)
	rec := NewReconciler(tracker, ledger, zerolog.Nop())
	return NewScheduler(rec, ledger, clock, time.UTC, "0 0 * * *", zerolog.Nop()), tracker
}

func TestCatchUpRollsUpMissedDay(t *testing.T) {
	// The process slept through midnight: the ledger stops two days ago and
	// yesterday's set still has 7 visitors.
	ledger := &fakeLedger{total: 50, lastDay: "2026-08-26"}
	sched, tracker := newTestScheduler(t, ledger)
	ctx := context.Background()

	seedVisitors(t, tracker, "2026-08-27", "a", "b", "c", "d", "e", "f", "g")

	if err := sched.CatchUp(ctx); err != nil {
		t.Fatalf("CatchUp(): %v", err)
	}
	if ledger.total != 57 {
		t.Fatalf("ledger total after catch-up = %d, want 57", ledger.total)
	}
	if ledger.lastDay != "2026-08-27" {
		t.Fatalf("ledger lastDay = %q, want 2026-08-27", ledger.lastDay)
	}
	n, err := tracker.CurrentCount(ctx, "2026-08-27")
	if err != nil {
		t.Fatalf("CurrentCount(): %v", err)
	}
	if n != 0 {
		t.Fatalf("visitor set not cleared by catch-up, count = %d", n)
	}
}

func TestCatchUpSkipsWhenLedgerIsCurrent(t *testing.T) {
	ledger := &fakeLedger{total: 50, lastDay: "2026-08-27"}
	sched, tracker := newTestScheduler(t, ledger)
	ctx := context.Background()

	seedVisitors(t, tracker, "2026-08-28", "alice")

	if err := sched.CatchUp(ctx); err != nil {
		t.Fatalf("CatchUp(): %v", err)
	}
	if ledger.total != 50 {
		t.Fatalf("CatchUp() touched a current ledger: total = %d", ledger.total)
	}
	// Today's still-open set is untouched.
	n, err := tracker.CurrentCount(ctx, "2026-08-28")
	if err != nil {
		t.Fatalf("CurrentCount(): %v", err)
	}
	if n != 1 {
		t.Fatalf("today's set modified by catch-up, count = %d", n)
	}
}

func TestForceRollupIsIdempotent(t *testing.T) {
	ledger := &fakeLedger{total: 20, lastDay: "2026-08-26"}
	sched, tracker := newTestScheduler(t, ledger)
	ctx := context.Background()

	seedVisitors(t, tracker, "2026-08-27", "alice", "bob")

	first, err := sched.ForceRollup(ctx)
	if err != nil {
		t.Fatalf("ForceRollup(): %v", err)
	}
	if first.NewTotal != 22 {
		t.Fatalf("ForceRollup() total = %d, want 22", first.NewTotal)
	}

	second, err := sched.ForceRollup(ctx)
	if err != nil {
		t.Fatalf("second ForceRollup(): %v", err)
	}
	if second.NewTotal != 22 {
		t.Fatalf("second ForceRollup() total = %d, want 22", second.NewTotal)
	}
}

func TestOverlappingTriggerIsDropped(t *testing.T) {
	ledger := &fakeLedger{total: 0, lastDay: "2026-08-27"}
	sched, _ := newTestScheduler(t, ledger)

	sched.mu.Lock()
	defer sched.mu.Unlock()

	_, err := sched.ForceRollup(context.Background())
	if !errors.Is(err, domain.ErrRollupFailed) {
		t.Fatalf("ForceRollup() while rollup in flight = %v, want ErrRollupFailed", err)
	}
}

func TestStartRejectsBadCronSpec(t *testing.T) {
	ledger := &fakeLedger{lastDay: "2026-08-27"}
	_, store := newTestStore(t)
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC))
	tracker := NewTracker(store, clock, time.UTC)
	rec := NewReconciler(tracker, ledger, zerolog.Nop())
	sched := NewScheduler(rec, ledger, clock, time.UTC, "not a cron spec", zerolog.Nop())

	if err := sched.Start(context.Background()); err == nil {
		sched.Stop()
		t.Fatalf("Start() accepted an invalid cron spec")
	}
}

func TestStartRunsCatchUpBeforeScheduling(t *testing.T) {
	ledger := &fakeLedger{total: 50, lastDay: "2026-08-26"}
	sched, tracker := newTestScheduler(t, ledger)

	seedVisitors(t, tracker, "2026-08-27", "a", "b", "c")

	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("Start(): %v", err)
	}
	defer sched.Stop()

	if ledger.total != 53 {
		t.Fatalf("ledger total after Start() = %d, want 53", ledger.total)
	}
}
