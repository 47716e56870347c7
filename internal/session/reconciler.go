package session

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"boardserver/internal/domain"
)

// Reconciler folds a day's visitor count into the durable cumulative total,
// exactly once per day. The ledger append is conditional on the day not
// having been rolled up yet, which makes retries idempotent: a retry before
// the append re-reads the (possibly larger) count, a retry after the append
// only finishes the set deletion.
type Reconciler struct {
	tracker *Tracker
	counter domain.LoginTotalStore
	logger  zerolog.Logger
}

// NewReconciler constructs a Reconciler over the tracker's ephemeral set and
// the durable ledger.
func NewReconciler(tracker *Tracker, counter domain.LoginTotalStore, logger zerolog.Logger) *Reconciler {
	return &Reconciler{tracker: tracker, counter: counter, logger: logger}
}

// RunRollup reconciles the visitor set for day into the durable total.
// Ordering is load count, read total, append ledger row, and only then clear
// the set. A failed append leaves the set intact for the next attempt; a
// failed clear after a successful append is retried later and cannot double
// count because the ledger row for the day already exists.
func (r *Reconciler) RunRollup(ctx context.Context, day string) (domain.RollupResult, error) {
	visitors, err := r.tracker.CurrentCount(ctx, day)
	if err != nil {
		return domain.RollupResult{}, fmt.Errorf("%w: %v", domain.ErrRollupFailed, err)
	}

	total, lastDay, err := r.counter.Current(ctx)
	if err != nil {
		return domain.RollupResult{}, fmt.Errorf("%w: read ledger: %v", domain.ErrRollupFailed, err)
	}

	if lastDay != "" && lastDay >= day {
		if lastDay > day {
			return domain.RollupResult{}, fmt.Errorf("%w: ledger at %s, asked to roll up %s", domain.ErrInconsistentState, lastDay, day)
		}
		// Already rolled up. A surviving set means a previous run crashed
		// between the append and the clear; finish the deletion without
		// touching the total.
		if visitors > 0 {
			if err := r.tracker.Clear(ctx, day); err != nil {
				return domain.RollupResult{}, fmt.Errorf("%w: clear after recovery: %v", domain.ErrRollupFailed, err)
			}
			r.logger.Warn().Str("day", day).Int64("visitors", visitors).
				Msg("cleared leftover visitor set for already rolled-up day")
		}
		return domain.RollupResult{Day: day, NewTotal: total}, nil
	}

	newTotal := total + visitors
	inserted, err := r.appendWithRetry(ctx, day, newTotal, visitors)
	if err != nil {
		return domain.RollupResult{}, fmt.Errorf("%w: append ledger: %v", domain.ErrRollupFailed, err)
	}
	if !inserted {
		// A concurrent rollup for the same day won the append. Its count is
		// authoritative; report its state and leave the clear to it.
		total, _, err := r.counter.Current(ctx)
		if err != nil {
			return domain.RollupResult{}, fmt.Errorf("%w: re-read ledger: %v", domain.ErrRollupFailed, err)
		}
		return domain.RollupResult{Day: day, NewTotal: total}, nil
	}

	if err := r.tracker.Clear(ctx, day); err != nil {
		// The total is durable; only the deletion is outstanding. Surfacing
		// the error makes the scheduler retry, and the retry lands in the
		// already-rolled-up branch above.
		return domain.RollupResult{}, fmt.Errorf("%w: clear visitor set: %v", domain.ErrRollupFailed, err)
	}

	r.logger.Info().Str("day", day).Int64("visitors", visitors).Int64("total", newTotal).
		Msg("daily login rollup complete")
	return domain.RollupResult{Day: day, NewTotal: newTotal, Visitors: visitors}, nil
}

// appendWithRetry retries transient durable-store failures with exponential
// backoff before giving up until the next scheduled tick.
func (r *Reconciler) appendWithRetry(ctx context.Context, day string, total, visitors int64) (bool, error) {
	var inserted bool
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 15 * time.Second

	operation := func() error {
		var err error
		inserted, err = r.counter.Append(ctx, day, total, visitors)
		return err
	}
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return false, err
	}
	return inserted, nil
}
