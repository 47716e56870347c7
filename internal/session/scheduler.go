package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"boardserver/internal/domain"
)

const rollupTimeout = 30 * time.Second

// Scheduler fires the daily rollup at a fixed wall-clock instant. It is a
// process-wide singleton: at most one rollup is in flight at a time, and a
// tick that arrives while one is running is dropped, not queued. On startup
// it checks whether the ledger covers yesterday and runs a catch-up rollup
// first when the process slept through the scheduled instant.
type Scheduler struct {
	reconciler *Reconciler
	counter    domain.LoginTotalStore
	clock      quartz.Clock
	loc        *time.Location
	spec       string
	logger     zerolog.Logger

	cron *cron.Cron
	mu   sync.Mutex // re-entrancy guard: held for the duration of a rollup
}

// NewScheduler constructs a Scheduler. spec is a cron expression evaluated
// in loc (default "0 0 * * *", midnight).
func NewScheduler(reconciler *Reconciler, counter domain.LoginTotalStore, clock quartz.Clock, loc *time.Location, spec string, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if spec == "" {
		spec = "0 0 * * *"
	}
	return &Scheduler{
		reconciler: reconciler,
		counter:    counter,
		clock:      clock,
		loc:        loc,
		spec:       spec,
		logger:     logger,
	}
}

// Start runs the catch-up check, then begins normal daily firing. The
// returned error only covers setup; rollup failures are logged and retried
// on later ticks, never allowed to stop the loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.CatchUp(ctx); err != nil {
		// A failed catch-up is retried at the next tick; starting the
		// schedule anyway is what keeps the day's count from being dropped.
		s.logger.Error().Err(err).Msg("startup catch-up rollup failed")
	}

	s.cron = cron.New(cron.WithLocation(s.loc))
	if _, err := s.cron.AddFunc(s.spec, s.fire); err != nil {
		return fmt.Errorf("invalid rollup schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info().Str("spec", s.spec).Str("tz", s.loc.String()).Msg("rollup scheduler started")
	return nil
}

// Stop halts the schedule. A rollup already in flight finishes on its own.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// CatchUp rolls up yesterday when the ledger does not cover it yet. Days
// further back have no surviving visitor sets (the sets expire after 24h),
// so yesterday is the only day a restart can still recover.
func (s *Scheduler) CatchUp(ctx context.Context) error {
	yesterday := s.yesterday()
	_, lastDay, err := s.counter.Current(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	if lastDay >= yesterday {
		return nil
	}
	s.logger.Info().Str("last_rollup", lastDay).Str("day", yesterday).Msg("running catch-up rollup")
	_, err = s.runOnce(ctx, yesterday)
	return err
}

// ForceRollup triggers the rollup for yesterday immediately. It is exposed
// for operational recovery and is idempotent: when yesterday is already
// covered the ledger stays untouched.
func (s *Scheduler) ForceRollup(ctx context.Context) (domain.RollupResult, error) {
	return s.runOnce(ctx, s.yesterday())
}

// fire is the cron callback. The day that just ended is the one to roll up.
func (s *Scheduler) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), rollupTimeout)
	defer cancel()
	if _, err := s.runOnce(ctx, s.yesterday()); err != nil {
		s.logger.Error().Err(err).Msg("scheduled rollup failed; will retry on next tick")
	}
}

// runOnce executes one rollup under the re-entrancy guard. A second caller
// while a rollup is running gets ErrRollupFailed and no queued work.
func (s *Scheduler) runOnce(ctx context.Context, day string) (domain.RollupResult, error) {
	if !s.mu.TryLock() {
		s.logger.Warn().Str("day", day).Msg("rollup already in flight; dropping trigger")
		return domain.RollupResult{}, fmt.Errorf("%w: rollup already in flight", domain.ErrRollupFailed)
	}
	defer s.mu.Unlock()
	return s.reconciler.RunRollup(ctx, day)
}

func (s *Scheduler) yesterday() string {
	return s.clock.Now().In(s.loc).AddDate(0, 0, -1).Format(dayFormat)
}
