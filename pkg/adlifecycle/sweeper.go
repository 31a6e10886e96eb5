package adlifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/logger"
)

// Store performs the two conditional bulk updates the sweeper relies on.
// Both must be single statements so that concurrent sweeps are harmless.
type Store interface {
	// ExpireTesting moves every testing ad with review_date <= now to analysis and clears its lock.
	ExpireTesting(ctx context.Context, now time.Time) (int64, error)
	// ReleaseStaleLocks clears is_locked on ads that are locked outside of an active testing window.
	ReleaseStaleLocks(ctx context.Context, now time.Time) (int64, error)
}

// SweepResult counts the rows a sweep touched.
type SweepResult struct {
	Expired  int64 `json:"expired"`
	Released int64 `json:"released"`
}

// Changed reports whether the sweep modified anything.
func (r SweepResult) Changed() bool {
	return r.Expired > 0 || r.Released > 0
}

// SweepHook is notified after a sweep that changed rows.
type SweepHook func(ctx context.Context, result SweepResult)

// Sweeper forces expired testing ads into analysis and repairs lock flags.
// It is idempotent and meant to run before every status-dependent read.
type Sweeper struct {
	store Store
	log   logger.Logger
	now   func() time.Time
	hooks []SweepHook
}

// NewSweeper creates a sweeper over store.
func NewSweeper(store Store, log logger.Logger, hooks ...SweepHook) *Sweeper {
	if log == nil {
		log = logger.Default()
	}
	return &Sweeper{
		store: store,
		log:   log.With("component", "sweeper"),
		now:   func() time.Time { return time.Now().UTC() },
		hooks: hooks,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// OnChange registers a hook that runs after a sweep modified rows.
func (s *Sweeper) OnChange(hook SweepHook) {
	s.hooks = append(s.hooks, hook)
}

// Sweep runs the expiry and lock-repair rules once.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.now()

	expired, err := s.store.ExpireTesting(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to expire testing ads: %w", err)
	}

	released, err := s.store.ReleaseStaleLocks(ctx, now)
	if err != nil {
		return SweepResult{Expired: expired}, fmt.Errorf("failed to release stale locks: %w", err)
	}

	result := SweepResult{Expired: expired, Released: released}
	if result.Changed() {
		s.log.Info("ads swept", "expired", expired, "released", released)
		for _, hook := range s.hooks {
			hook(ctx, result)
		}
	}
	return result, nil
}

// Expired reports whether the sweeper would move s to analysis at now.
func Expired(s Snapshot, now time.Time) bool {
	return s.Status == StatusTesting && s.ReviewDate != nil && !s.ReviewDate.After(now)
}

// StaleLock reports whether s carries a lock flag outside of a testing window.
func StaleLock(s Snapshot, now time.Time) bool {
	if !s.IsLocked {
		return false
	}
	return s.Status != StatusTesting || s.ReviewDate == nil || !s.ReviewDate.After(now)
}

// Repair applies the sweep rules to a single in-memory snapshot and reports
// whether anything changed.
func Repair(s Snapshot, now time.Time) (Snapshot, bool) {
	changed := false
	if Expired(s, now) {
		s.Status = StatusAnalysis
		s.IsLocked = false
		changed = true
	}
	if StaleLock(s, now) {
		s.IsLocked = false
		changed = true
	}
	return s, changed
}
