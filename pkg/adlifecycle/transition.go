package adlifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/domain"
)

// Snapshot is the part of an ad the transition rules look at.
type Snapshot struct {
	Status     Status
	IsLocked   bool
	ReviewDate *time.Time
	Hypothesis string
	LockDays   int
}

// EffectiveLockDays returns LockDays, falling back to DefaultLockDays when unset.
func (s Snapshot) EffectiveLockDays() int {
	if s.LockDays <= 0 {
		return DefaultLockDays
	}
	return s.LockDays
}

// LockActive reports whether the ad is inside its testing window at now.
func (s Snapshot) LockActive(now time.Time) bool {
	return s.Status == StatusTesting && s.IsLocked && s.ReviewDate != nil && s.ReviewDate.After(now)
}

// Fields are the columns a transition derives. Nil means "leave as is".
type Fields struct {
	IsLocked         *bool
	ReviewDate       *time.Time
	TestingStartedAt *time.Time
	ClosedAt         *time.Time
}

// Decision is an accepted transition.
type Decision struct {
	From   Status
	To     Status
	Fields Fields
}

// LocksAd reports whether the decision starts a testing lock.
func (d Decision) LocksAd() bool {
	return d.Fields.IsLocked != nil && *d.Fields.IsLocked
}

// Decide checks a requested transition against the lifecycle rules and
// returns the fields it implies. A rejection is a *domain.DomainError with
// code LOCKED or VALIDATION_ERROR. Callers short-circuit same-status requests
// before calling Decide.
func Decide(current Snapshot, target Status, now time.Time) (Decision, error) {
	if !target.Valid() {
		return Decision{}, domain.NewValidationError(fmt.Sprintf("invalid status %q", target))
	}

	if current.LockActive(now) {
		return Decision{}, domain.NewLockedError(fmt.Sprintf(
			"ad is locked in testing until %s", current.ReviewDate.UTC().Format(time.RFC3339)))
	}

	if (target == StatusProduction || target == StatusTesting) && strings.TrimSpace(current.Hypothesis) == "" {
		return Decision{}, domain.NewValidationError(
			fmt.Sprintf("a hypothesis is required before moving to %s", target))
	}

	d := Decision{From: current.Status, To: target}

	if target == StatusTesting {
		started := now
		review := now.Add(time.Duration(current.EffectiveLockDays()) * 24 * time.Hour)
		locked := true
		d.Fields.TestingStartedAt = &started
		d.Fields.ReviewDate = &review
		d.Fields.IsLocked = &locked
	}

	if current.Status == StatusTesting && target != StatusTesting {
		unlocked := false
		d.Fields.IsLocked = &unlocked
	}

	if target == StatusCompleted {
		closed := now
		d.Fields.ClosedAt = &closed
	}

	return d, nil
}
