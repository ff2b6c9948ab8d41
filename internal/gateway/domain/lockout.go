package domain

import "time"

// LockoutState counts consecutive failed second-factor attempts for one
// identity. TOTP and backup-code failures share the counter.
type LockoutState struct {
	FailedAttempts int
	LockedUntil    *time.Time
	LastFailedAt   time.Time
}

// LockoutPolicy is the threshold and penalty.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// DefaultLockoutPolicy locks for 15 minutes after 5 failures.
var DefaultLockoutPolicy = LockoutPolicy{Threshold: 5, Duration: 15 * time.Minute}

// Locked reports whether s blocks verification at now. A lock is active up to
// but not including LockedUntil.
func (s LockoutState) Locked(now time.Time) bool {
	return s.LockedUntil != nil && now.Before(*s.LockedUntil)
}

// Current returns s as seen at now: an expired lock resets to the zero state.
// Expiry is only ever evaluated here, lazily, never by a timer.
func (s LockoutState) Current(now time.Time) LockoutState {
	if s.LockedUntil != nil && !now.Before(*s.LockedUntil) {
		return LockoutState{}
	}
	return s
}

// Current is s as seen at now under p. Besides lock expiry, a counter that
// never reached the threshold is forgotten once the last failure is a full
// lock duration old: failures only add up while they come in a run.
func (p LockoutPolicy) Current(s LockoutState, now time.Time) LockoutState {
	s = s.Current(now)
	if s.LockedUntil == nil && !s.LastFailedAt.IsZero() && now.Sub(s.LastFailedAt) >= p.Duration {
		return LockoutState{}
	}
	return s
}

// Fail records one failed attempt at now and returns the new state.
func (p LockoutPolicy) Fail(s LockoutState, now time.Time) LockoutState {
	s = p.Current(s, now)
	s.FailedAttempts++
	s.LastFailedAt = now
	if s.FailedAttempts >= p.Threshold {
		until := now.Add(p.Duration)
		s.LockedUntil = &until
	}
	return s
}

// Remaining is the countdown shown to a locked-out user. It is zero once
// lockedUntil has passed or when there is no lock.
func Remaining(now time.Time, lockedUntil *time.Time) time.Duration {
	if lockedUntil == nil {
		return 0
	}
	if d := lockedUntil.Sub(now); d > 0 {
		return d
	}
	return 0
}
