// Package policy decides admissibility from a ledger record. It performs no I/O.
package policy

import (
	"time"

	"authguard/internal/lockout/config"
	"authguard/internal/lockout/models"
)

// Evaluate returns the verdict for record at now.
//
// A lapsed lock evaluates as a clean record; the stale state is reconciled by
// the next write, never by a read. A record at or above the threshold without
// a lock (a crash between increment and lock) evaluates as allowed with zero
// remaining, so the next failure re-applies the lock.
func Evaluate(record *models.AttemptRecord, now time.Time, limits config.Limits) models.Verdict {
	if record == nil || record.FailureCount == 0 {
		return models.Allowed(limits.MaxAttempts)
	}
	if record.IsLockedAt(now) {
		return models.Locked(*record.LockedUntil, now)
	}
	if record.LockExpiredAt(now) {
		return models.Allowed(limits.MaxAttempts)
	}
	return models.Allowed(max(limits.MaxAttempts-record.FailureCount, 0))
}

// ShouldLock reports whether record has reached the threshold without an active lock.
func ShouldLock(record *models.AttemptRecord, now time.Time, limits config.Limits) bool {
	if record == nil {
		return false
	}
	return record.FailureCount >= limits.MaxAttempts && !record.IsLockedAt(now)
}

// LockUntil is the end of a lock triggered at now.
func LockUntil(now time.Time, limits config.Limits) time.Time {
	return now.Add(limits.LockoutDuration)
}
