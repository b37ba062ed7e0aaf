// Package ports defines the interfaces the lockout service depends on.
package ports

import (
	"context"
	"time"

	"authguard/internal/lockout/models"
)

// Ledger stores attempt records keyed by (identity, operation type).
// Every mutation is durable before it returns. Failures to reach the backing
// store are reported with dErrors.CodeStorageUnavailable.
type Ledger interface {
	// Get returns the record for key, or nil when none exists.
	Get(ctx context.Context, key models.AttemptKey) (*models.AttemptRecord, error)

	// IncrementFailure atomically loads-or-creates the record and counts one failure at now.
	// A lock that has lapsed at now is cleared first so the failure starts a fresh count.
	IncrementFailure(ctx context.Context, key models.AttemptKey, now time.Time) (*models.AttemptRecord, error)

	// Clear resets key to the never-failed state. Clearing an absent key is a no-op.
	Clear(ctx context.Context, key models.AttemptKey) error

	// ApplyLock sets lockedUntil when the record has failures and no active lock at now.
	// It returns the resulting record (nil when the record no longer exists) and
	// whether this call set the lock. Backends may store until at a coarser
	// precision, so callers must rely on applied rather than comparing times.
	ApplyLock(ctx context.Context, key models.AttemptKey, until, now time.Time) (rec *models.AttemptRecord, applied bool, err error)

	// CompactExpired deletes records whose lock lapsed before cutoff and returns how many were removed.
	CompactExpired(ctx context.Context, cutoff time.Time) (int, error)
}
