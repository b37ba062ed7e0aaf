// Package models holds the attempt ledger's value types: keys, records, and verdicts.
package models

import (
	"strings"
	"time"

	dErrors "authguard/pkg/domain-errors"
	"authguard/pkg/platform/validation"
)

// OperationType is the category of credential action whose attempts are counted.
type OperationType string

const (
	OperationSignIn            OperationType = "sign_in"
	OperationSignUp            OperationType = "sign_up"
	OperationPasswordReset     OperationType = "password_reset"
	OperationEmailVerification OperationType = "email_verification"
	OperationMFAChallenge      OperationType = "mfa_challenge"
)

// OperationTypes lists every recognised operation type.
func OperationTypes() []OperationType {
	return []OperationType{
		OperationSignIn,
		OperationSignUp,
		OperationPasswordReset,
		OperationEmailVerification,
		OperationMFAChallenge,
	}
}

func (o OperationType) IsValid() bool {
	switch o {
	case OperationSignIn, OperationSignUp, OperationPasswordReset,
		OperationEmailVerification, OperationMFAChallenge:
		return true
	}
	return false
}

func (o OperationType) String() string {
	return string(o)
}

// ParseOperationType validates a caller-supplied operation type.
// Unknown values are rejected, never coerced.
func ParseOperationType(s string) (OperationType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidKey, "operation type is required")
	}
	if len(s) > validation.MaxOperationLength {
		return "", dErrors.New(dErrors.CodeInvalidKey, "unknown operation type")
	}
	op := OperationType(s)
	if !op.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidKey, "unknown operation type")
	}
	return op, nil
}

// ErrInvalidKey matches any key validation failure via errors.Is.
var ErrInvalidKey = &dErrors.Error{Code: dErrors.CodeInvalidKey}

// AttemptKey identifies one ledger record. The zero value is invalid; build keys with NewAttemptKey.
type AttemptKey struct {
	identity  string
	operation OperationType
}

// NewAttemptKey normalizes identity (trimmed, lower-cased) and validates both parts.
func NewAttemptKey(identity string, operation OperationType) (AttemptKey, error) {
	normalized := NormalizeIdentity(identity)
	if normalized == "" {
		return AttemptKey{}, dErrors.New(dErrors.CodeInvalidKey, "identity is required")
	}
	if len(normalized) > validation.MaxIdentityLength {
		return AttemptKey{}, dErrors.New(dErrors.CodeInvalidKey, "identity is too long")
	}
	if !operation.IsValid() {
		return AttemptKey{}, dErrors.New(dErrors.CodeInvalidKey, "unknown operation type")
	}
	return AttemptKey{identity: normalized, operation: operation}, nil
}

// NormalizeIdentity makes identities case-insensitive and whitespace-tolerant.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

func (k AttemptKey) Identity() string         { return k.identity }
func (k AttemptKey) Operation() OperationType { return k.operation }
func (k AttemptKey) IsZero() bool             { return k.identity == "" }

// AttemptRecord is the mutable lockout state for one AttemptKey.
type AttemptRecord struct {
	Identity       string        `json:"identity"`
	Operation      OperationType `json:"operation_type"`
	FailureCount   int           `json:"failure_count"`
	FirstFailureAt *time.Time    `json:"first_failure_at,omitempty"`
	LockedUntil    *time.Time    `json:"locked_until,omitempty"`
	LastAttemptAt  time.Time     `json:"last_attempt_at"`
}

// IsLockedAt reports whether the record holds an unexpired lock at now.
func (r *AttemptRecord) IsLockedAt(now time.Time) bool {
	return r != nil && r.LockedUntil != nil && now.Before(*r.LockedUntil)
}

// LockExpiredAt reports whether the record carries a lock that has lapsed at now.
func (r *AttemptRecord) LockExpiredAt(now time.Time) bool {
	return r != nil && r.LockedUntil != nil && !now.Before(*r.LockedUntil)
}

// Reset returns the record to the zero state, keeping its key.
func (r *AttemptRecord) Reset() {
	r.FailureCount = 0
	r.FirstFailureAt = nil
	r.LockedUntil = nil
}

// RecordFailure applies one failed attempt at now. A lapsed lock is reconciled
// first, so the failure starts a fresh count.
func (r *AttemptRecord) RecordFailure(now time.Time) {
	if r.LockExpiredAt(now) {
		r.Reset()
	}
	if r.FailureCount == 0 {
		first := now
		r.FirstFailureAt = &first
	}
	r.FailureCount++
	r.LastAttemptAt = now
}

// Lock sets lockedUntil unless the record is clean or already locked at now.
// Returns true when the lock was applied.
func (r *AttemptRecord) Lock(until, now time.Time) bool {
	if r.FailureCount == 0 || r.IsLockedAt(now) {
		return false
	}
	u := until
	r.LockedUntil = &u
	return true
}

// Clone returns a deep copy safe to hand out of a store.
func (r *AttemptRecord) Clone() *AttemptRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.FirstFailureAt != nil {
		t := *r.FirstFailureAt
		out.FirstFailureAt = &t
	}
	if r.LockedUntil != nil {
		t := *r.LockedUntil
		out.LockedUntil = &t
	}
	return &out
}

// VerdictStatus is the outcome of a policy evaluation.
type VerdictStatus string

const (
	VerdictAllowed VerdictStatus = "allowed"
	VerdictLocked  VerdictStatus = "locked"
)

// Verdict is the structured admissibility decision returned to callers.
// RemainingAttempts is meaningful only when Allowed; RetryAfter and LockedUntil only when Locked.
type Verdict struct {
	Status            VerdictStatus `json:"status"`
	RemainingAttempts int           `json:"remaining_attempts"`
	RetryAfter        time.Duration `json:"retry_after"`
	LockedUntil       *time.Time    `json:"locked_until,omitempty"`
}

func Allowed(remaining int) Verdict {
	return Verdict{Status: VerdictAllowed, RemainingAttempts: remaining}
}

func Locked(until time.Time, now time.Time) Verdict {
	u := until
	return Verdict{Status: VerdictLocked, RetryAfter: until.Sub(now), LockedUntil: &u}
}

func (v Verdict) IsAllowed() bool { return v.Status == VerdictAllowed }
func (v Verdict) IsLocked() bool  { return v.Status == VerdictLocked }

// RetryAfterSeconds rounds RetryAfter up to whole seconds for Retry-After headers.
func (v Verdict) RetryAfterSeconds() int {
	if v.RetryAfter <= 0 {
		return 0
	}
	secs := v.RetryAfter / time.Second
	if v.RetryAfter%time.Second != 0 {
		secs++
	}
	return int(secs)
}
