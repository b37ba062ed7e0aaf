package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is emitted from domain logic to capture security-relevant actions.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID           uuid.UUID  `json:"id"`
	Timestamp    time.Time  `json:"timestamp"`
	Action       string     `json:"action"`
	Subject      string     `json:"subject"` // pseudonymous identity fingerprint, never the raw identity
	Operation    string     `json:"operation,omitempty"`
	Decision     string     `json:"decision,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	FailureCount int        `json:"failure_count,omitempty"`
	LockedUntil  *time.Time `json:"locked_until,omitempty"`
	RequestID    string     `json:"request_id,omitempty"`
}

// Store persists audit events. Implementations must be append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
}

type AuditEvent string

const (
	EventAttemptFailed    AuditEvent = "auth_attempt_failed"
	EventAttemptDenied    AuditEvent = "auth_attempt_denied"
	EventLockoutTriggered AuditEvent = "auth_lockout_triggered"
	EventLockoutCleared   AuditEvent = "auth_lockout_cleared"
	EventLedgerDegraded   AuditEvent = "auth_ledger_degraded"
)

// Decision values recorded on events.
const (
	DecisionAllowed  = "allowed"
	DecisionDenied   = "denied"
	DecisionDegraded = "degraded"
)

// Normalize fills the fields a sink needs but callers usually leave empty.
func (e *Event) Normalize() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
}
