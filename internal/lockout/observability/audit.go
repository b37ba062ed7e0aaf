// Package observability turns lockout decisions into audit log lines and
// audit events.
package observability

import (
	"context"
	"log/slog"

	"authguard/pkg/platform/audit"
	"authguard/pkg/requestcontext"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit writes event as an audit-typed log line and forwards it to
// publisher. Either sink may be nil. attrs are slog-style key/value pairs;
// "subject" must already be a fingerprint.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event string, attrs ...any) {
	reqID := requestcontext.RequestID(ctx)
	if reqID != "" {
		attrs = append(attrs, "request_id", reqID)
	}
	if logger != nil {
		logger.InfoContext(ctx, event, append(attrs, "event", event, "log_type", "audit")...)
	}
	if publisher == nil {
		return
	}

	e := toEvent(event, attrs)
	e.Timestamp = requestcontext.Now(ctx)
	e.RequestID = reqID
	if err := publisher.Emit(ctx, e); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}

// toEvent defaults the decision to denied when attrs carry none.
func toEvent(action string, attrs []any) audit.Event {
	e := audit.Event{
		Action:       action,
		Subject:      audit.ExtractString(attrs, "subject"),
		Operation:    audit.ExtractString(attrs, "operation"),
		Decision:     audit.ExtractString(attrs, "decision"),
		Reason:       audit.ExtractString(attrs, "reason"),
		FailureCount: audit.ExtractInt(attrs, "failure_count"),
		LockedUntil:  extractTime(attrs, "locked_until"),
	}
	if e.Decision == "" {
		e.Decision = audit.DecisionDenied
	}
	return e
}
