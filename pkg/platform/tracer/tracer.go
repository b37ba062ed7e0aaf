// Package tracer keeps OpenTelemetry out of service code. Services depend on
// Tracer; main wires OTelTracer and tests use NoopTracer.
package tracer

import (
	"context"
	"time"
)

// Span is an in-flight span. End must be called exactly once; a non-nil err
// marks the span failed.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer starts spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start opens a span and returns a context carrying it.
	//
	//   ctx, span := tracer.Start(ctx, tracer.SpanRecordFailure,
	//       tracer.String(tracer.AttrOperation, "sign_in"),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a span key/value. Value should be a string, bool, int or
// int64; other types are dropped by OTelTracer.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute      { return Attribute{key, value} }
func Bool(key string, value bool) Attribute   { return Attribute{key, value} }
func Int(key string, value int) Attribute     { return Attribute{key, value} }
func Int64(key string, value int64) Attribute { return Attribute{key, value} }

// Duration is recorded as whole milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{key, value.Milliseconds()}
}

// Span names used by the lockout module.
const (
	SpanCheckAdmissible = "lockout.check_admissible"
	SpanRecordFailure   = "lockout.record_failure"
	SpanRecordSuccess   = "lockout.record_success"
	SpanCompaction      = "lockout.compaction"
)

// Attribute keys used by the lockout module.
const (
	AttrSubject           = "lockout.subject"
	AttrOperation         = "lockout.operation"
	AttrAllowed           = "lockout.allowed"
	AttrRemainingAttempts = "lockout.remaining_attempts"
	AttrFailureCount      = "lockout.failure_count"
	AttrRetryAfterMs      = "lockout.retry_after_ms"
	AttrRecordsDeleted    = "lockout.records_deleted"
)

// Event names used by the lockout module.
const (
	EventLockApplied = "lockout.lock_applied"
	EventLockCleared = "lockout.cleared"
)
