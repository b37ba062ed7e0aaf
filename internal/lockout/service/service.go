// Package service orchestrates the attempt ledger and lockout policy for
// credential endpoints.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"authguard/internal/lockout/config"
	"authguard/internal/lockout/metrics"
	"authguard/internal/lockout/models"
	"authguard/internal/lockout/observability"
	"authguard/internal/lockout/policy"
	"authguard/internal/lockout/ports"
	dErrors "authguard/pkg/domain-errors"
	"authguard/pkg/platform/audit"
	"authguard/pkg/platform/privacy"
	"authguard/pkg/platform/tracer"
	"authguard/pkg/requestcontext"
)

// ErrRateLimiterUnavailable matches any ledger outage surfaced by the service.
var ErrRateLimiterUnavailable = &dErrors.Error{Code: dErrors.CodeRateLimiterUnavailable}

// Service decides whether an (identity, operation) pair may attempt a credential check.
// It holds no counts in memory; every decision reads the ledger.
type Service struct {
	ledger         ports.Ledger
	config         *config.Config
	logger         *slog.Logger
	auditPublisher observability.AuditPublisher
	metrics        *metrics.Metrics
	tracer         tracer.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher observability.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(ledger ports.Ledger, opts ...Option) (*Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("attempt ledger is required")
	}
	svc := &Service{
		ledger: ledger,
		config: config.DefaultConfig(),
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if err := svc.config.Validate(); err != nil {
		return nil, err
	}
	return svc, nil
}

// Config returns the configuration the service enforces.
func (s *Service) Config() *config.Config {
	return s.config
}

// CheckAdmissible reports whether identity may attempt op now. It never writes.
func (s *Service) CheckAdmissible(ctx context.Context, identity string, op models.OperationType) (verdict models.Verdict, err error) {
	key, err := models.NewAttemptKey(identity, op)
	if err != nil {
		return models.Verdict{}, err
	}
	start := time.Now()
	subject := privacy.FingerprintIdentity(key.Identity())
	ctx, span := s.tracer.Start(ctx, tracer.SpanCheckAdmissible,
		tracer.String(tracer.AttrSubject, subject),
		tracer.String(tracer.AttrOperation, op.String()),
	)
	defer func() {
		span.End(err)
		s.observeLatency("check", start)
	}()

	now := requestcontext.Now(ctx)
	limits := s.config.LimitsFor(op)

	record, err := s.ledger.Get(ctx, key)
	if err != nil {
		return models.Verdict{}, s.unavailable(ctx, err, "check", subject, op)
	}

	verdict = policy.Evaluate(record, now, limits)
	s.annotate(span, verdict)
	if s.metrics != nil {
		s.metrics.IncrementChecked(op.String())
	}
	if verdict.IsLocked() {
		if s.metrics != nil {
			s.metrics.IncrementDenied(op.String())
		}
		observability.LogAudit(ctx, s.logger, s.auditPublisher, string(audit.EventAttemptDenied),
			"subject", subject,
			"operation", op.String(),
			"decision", audit.DecisionDenied,
			"locked_until", verdict.LockedUntil,
		)
	}
	return verdict, nil
}

// RecordFailure counts a verified-invalid credential and returns the
// post-update verdict. The failure that reaches the threshold applies the lock
// and is itself reported as Locked.
func (s *Service) RecordFailure(ctx context.Context, identity string, op models.OperationType) (verdict models.Verdict, err error) {
	key, err := models.NewAttemptKey(identity, op)
	if err != nil {
		return models.Verdict{}, err
	}
	start := time.Now()
	subject := privacy.FingerprintIdentity(key.Identity())
	ctx, span := s.tracer.Start(ctx, tracer.SpanRecordFailure,
		tracer.String(tracer.AttrSubject, subject),
		tracer.String(tracer.AttrOperation, op.String()),
	)
	defer func() {
		span.End(err)
		s.observeLatency("failure", start)
	}()

	now := requestcontext.Now(ctx)
	limits := s.config.LimitsFor(op)

	record, err := s.ledger.IncrementFailure(ctx, key, now)
	if err != nil {
		return models.Verdict{}, s.unavailable(ctx, err, "increment", subject, op)
	}
	if s.metrics != nil {
		s.metrics.IncrementFailures(op.String())
	}
	span.SetAttributes(tracer.Int(tracer.AttrFailureCount, record.FailureCount))

	if policy.ShouldLock(record, now, limits) {
		until := policy.LockUntil(now, limits)
		locked, applied, err := s.ledger.ApplyLock(ctx, key, until, now)
		if err != nil {
			// The failure is already durable. The next failure re-applies the lock.
			return models.Verdict{}, s.unavailable(ctx, err, "lock", subject, op)
		}
		record = locked
		if applied && locked != nil {
			s.lockApplied(ctx, span, subject, op, locked)
		}
	}

	verdict = policy.Evaluate(record, now, limits)
	s.annotate(span, verdict)

	decision := audit.DecisionAllowed
	if verdict.IsLocked() {
		decision = audit.DecisionDenied
	}
	failureCount := 0
	if record != nil {
		failureCount = record.FailureCount
	}
	observability.LogAudit(ctx, s.logger, s.auditPublisher, string(audit.EventAttemptFailed),
		"subject", subject,
		"operation", op.String(),
		"decision", decision,
		"failure_count", failureCount,
	)
	return verdict, nil
}

// RecordSuccess clears the ledger for identity and op. Clearing a clean key is a no-op.
func (s *Service) RecordSuccess(ctx context.Context, identity string, op models.OperationType) (err error) {
	key, err := models.NewAttemptKey(identity, op)
	if err != nil {
		return err
	}
	start := time.Now()
	subject := privacy.FingerprintIdentity(key.Identity())
	ctx, span := s.tracer.Start(ctx, tracer.SpanRecordSuccess,
		tracer.String(tracer.AttrSubject, subject),
		tracer.String(tracer.AttrOperation, op.String()),
	)
	defer func() {
		span.End(err)
		s.observeLatency("success", start)
	}()

	if err = s.ledger.Clear(ctx, key); err != nil {
		return s.unavailable(ctx, err, "clear", subject, op)
	}
	span.AddEvent(tracer.EventLockCleared)
	if s.metrics != nil {
		s.metrics.IncrementSuccesses(op.String())
	}
	observability.LogAudit(ctx, s.logger, s.auditPublisher, string(audit.EventLockoutCleared),
		"subject", subject,
		"operation", op.String(),
		"decision", audit.DecisionAllowed,
	)
	return nil
}

func (s *Service) lockApplied(ctx context.Context, span tracer.Span, subject string, op models.OperationType, record *models.AttemptRecord) {
	span.AddEvent(tracer.EventLockApplied, tracer.Int(tracer.AttrFailureCount, record.FailureCount))
	if s.metrics != nil {
		s.metrics.IncrementLockouts(op.String())
	}
	observability.LogAudit(ctx, s.logger, s.auditPublisher, string(audit.EventLockoutTriggered),
		"subject", subject,
		"operation", op.String(),
		"decision", audit.DecisionDenied,
		"failure_count", record.FailureCount,
		"locked_until", *record.LockedUntil,
	)
}

// unavailable translates a ledger error into RateLimiterUnavailable. The
// original error stays on the chain for errors.Is.
func (s *Service) unavailable(ctx context.Context, err error, op, subject string, operation models.OperationType) error {
	if s.metrics != nil {
		s.metrics.IncrementStorageErrors(op)
	}
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "attempt ledger unavailable",
			"op", op,
			"subject", subject,
			"operation", operation.String(),
			"error", err,
		)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Translate(err, dErrors.CodeRateLimiterUnavailable, "rate limiter timed out")
	}
	return dErrors.Translate(err, dErrors.CodeRateLimiterUnavailable, "rate limiter unavailable")
}

func (s *Service) annotate(span tracer.Span, v models.Verdict) {
	span.SetAttributes(tracer.Bool(tracer.AttrAllowed, v.IsAllowed()))
	if v.IsLocked() {
		span.SetAttributes(tracer.Duration(tracer.AttrRetryAfterMs, v.RetryAfter))
		return
	}
	span.SetAttributes(tracer.Int(tracer.AttrRemainingAttempts, v.RemainingAttempts))
}

func (s *Service) observeLatency(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveLatency(op, start)
	}
}
