package service

import (
	"context"
	"log/slog"

	"authguard/internal/lockout/config"
	"authguard/internal/lockout/metrics"
	"authguard/internal/lockout/models"
	"authguard/internal/lockout/observability"
	dErrors "authguard/pkg/domain-errors"
	"authguard/pkg/platform/audit"
	"authguard/pkg/platform/privacy"
)

// Limiter is the service surface the guard resolves.
type Limiter interface {
	CheckAdmissible(ctx context.Context, identity string, op models.OperationType) (models.Verdict, error)
	RecordFailure(ctx context.Context, identity string, op models.OperationType) (models.Verdict, error)
	RecordSuccess(ctx context.Context, identity string, op models.OperationType) error
}

// Decision is a verdict after the fail mode has been applied.
// Degraded is set when the ledger could not be consulted.
type Decision struct {
	Verdict  models.Verdict
	Degraded bool
	Err      error
}

func (d Decision) Allowed() bool { return d.Verdict.IsAllowed() }

// Guard applies an explicit fail mode to RateLimiterUnavailable errors.
// Fail closed denies the attempt; fail open allows it and marks it degraded.
// Any other error, including InvalidKey, is returned unchanged.
type Guard struct {
	limiter Limiter
	mode    config.FailMode
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   observability.AuditPublisher
}

type GuardOption func(*Guard)

func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) { g.logger = logger }
}

func WithGuardMetrics(m *metrics.Metrics) GuardOption {
	return func(g *Guard) { g.metrics = m }
}

// WithGuardAuditPublisher forwards the auth_ledger_degraded audit event that
// every degraded decision produces.
func WithGuardAuditPublisher(publisher observability.AuditPublisher) GuardOption {
	return func(g *Guard) { g.audit = publisher }
}

func NewGuard(limiter Limiter, mode config.FailMode, opts ...GuardOption) *Guard {
	g := &Guard{limiter: limiter, mode: mode}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) Mode() config.FailMode {
	return g.mode
}

func (g *Guard) Check(ctx context.Context, identity string, op models.OperationType) (Decision, error) {
	v, err := g.limiter.CheckAdmissible(ctx, identity, op)
	return g.resolve(ctx, identity, op, v, err, "check")
}

func (g *Guard) Failure(ctx context.Context, identity string, op models.OperationType) (Decision, error) {
	v, err := g.limiter.RecordFailure(ctx, identity, op)
	return g.resolve(ctx, identity, op, v, err, "failure")
}

// Success clears the key. A ledger outage resolves through the fail mode like any other call.
func (g *Guard) Success(ctx context.Context, identity string, op models.OperationType) (Decision, error) {
	err := g.limiter.RecordSuccess(ctx, identity, op)
	return g.resolve(ctx, identity, op, models.Allowed(0), err, "success")
}

func (g *Guard) resolve(ctx context.Context, identity string, op models.OperationType, v models.Verdict, err error, call string) (Decision, error) {
	if err == nil {
		return Decision{Verdict: v}, nil
	}
	if !dErrors.HasCode(err, dErrors.CodeRateLimiterUnavailable) {
		return Decision{}, err
	}
	if g.metrics != nil {
		g.metrics.IncrementDegraded(string(g.mode))
	}
	if g.logger != nil {
		g.logger.WarnContext(ctx, "rate limiter unavailable, applying fail mode",
			"fail_mode", string(g.mode),
			"call", call,
			"error", err,
		)
	}

	d := Decision{Verdict: models.Verdict{Status: models.VerdictLocked}, Degraded: true, Err: err}
	decision := audit.DecisionDenied
	if g.mode == config.FailOpen {
		d.Verdict = models.Allowed(0)
		decision = audit.DecisionDegraded
	}
	observability.LogAudit(ctx, g.logger, g.audit, string(audit.EventLedgerDegraded),
		"subject", privacy.FingerprintIdentity(models.NormalizeIdentity(identity)),
		"operation", op.String(),
		"decision", decision,
		"reason", call,
	)
	return d, nil
}
