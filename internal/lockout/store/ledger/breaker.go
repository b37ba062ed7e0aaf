package ledger

import (
	"context"
	"log/slog"
	"time"

	"authguard/internal/lockout/metrics"
	"authguard/internal/lockout/models"
	"authguard/internal/lockout/ports"
	dErrors "authguard/pkg/domain-errors"
	"authguard/pkg/platform/circuit"
)

// BreakerLedger fails fast with StorageUnavailable while the wrapped ledger is
// known to be down. It never answers from a cache or fabricates a record.
type BreakerLedger struct {
	inner   ports.Ledger
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type BreakerOption func(*BreakerLedger)

func WithBreakerLogger(logger *slog.Logger) BreakerOption {
	return func(b *BreakerLedger) { b.logger = logger }
}

func WithBreakerMetrics(m *metrics.Metrics) BreakerOption {
	return func(b *BreakerLedger) { b.metrics = m }
}

// WithBreakerClock overrides the wall clock used for cooldown tracking.
func WithBreakerClock(now func() time.Time) BreakerOption {
	return func(b *BreakerLedger) { b.now = now }
}

func NewBreakerLedger(inner ports.Ledger, breaker *circuit.Breaker, opts ...BreakerOption) *BreakerLedger {
	b := &BreakerLedger{inner: inner, breaker: breaker, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *BreakerLedger) allow(op string) error {
	if b.breaker.Allow(b.now()) {
		return nil
	}
	return dErrors.New(dErrors.CodeStorageUnavailable, "ledger circuit open during "+op)
}

// observe feeds the outcome of a backend call into the breaker. A caller
// cancelling its own context says nothing about backend health.
func (b *BreakerLedger) observe(ctx context.Context, err error) {
	if err == nil {
		if change := b.breaker.RecordSuccess(); change.Closed {
			b.transition(ctx, circuit.StateClosed)
		}
		return
	}
	if ctx.Err() != nil && b.breaker.State() != circuit.StateHalfOpen {
		return
	}
	if change := b.breaker.RecordFailure(b.now()); change.Opened {
		b.transition(ctx, circuit.StateOpen)
	}
}

func (b *BreakerLedger) transition(ctx context.Context, to circuit.State) {
	if b.metrics != nil {
		b.metrics.IncrementBreakerTransition(to.String())
	}
	if b.logger != nil {
		b.logger.WarnContext(ctx, "ledger circuit breaker state changed",
			"breaker", b.breaker.Name(),
			"state", to.String(),
		)
	}
}

func (b *BreakerLedger) Get(ctx context.Context, key models.AttemptKey) (*models.AttemptRecord, error) {
	if err := b.allow("get"); err != nil {
		return nil, err
	}
	rec, err := b.inner.Get(ctx, key)
	b.observe(ctx, err)
	return rec, err
}

func (b *BreakerLedger) IncrementFailure(ctx context.Context, key models.AttemptKey, now time.Time) (*models.AttemptRecord, error) {
	if err := b.allow("increment"); err != nil {
		return nil, err
	}
	rec, err := b.inner.IncrementFailure(ctx, key, now)
	b.observe(ctx, err)
	return rec, err
}

func (b *BreakerLedger) Clear(ctx context.Context, key models.AttemptKey) error {
	if err := b.allow("clear"); err != nil {
		return err
	}
	err := b.inner.Clear(ctx, key)
	b.observe(ctx, err)
	return err
}

func (b *BreakerLedger) ApplyLock(ctx context.Context, key models.AttemptKey, until, now time.Time) (*models.AttemptRecord, bool, error) {
	if err := b.allow("lock"); err != nil {
		return nil, false, err
	}
	rec, applied, err := b.inner.ApplyLock(ctx, key, until, now)
	b.observe(ctx, err)
	return rec, applied, err
}

func (b *BreakerLedger) CompactExpired(ctx context.Context, cutoff time.Time) (int, error) {
	if err := b.allow("compact"); err != nil {
		return 0, err
	}
	n, err := b.inner.CompactExpired(ctx, cutoff)
	b.observe(ctx, err)
	return n, err
}
