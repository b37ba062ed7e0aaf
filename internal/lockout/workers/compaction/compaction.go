package compaction

import (
	"context"
	"log/slog"
	"time"

	"authguard/internal/lockout/metrics"
	"authguard/pkg/platform/tracer"
)

// Result describes a single compaction run.
type Result struct {
	Cutoff         time.Time
	RecordsDeleted int
	Duration       time.Duration
}

// ExpiredRecordStore deletes ledger records whose lock ended before cutoff.
type ExpiredRecordStore interface {
	CompactExpired(ctx context.Context, cutoff time.Time) (int, error)
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithGrace sets how long an expired lock is kept before it becomes eligible for deletion.
func WithGrace(grace time.Duration) Option {
	return func(w *Worker) {
		if grace >= 0 {
			w.grace = grace
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(w *Worker) {
		if t != nil {
			w.tracer = t
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// Worker periodically removes expired lock records so the ledger does not grow without bound.
// Correctness never depends on it: reads treat expired locks as absent.
type Worker struct {
	store    ExpiredRecordStore
	logger   *slog.Logger
	interval time.Duration
	grace    time.Duration
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	now      func() time.Time
}

func New(store ExpiredRecordStore, opts ...Option) *Worker {
	w := &Worker{
		store:    store,
		logger:   slog.Default(),
		interval: 15 * time.Minute,
		grace:    24 * time.Hour,
		tracer:   tracer.NewNoop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := w.RunOnce(ctx)
			if err != nil {
				w.logger.ErrorContext(ctx, "attempt_ledger_compaction_failed", "error", err)
				continue
			}
			w.logger.InfoContext(ctx, "attempt_ledger_compaction_completed",
				"records_deleted", res.RecordsDeleted,
				"cutoff", res.Cutoff,
				"duration_ms", res.Duration.Milliseconds(),
			)

		case <-ctx.Done():
			w.logger.Info("attempt ledger compaction worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce deletes records whose lock expired more than grace ago.
func (w *Worker) RunOnce(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	cutoff := w.now().Add(-w.grace)

	ctx, span := w.tracer.Start(ctx, tracer.SpanCompaction)
	defer func() {
		span.End(err)
		w.record(res, err, time.Since(start))
	}()

	deleted, err := w.store.CompactExpired(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.Int(tracer.AttrRecordsDeleted, deleted))
	return &Result{Cutoff: cutoff, RecordsDeleted: deleted, Duration: time.Since(start)}, nil
}

func (w *Worker) record(res *Result, err error, d time.Duration) {
	if w.metrics == nil {
		return
	}
	w.metrics.ObserveCompactionDuration(d.Seconds())
	if err != nil {
		w.metrics.IncrementCompactionRuns("error")
		return
	}
	w.metrics.IncrementCompactionRuns("success")
	w.metrics.AddCompactionDeleted(res.RecordsDeleted)
}
