package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AttemptsChecked     *prometheus.CounterVec
	AttemptsDenied      *prometheus.CounterVec
	FailuresRecorded    *prometheus.CounterVec
	LockoutsTriggered   *prometheus.CounterVec
	SuccessesRecorded   *prometheus.CounterVec
	StorageErrors       *prometheus.CounterVec
	DegradedDecisions   *prometheus.CounterVec
	OperationLatency    *prometheus.HistogramVec
	CompactionRuns      *prometheus.CounterVec
	CompactionDeleted   prometheus.Counter
	CompactionDuration  prometheus.Histogram
	BreakerStateChanges *prometheus.CounterVec
}

// New registers the lockout metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics with reg. Tests pass a fresh registry
// so repeated construction does not panic on duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AttemptsChecked: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authguard_lockout_attempts_checked_total",
			Help: "Admissibility checks by operation type",
		}, []string{"operation"}),
		AttemptsDenied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authguard_lockout_attempts_denied_total",
			Help: "Admissibility checks answered with a lock",
		}, []string{"operation"}),
		FailuresRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authguard_lockout_failures_recorded_total",
			Help: "Failed credential attempts recorded in the ledger",
		}, []string{"operation"}),
		LockoutsTriggered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authguard_lockout_lockouts_total",
			Help: "Locks applied after the failure threshold was reached",
		}, []string{"operation"}),
		SuccessesRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authguard_lockout_successes_recorded_total",
			Help: "Successful credential attempts that cleared a ledger record",
		}, []string{"operation"}),
		StorageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authguard_lockout_storage_errors_total",
			Help: "Ledger operations that failed with a storage error",
		}, []string{"op"}),
		DegradedDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authguard_lockout_degraded_decisions_total",
			Help: "Decisions taken without the ledger, by fail mode",
		}, []string{"mode"}),
		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authguard_lockout_operation_duration_seconds",
			Help:    "Latency of lockout service operations",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"op"}),
		CompactionRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authguard_lockout_compaction_runs_total",
			Help: "Total number of compaction runs",
		}, []string{"status"}),
		CompactionDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "authguard_lockout_compaction_deleted_total",
			Help: "Ledger records removed by compaction",
		}),
		CompactionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name: "authguard_lockout_compaction_duration_seconds",
			Help: "Duration of compaction runs in seconds",
		}),
		BreakerStateChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authguard_lockout_ledger_breaker_transitions_total",
			Help: "Ledger circuit breaker state transitions",
		}, []string{"to"}),
	}
}

func (m *Metrics) IncrementChecked(op string)       { m.AttemptsChecked.WithLabelValues(op).Inc() }
func (m *Metrics) IncrementDenied(op string)        { m.AttemptsDenied.WithLabelValues(op).Inc() }
func (m *Metrics) IncrementFailures(op string)      { m.FailuresRecorded.WithLabelValues(op).Inc() }
func (m *Metrics) IncrementLockouts(op string)      { m.LockoutsTriggered.WithLabelValues(op).Inc() }
func (m *Metrics) IncrementSuccesses(op string)     { m.SuccessesRecorded.WithLabelValues(op).Inc() }
func (m *Metrics) IncrementStorageErrors(op string) { m.StorageErrors.WithLabelValues(op).Inc() }
func (m *Metrics) IncrementDegraded(mode string)    { m.DegradedDecisions.WithLabelValues(mode).Inc() }

func (m *Metrics) ObserveLatency(op string, start time.Time) {
	m.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementCompactionRuns(status string) {
	m.CompactionRuns.WithLabelValues(status).Inc()
}

func (m *Metrics) AddCompactionDeleted(count int) {
	m.CompactionDeleted.Add(float64(count))
}

func (m *Metrics) ObserveCompactionDuration(durationSeconds float64) {
	m.CompactionDuration.Observe(durationSeconds)
}

func (m *Metrics) IncrementBreakerTransition(to string) {
	m.BreakerStateChanges.WithLabelValues(to).Inc()
}
