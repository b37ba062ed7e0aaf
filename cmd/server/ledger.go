package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"authguard/internal/lockout/metrics"
	"authguard/internal/lockout/ports"
	"authguard/internal/lockout/store/ledger"
	"authguard/internal/platform/config"
	"authguard/internal/platform/database"
	"authguard/internal/platform/health"
	"authguard/internal/platform/redis"
	"authguard/pkg/platform/circuit"
)

// ledgerDeps holds the selected ledger and the connections behind it.
type ledgerDeps struct {
	ledger ports.Ledger
	db     *database.Pool
	redis  *redis.Client
}

func (d *ledgerDeps) close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	_ = d.db.Close()
}

// buildLedger opens the configured backend. Networked backends sit behind a
// circuit breaker so an outage fails fast instead of stacking timeouts.
// A Postgres pool is also opened for the audit sink when DATABASE_URL is set.
func buildLedger(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer, m *metrics.Metrics, h *health.Handler) (*ledgerDeps, error) {
	deps := &ledgerDeps{}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	deps.db = db
	if db != nil {
		h.RegisterCheck("postgres", db.Health)
		if err := db.RegisterMetrics(reg); err != nil {
			deps.close()
			return nil, fmt.Errorf("register database metrics: %w", err)
		}
	}

	var inner ports.Ledger
	switch cfg.LedgerBackend {
	case "memory":
		log.Warn("using in-memory attempt ledger; counts are per process and lost on restart")
		deps.ledger = ledger.NewInMemory()
		return deps, nil
	case "postgres":
		if db == nil {
			deps.close()
			return nil, fmt.Errorf("LEDGER_BACKEND=postgres requires DATABASE_URL")
		}
		inner = ledger.NewPostgres(db.DB())
	case "redis":
		client, err := redis.New(ctx, cfg.Redis, redis.NewPoolMetrics(reg))
		if err != nil {
			deps.close()
			return nil, err
		}
		if client == nil {
			deps.close()
			return nil, fmt.Errorf("LEDGER_BACKEND=redis requires REDIS_URL")
		}
		deps.redis = client
		h.RegisterCheck("redis", client.Health)
		inner = ledger.NewRedis(client.Client, cfg.Redis.Retention)
	default:
		deps.close()
		return nil, fmt.Errorf("unknown LEDGER_BACKEND %q", cfg.LedgerBackend)
	}

	breaker := circuit.New("attempt_ledger_"+cfg.LedgerBackend,
		circuit.WithFailureThreshold(cfg.Breaker.FailureThreshold),
		circuit.WithCooldown(cfg.Breaker.Cooldown),
	)
	deps.ledger = ledger.NewBreakerLedger(inner, breaker,
		ledger.WithBreakerLogger(log),
		ledger.WithBreakerMetrics(m),
	)
	return deps, nil
}
