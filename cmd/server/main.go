package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	lockoutconfig "authguard/internal/lockout/config"
	"authguard/internal/lockout/metrics"
	"authguard/internal/lockout/models"
	"authguard/internal/lockout/service"
	"authguard/internal/lockout/workers/compaction"
	"authguard/internal/platform/config"
	"authguard/internal/platform/health"
	"authguard/internal/platform/logger"
	"authguard/pkg/platform/privacy"
	"authguard/pkg/platform/tracer"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in internal/lockout.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("authguard exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing authguard",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"ledger_backend", cfg.LedgerBackend,
		"fail_mode", cfg.Lockout.FailMode,
		"operations", operationsLogValue(),
	)

	if cfg.Audit.FingerprintKey != "" {
		privacy.SetFingerprintKey([]byte(cfg.Audit.FingerprintKey))
	} else {
		log.Warn("IDENTITY_FINGERPRINT_KEY not set; audit subjects use unkeyed fingerprints")
	}

	lockoutCfg, err := lockoutConfig(cfg.Lockout)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWithRegistry(reg)
	healthHandler := health.New(cfg.Environment)

	deps, err := buildLedger(ctx, cfg, log, reg, m, healthHandler)
	if err != nil {
		return err
	}
	defer deps.close()

	auditSink, err := buildAuditSink(ctx, cfg, deps, log, healthHandler)
	if err != nil {
		return err
	}
	defer auditSink.close()

	t := tracer.NewOTel(nil)
	svc, err := service.New(deps.ledger,
		service.WithConfig(lockoutCfg),
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithTracer(t),
		service.WithAuditPublisher(auditSink.publisher),
	)
	if err != nil {
		return fmt.Errorf("build lockout service: %w", err)
	}
	guard := service.NewGuard(svc, lockoutCfg.FailMode,
		service.WithGuardLogger(log),
		service.WithGuardMetrics(m),
		service.WithGuardAuditPublisher(auditSink.publisher),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, log, guard, lockoutCfg.DiscloseRemaining, healthHandler, reg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if lockoutCfg.CompactionInterval > 0 {
		worker := compaction.New(deps.ledger,
			compaction.WithLogger(log),
			compaction.WithInterval(lockoutCfg.CompactionInterval),
			compaction.WithGrace(lockoutCfg.CompactionGrace),
			compaction.WithMetrics(m),
			compaction.WithTracer(t),
		)
		g.Go(func() error {
			if err := worker.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if deps.redis != nil {
		g.Go(func() error {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					deps.redis.RecordPoolStats()
				case <-gctx.Done():
					return nil
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func lockoutConfig(env config.LockoutConfig) (*lockoutconfig.Config, error) {
	cfg := lockoutconfig.DefaultConfig()
	cfg.Default = lockoutconfig.Limits{
		MaxAttempts:     env.MaxAttempts,
		LockoutDuration: env.Duration,
	}
	mode, err := lockoutconfig.ParseFailMode(env.FailMode)
	if err != nil {
		return nil, err
	}
	cfg.FailMode = mode
	cfg.DiscloseRemaining = env.DiscloseRemaining
	cfg.CompactionInterval = env.CompactionInterval
	cfg.CompactionGrace = env.CompactionGrace

	overrides, err := lockoutconfig.ParseOverrides(env.Overrides)
	if err != nil {
		return nil, err
	}
	for op, l := range overrides {
		cfg.WithOverride(op, l)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// operationsLogValue lists the operations the engine accepts, for startup logs.
func operationsLogValue() []string {
	ops := models.OperationTypes()
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.String())
	}
	return out
}
