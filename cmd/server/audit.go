package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"authguard/internal/lockout/observability"
	"authguard/internal/platform/config"
	"authguard/internal/platform/health"
	"authguard/internal/platform/kafka"
	"authguard/pkg/platform/audit/publisher"
	auditkafka "authguard/pkg/platform/audit/store/kafka"
	auditpostgres "authguard/pkg/platform/audit/store/postgres"
)

type auditDeps struct {
	publisher observability.AuditPublisher
	closers   []func()
}

func (a *auditDeps) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildAuditSink picks where audit events go. "log" relies on the structured
// audit log lines alone and returns a nil publisher.
func buildAuditSink(ctx context.Context, cfg config.Server, deps *ledgerDeps, log *slog.Logger, h *health.Handler) (*auditDeps, error) {
	out := &auditDeps{}

	var opts []publisher.PublisherOption
	opts = append(opts, publisher.WithPublisherLogger(log))
	if cfg.Audit.Async {
		opts = append(opts, publisher.WithAsyncBuffer(cfg.Audit.BufferSize))
	}

	switch cfg.Audit.Sink {
	case "", "log":
		return out, nil
	case "postgres":
		if deps.db == nil {
			return nil, fmt.Errorf("AUDIT_SINK=postgres requires DATABASE_URL")
		}
		p := publisher.NewPublisher(auditpostgres.New(deps.db.DB()), opts...)
		out.publisher = p
		out.closers = append(out.closers, p.Close)
	case "kafka":
		pc := kafka.DefaultProducerConfig()
		pc.Brokers = cfg.Audit.KafkaBrokers
		client, err := kafka.NewClient(pc)
		if err != nil {
			return nil, err
		}
		ping := kafka.Ping(client)
		if err := ping(ctx); err != nil {
			log.Warn("kafka not reachable at startup; audit events will retry", "error", err)
		}
		h.RegisterCheck("kafka", ping)

		p := publisher.NewPublisher(auditkafka.New(client, cfg.Audit.KafkaTopic), opts...)
		out.publisher = p
		// Drain the publisher before the client goes away.
		out.closers = append(out.closers, func() { closeKafka(client) }, p.Close)
	default:
		return nil, fmt.Errorf("unknown AUDIT_SINK %q", cfg.Audit.Sink)
	}
	return out, nil
}

func closeKafka(client *kgo.Client) {
	client.Close()
}
