package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"authguard/internal/lockout/handler"
	"authguard/internal/platform/config"
	"authguard/internal/platform/health"
	request "authguard/pkg/platform/middleware/request"
	"authguard/pkg/platform/validation"
)

type registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// newRouter mounts probes, metrics and the internal attempt RPCs. reg must also
// be a Gatherer so /metrics exposes what was registered on it.
func newRouter(cfg config.Server, log *slog.Logger, guard handler.Guard, disclose bool, h *health.Handler, reg registry) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.Logger(log, request.NewMetrics(reg)))

	h.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)
		if cfg.RequestTimeout > 0 {
			r.Use(request.Timeout(cfg.RequestTimeout))
		}
		handler.New(guard, disclose, log).Register(r)
	})
	return r
}
