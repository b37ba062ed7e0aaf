package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"authguard/internal/lockout/models"
	"authguard/internal/lockout/service"
	"authguard/pkg/platform/httputil"
	"authguard/pkg/platform/validation"
	"authguard/pkg/requestcontext"
)

// Guard resolves lockout decisions with the configured fail mode applied.
type Guard interface {
	Check(ctx context.Context, identity string, op models.OperationType) (service.Decision, error)
	Failure(ctx context.Context, identity string, op models.OperationType) (service.Decision, error)
	Success(ctx context.Context, identity string, op models.OperationType) (service.Decision, error)
}

type Handler struct {
	guard             Guard
	discloseRemaining bool
	logger            *slog.Logger
}

func New(guard Guard, discloseRemaining bool, logger *slog.Logger) *Handler {
	return &Handler{
		guard:             guard,
		discloseRemaining: discloseRemaining,
		logger:            logger,
	}
}

// Register mounts the internal attempt RPCs. They are called by the
// credential-checking component, never by end users.
func (h *Handler) Register(r chi.Router) {
	r.Post("/internal/auth-attempts/check", h.HandleCheck)
	r.Post("/internal/auth-attempts/failure", h.HandleFailure)
	r.Post("/internal/auth-attempts/success", h.HandleSuccess)
}

// HandleCheck implements POST /internal/auth-attempts/check.
// Input: { "identity": "a@x.com", "operation": "sign_in" }
// Output: { "allowed": true, "remaining_attempts": 4 }
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "check", h.guard.Check)
}

// HandleFailure implements POST /internal/auth-attempts/failure.
// The response is the verdict after the failure was counted.
func (h *Handler) HandleFailure(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "failure", h.guard.Failure)
}

// HandleSuccess implements POST /internal/auth-attempts/success.
// Output: 204 No Content
func (h *Handler) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, op, ok := h.decode(w, r)
	if !ok {
		return
	}

	d, err := h.guard.Success(ctx, req.Identity, op)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to record success",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	if !d.Degraded {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeDecision(w, d)
}

type guardCall func(ctx context.Context, identity string, op models.OperationType) (service.Decision, error)

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, call string, fn guardCall) {
	ctx := r.Context()
	req, op, ok := h.decode(w, r)
	if !ok {
		return
	}

	d, err := fn(ctx, req.Identity, op)
	if err != nil {
		h.logger.WarnContext(ctx, "attempt call failed",
			"call", call,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	h.writeDecision(w, d)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*models.AttemptRequest, models.OperationType, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, validation.MaxBodySize)

	req, ok := httputil.DecodeAndPrepare[models.AttemptRequest](w, r, h.logger)
	if !ok {
		return nil, "", false
	}
	return req, models.OperationType(req.Operation), true
}

func (h *Handler) writeDecision(w http.ResponseWriter, d service.Decision) {
	switch {
	case d.Degraded && !d.Allowed():
		// Fail closed: the ledger could not be read, so there is no lock to report.
		httputil.WriteJSON(w, http.StatusServiceUnavailable, &models.VerdictResponse{Allowed: false, Degraded: true})
	case d.Verdict.IsLocked():
		resp := models.ToResponse(d.Verdict, h.discloseRemaining, false)
		w.Header().Set("Retry-After", strconv.Itoa(*resp.RetryAfterSeconds))
		httputil.WriteJSON(w, http.StatusTooManyRequests, resp)
	default:
		httputil.WriteJSON(w, http.StatusOK, models.ToResponse(d.Verdict, h.discloseRemaining, d.Degraded))
	}
}
