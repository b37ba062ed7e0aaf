package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLiveness(t *testing.T) {
	rec := serve(New("test"), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness(t *testing.T) {
	h := New("test")
	h.RegisterCheck("ledger", func(context.Context) error { return nil })

	rec := serve(h, "/health/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	h.RegisterCheck("audit", func(context.Context) error { return errors.New("dial tcp 10.1.1.1:9092: refused") })
	rec = serve(h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, map[string]string{"ledger": "up", "audit": "down"}, body.Checks)
	assert.NotContains(t, rec.Body.String(), "10.1.1.1")
}

func TestReadinessCheckGetsDeadline(t *testing.T) {
	h := New("test")
	var hadDeadline bool
	h.RegisterCheck("ledger", func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})
	serve(h, "/health/ready")
	assert.True(t, hadDeadline)
}

func TestStatus(t *testing.T) {
	rec := serve(New("staging"), "/health")
	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "staging", body.Environment)
}

func TestReadinessRunsChecksConcurrently(t *testing.T) {
	h := New("test")
	h.checkTimeout = 500 * time.Millisecond

	var arrived sync.WaitGroup
	arrived.Add(2)
	both := make(chan struct{})
	go func() {
		arrived.Wait()
		close(both)
	}()
	for _, name := range []string{"postgres", "redis"} {
		h.RegisterCheck(name, func(ctx context.Context) error {
			arrived.Done()
			select {
			case <-both:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	rec := serve(h, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code, "a serial probe would time out waiting for the other check")
}
