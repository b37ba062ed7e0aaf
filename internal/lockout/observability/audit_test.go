package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"authguard/pkg/platform/audit"
	"authguard/pkg/requestcontext"
)

type stubPublisher struct {
	events []audit.Event
	err    error
}

func (p *stubPublisher) Emit(_ context.Context, e audit.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

type AuditSuite struct {
	suite.Suite
	buf       *bytes.Buffer
	logger    *slog.Logger
	publisher *stubPublisher
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

func (s *AuditSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.logger = slog.New(slog.NewJSONHandler(s.buf, nil))
	s.publisher = &stubPublisher{}
}

func (s *AuditSuite) TestLogsAndEmits() {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	until := now.Add(15 * time.Minute)
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithTime(ctx, now)

	LogAudit(ctx, s.logger, s.publisher, string(audit.EventLockoutTriggered),
		"subject", "id_0102030405060708",
		"operation", "sign_in",
		"failure_count", 5,
		"locked_until", until,
	)

	var line map[string]any
	s.Require().NoError(json.Unmarshal(s.buf.Bytes(), &line))
	s.Equal("audit", line["log_type"])
	s.Equal("auth_lockout_triggered", line["event"])
	s.Equal("req-1", line["request_id"])

	s.Require().Len(s.publisher.events, 1)
	e := s.publisher.events[0]
	s.Equal("id_0102030405060708", e.Subject)
	s.Equal("sign_in", e.Operation)
	s.Equal(5, e.FailureCount)
	s.Equal(audit.DecisionDenied, e.Decision)
	s.Equal("req-1", e.RequestID)
	s.Equal(now, e.Timestamp)
	s.Require().NotNil(e.LockedUntil)
	s.Equal(until, *e.LockedUntil)
}

func (s *AuditSuite) TestExplicitDecision() {
	LogAudit(context.Background(), nil, s.publisher, string(audit.EventLockoutCleared),
		"subject", "id_x", "decision", audit.DecisionAllowed)
	s.Require().Len(s.publisher.events, 1)
	s.Equal(audit.DecisionAllowed, s.publisher.events[0].Decision)
}

func (s *AuditSuite) TestPublisherFailureIsLogged() {
	s.publisher.err = errors.New("sink down")
	LogAudit(context.Background(), s.logger, s.publisher, string(audit.EventAttemptFailed), "subject", "id_x")
	s.Contains(s.buf.String(), "failed to emit audit event")
}

func (s *AuditSuite) TestNilPublisherOnlyLogs() {
	LogAudit(context.Background(), s.logger, nil, string(audit.EventAttemptDenied), "subject", "id_x")
	s.Contains(s.buf.String(), "auth_attempt_denied")
}
