// Package postgres persists audit events to the audit_events table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	audit "authguard/pkg/platform/audit"
)

const eventColumns = `id, timestamp, action, subject, operation_type,
	decision, reason, failure_count, locked_until, request_id`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts event. Re-delivery of the same event ID is a no-op.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	event.Normalize()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO NOTHING`,
		event.ID, event.Timestamp, event.Action, event.Subject, event.Operation,
		event.Decision, event.Reason, event.FailureCount, event.LockedUntil, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event %s: %w", event.Action, err)
	}
	return nil
}

// ListBySubject returns events for one identity fingerprint, newest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	return s.list(ctx,
		`SELECT `+eventColumns+` FROM audit_events WHERE subject = $1 ORDER BY timestamp DESC`,
		subject)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return s.list(ctx,
		`SELECT `+eventColumns+` FROM audit_events ORDER BY timestamp DESC LIMIT $1`,
		clampLimit(limit))
}

// clampLimit keeps LIMIT inside int32 so the driver never wraps it negative.
func clampLimit(limit int) int {
	switch {
	case limit < 0:
		return 0
	case limit > math.MaxInt32:
		return math.MaxInt32
	}
	return limit
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e           audit.Event
			lockedUntil sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.Subject, &e.Operation,
			&e.Decision, &e.Reason, &e.FailureCount, &lockedUntil, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if lockedUntil.Valid {
			t := lockedUntil.Time
			e.LockedUntil = &t
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
