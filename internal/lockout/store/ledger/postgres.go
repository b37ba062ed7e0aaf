package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"authguard/internal/lockout/models"
)

// PostgresLedger persists attempt records in the attempt_ledger table.
// Same-key writers serialise on the row lock taken by each single-statement upsert.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

const recordColumns = `identity, operation_type, failure_count, first_failure_at, locked_until, last_attempt_at`

func (l *PostgresLedger) Get(ctx context.Context, key models.AttemptKey) (*models.AttemptRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM attempt_ledger WHERE identity = $1 AND operation_type = $2`
	rec, err := scanRecord(l.db.QueryRowContext(ctx, query, key.Identity(), string(key.Operation())))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(err, "get")
	}
	return rec, nil
}

// IncrementFailure upserts the row. A lock that lapsed at $3 is reconciled in
// the same statement, so the failure becomes the first of a new count.
func (l *PostgresLedger) IncrementFailure(ctx context.Context, key models.AttemptKey, now time.Time) (*models.AttemptRecord, error) {
	query := `
		INSERT INTO attempt_ledger (` + recordColumns + `)
		VALUES ($1, $2, 1, $3, NULL, $3)
		ON CONFLICT (identity, operation_type) DO UPDATE SET
			failure_count = CASE
				WHEN attempt_ledger.locked_until IS NOT NULL AND attempt_ledger.locked_until <= $3 THEN 1
				ELSE attempt_ledger.failure_count + 1
			END,
			first_failure_at = CASE
				WHEN attempt_ledger.locked_until IS NOT NULL AND attempt_ledger.locked_until <= $3 THEN $3
				WHEN attempt_ledger.failure_count = 0 THEN $3
				ELSE attempt_ledger.first_failure_at
			END,
			locked_until = CASE
				WHEN attempt_ledger.locked_until IS NOT NULL AND attempt_ledger.locked_until <= $3 THEN NULL
				ELSE attempt_ledger.locked_until
			END,
			last_attempt_at = $3
		RETURNING ` + recordColumns
	rec, err := scanRecord(l.db.QueryRowContext(ctx, query, key.Identity(), string(key.Operation()), now.UTC()))
	if err != nil {
		return nil, storageError(err, "increment")
	}
	return rec, nil
}

func (l *PostgresLedger) Clear(ctx context.Context, key models.AttemptKey) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM attempt_ledger WHERE identity = $1 AND operation_type = $2`,
		key.Identity(), string(key.Operation()))
	if err != nil {
		return storageError(err, "clear")
	}
	return nil
}

// ApplyLock only updates a row with failures and no active lock. When the
// update matches nothing the current row is returned as-is and applied is false.
func (l *PostgresLedger) ApplyLock(ctx context.Context, key models.AttemptKey, until, now time.Time) (*models.AttemptRecord, bool, error) {
	query := `
		UPDATE attempt_ledger SET locked_until = $3
		WHERE identity = $1 AND operation_type = $2
			AND failure_count > 0
			AND (locked_until IS NULL OR locked_until <= $4)
		RETURNING ` + recordColumns
	rec, err := scanRecord(l.db.QueryRowContext(ctx, query,
		key.Identity(), string(key.Operation()), until.UTC(), now.UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		current, err := l.Get(ctx, key)
		return current, false, err
	}
	if err != nil {
		return nil, false, storageError(err, "lock")
	}
	return rec, true, nil
}

func (l *PostgresLedger) CompactExpired(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM attempt_ledger WHERE locked_until IS NOT NULL AND locked_until < $1`, cutoff.UTC())
	if err != nil {
		return 0, storageError(err, "compact")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageError(err, "compact")
	}
	return int(n), nil
}

type recordRow interface {
	Scan(dest ...any) error
}

func scanRecord(row recordRow) (*models.AttemptRecord, error) {
	var (
		rec            models.AttemptRecord
		op             string
		firstFailureAt sql.NullTime
		lockedUntil    sql.NullTime
	)
	if err := row.Scan(&rec.Identity, &op, &rec.FailureCount, &firstFailureAt, &lockedUntil, &rec.LastAttemptAt); err != nil {
		return nil, err
	}
	rec.Operation = models.OperationType(op)
	if firstFailureAt.Valid {
		t := firstFailureAt.Time
		rec.FirstFailureAt = &t
	}
	if lockedUntil.Valid {
		t := lockedUntil.Time
		rec.LockedUntil = &t
	}
	return &rec, nil
}
