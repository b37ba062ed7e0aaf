//go:build integration

// Package containers starts throwaway backends for integration tests. One
// Postgres instance is shared by every suite in the test binary; Ryuk removes
// it when the process exits.
package containers

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"authguard/migrations"
)

const postgresImage = "postgres:18-alpine"

// tables lists every table the migrations create, in truncation order.
var tables = []string{"attempt_ledger", "audit_events"}

type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

var (
	sharedOnce     sync.Once
	sharedPostgres *PostgresContainer
	sharedErr      error
)

// Postgres returns the shared, migrated Postgres container, starting it on
// first use. A failed start fails every caller.
func Postgres(t *testing.T) *PostgresContainer {
	t.Helper()
	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		sharedPostgres, sharedErr = startPostgres(ctx)
	})
	if sharedErr != nil {
		t.Fatalf("postgres container: %v", sharedErr)
	}
	return sharedPostgres
}

func startPostgres(ctx context.Context) (*PostgresContainer, error) {
	c, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("authguard_test"),
		postgres.WithUsername("authguard"),
		postgres.WithPassword("authguard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("dsn: %w", err)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		_ = c.Terminate(ctx)
		return nil, err
	}
	return &PostgresContainer{Container: c, DSN: dsn, DB: db}, nil
}

// migrate applies every embedded *.up.sql file in name order.
func migrate(ctx context.Context, db *sql.DB) error {
	files, err := fs.Glob(migrations.Schema, "*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)
	for _, name := range files {
		stmt, err := fs.ReadFile(migrations.Schema, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(stmt)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

// Reset empties every table so suites can share the container.
func (p *PostgresContainer) Reset(ctx context.Context) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}
