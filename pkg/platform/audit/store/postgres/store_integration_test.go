//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "authguard/pkg/platform/audit"
	"authguard/pkg/testutil/containers"
)

func TestStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.Postgres(t)
	ctx := context.Background()
	require.NoError(t, pg.Reset(ctx))
	store := New(pg.DB)

	now := time.Now().UTC().Truncate(time.Microsecond)
	until := now.Add(15 * time.Minute)
	locked := audit.Event{
		ID:           uuid.New(),
		Timestamp:    now,
		Action:       string(audit.EventLockoutTriggered),
		Subject:      "id_0011223344556677",
		Operation:    "sign_in",
		Decision:     audit.DecisionDenied,
		FailureCount: 5,
		LockedUntil:  &until,
	}
	require.NoError(t, store.Append(ctx, locked))
	require.NoError(t, store.Append(ctx, locked), "re-delivery is a no-op")
	require.NoError(t, store.Append(ctx, audit.Event{
		Timestamp: now.Add(time.Second),
		Action:    string(audit.EventLockoutCleared),
		Subject:   "id_0011223344556677",
		Operation: "sign_in",
		Decision:  audit.DecisionAllowed,
	}))

	events, err := store.ListBySubject(ctx, "id_0011223344556677")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventLockoutCleared), events[0].Action)
	assert.Nil(t, events[0].LockedUntil)
	require.NotNil(t, events[1].LockedUntil)
	assert.True(t, until.Equal(*events[1].LockedUntil))

	recent, err := store.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
