package ledger

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"authguard/internal/lockout/models"
	"authguard/internal/lockout/ports"
	"authguard/pkg/testutil"
)

// ledgerContract holds the behaviour every ports.Ledger must share. Backend
// suites embed it and set newLedger in SetupTest.
type ledgerContract struct {
	suite.Suite
	ledger ports.Ledger
	now    time.Time

	// compacts is false for backends that expire records natively.
	compacts bool
}

func (s *ledgerContract) key(identity string, op models.OperationType) models.AttemptKey {
	k, err := models.NewAttemptKey(identity, op)
	s.Require().NoError(err)
	return k
}

func (s *ledgerContract) TestGetAbsent() {
	rec, err := s.ledger.Get(context.Background(), s.key("nobody@example.com", models.OperationSignIn))
	s.Require().NoError(err)
	s.Nil(rec)
}

func (s *ledgerContract) TestIncrementCreatesAndCounts() {
	ctx := context.Background()
	key := s.key("alice@example.com", models.OperationSignIn)

	rec, err := s.ledger.IncrementFailure(ctx, key, s.now)
	s.Require().NoError(err)
	s.Equal(1, rec.FailureCount)
	s.Require().NotNil(rec.FirstFailureAt)
	s.True(s.now.Equal(*rec.FirstFailureAt))
	s.Nil(rec.LockedUntil)

	later := s.now.Add(time.Minute)
	rec, err = s.ledger.IncrementFailure(ctx, key, later)
	s.Require().NoError(err)
	s.Equal(2, rec.FailureCount)
	s.True(s.now.Equal(*rec.FirstFailureAt))
	s.True(later.Equal(rec.LastAttemptAt))

	stored, err := s.ledger.Get(ctx, key)
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.Equal(2, stored.FailureCount)
	s.Equal("alice@example.com", stored.Identity)
	s.Equal(models.OperationSignIn, stored.Operation)
}

func (s *ledgerContract) TestClearIsIdempotent() {
	ctx := context.Background()
	key := s.key("bob@example.com", models.OperationSignIn)

	s.Require().NoError(s.ledger.Clear(ctx, key))

	_, err := s.ledger.IncrementFailure(ctx, key, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.Clear(ctx, key))
	s.Require().NoError(s.ledger.Clear(ctx, key))

	rec, err := s.ledger.Get(ctx, key)
	s.Require().NoError(err)
	s.Nil(rec)

	rec, err = s.ledger.IncrementFailure(ctx, key, s.now)
	s.Require().NoError(err)
	s.Equal(1, rec.FailureCount)
}

func (s *ledgerContract) TestApplyLock() {
	ctx := context.Background()
	key := s.key("carol@example.com", models.OperationSignIn)
	until := s.now.Add(15 * time.Minute)

	s.Run("absent record is not locked", func() {
		rec, applied, err := s.ledger.ApplyLock(ctx, s.key("ghost@example.com", models.OperationSignIn), until, s.now)
		s.Require().NoError(err)
		s.Nil(rec)
		s.False(applied)
	})

	s.Run("lock is applied", func() {
		_, err := s.ledger.IncrementFailure(ctx, key, s.now)
		s.Require().NoError(err)
		rec, applied, err := s.ledger.ApplyLock(ctx, key, until, s.now)
		s.Require().NoError(err)
		s.True(applied)
		s.Require().NotNil(rec.LockedUntil)
		s.True(until.Equal(*rec.LockedUntil))
	})

	s.Run("active lock is not extended", func() {
		rec, applied, err := s.ledger.ApplyLock(ctx, key, until.Add(time.Hour), s.now.Add(time.Minute))
		s.Require().NoError(err)
		s.False(applied)
		s.Require().NotNil(rec.LockedUntil)
		s.True(until.Equal(*rec.LockedUntil))
	})

	s.Run("failures while locked keep the lock", func() {
		rec, err := s.ledger.IncrementFailure(ctx, key, s.now.Add(2*time.Minute))
		s.Require().NoError(err)
		s.Equal(2, rec.FailureCount)
		s.Require().NotNil(rec.LockedUntil)
		s.True(until.Equal(*rec.LockedUntil))
	})
}

// Backends store timestamps at millisecond or microsecond precision, so a
// nanosecond clock must still report the lock as applied exactly once.
func (s *ledgerContract) TestApplyLockWithNanosecondClock() {
	ctx := context.Background()
	key := s.key("nina@example.com", models.OperationSignIn)
	now := time.Now()
	for now.Nanosecond()%int(time.Microsecond) == 0 {
		now = now.Add(123 * time.Nanosecond)
	}
	until := now.Add(15 * time.Minute)

	_, err := s.ledger.IncrementFailure(ctx, key, now)
	s.Require().NoError(err)

	rec, applied, err := s.ledger.ApplyLock(ctx, key, until, now)
	s.Require().NoError(err)
	s.True(applied)
	s.Require().NotNil(rec.LockedUntil)
	s.WithinDuration(until, *rec.LockedUntil, time.Millisecond)
	s.True(rec.IsLockedAt(now))

	rec, applied, err = s.ledger.ApplyLock(ctx, key, until.Add(time.Hour), now.Add(time.Second))
	s.Require().NoError(err)
	s.False(applied)
	s.Require().NotNil(rec.LockedUntil)
	s.WithinDuration(until, *rec.LockedUntil, time.Millisecond)
}

func (s *ledgerContract) TestIncrementAfterExpiredLockStartsFresh() {
	ctx := context.Background()
	key := s.key("dave@example.com", models.OperationPasswordReset)
	until := s.now.Add(15 * time.Minute)

	for i := 0; i < 5; i++ {
		_, err := s.ledger.IncrementFailure(ctx, key, s.now)
		s.Require().NoError(err)
	}
	_, _, err := s.ledger.ApplyLock(ctx, key, until, s.now)
	s.Require().NoError(err)

	rec, err := s.ledger.IncrementFailure(ctx, key, until)
	s.Require().NoError(err)
	s.Equal(1, rec.FailureCount)
	s.Nil(rec.LockedUntil)
	s.Require().NotNil(rec.FirstFailureAt)
	s.True(until.Equal(*rec.FirstFailureAt))
}

func (s *ledgerContract) TestKeysAreIsolated() {
	ctx := context.Background()
	a := s.key("erin@example.com", models.OperationSignIn)
	b := s.key("frank@example.com", models.OperationSignIn)
	c := s.key("erin@example.com", models.OperationSignUp)

	for i := 0; i < 3; i++ {
		_, err := s.ledger.IncrementFailure(ctx, a, s.now)
		s.Require().NoError(err)
	}
	_, _, err := s.ledger.ApplyLock(ctx, a, s.now.Add(time.Minute), s.now)
	s.Require().NoError(err)

	for _, other := range []models.AttemptKey{b, c} {
		rec, err := s.ledger.Get(ctx, other)
		s.Require().NoError(err)
		s.Nil(rec)
	}
}

func (s *ledgerContract) TestConcurrentIncrementsAreNotLost() {
	ctx := context.Background()
	key := s.key("mallory@example.com", models.OperationSignIn)
	const n = 40

	res := testutil.RunConcurrent(n, func(int) error {
		_, err := s.ledger.IncrementFailure(ctx, key, s.now)
		return err
	})
	s.Require().Equal(int32(n), res.Successes)

	rec, err := s.ledger.Get(ctx, key)
	s.Require().NoError(err)
	s.Equal(n, rec.FailureCount)
}

func (s *ledgerContract) TestCompactExpired() {
	if !s.compacts {
		n, err := s.ledger.CompactExpired(context.Background(), s.now)
		s.Require().NoError(err)
		s.Zero(n)
		return
	}
	ctx := context.Background()
	stale := s.key("stale@example.com", models.OperationSignIn)
	active := s.key("active@example.com", models.OperationSignIn)
	unlocked := s.key("unlocked@example.com", models.OperationSignIn)

	for _, k := range []models.AttemptKey{stale, active, unlocked} {
		_, err := s.ledger.IncrementFailure(ctx, k, s.now)
		s.Require().NoError(err)
	}
	_, _, err := s.ledger.ApplyLock(ctx, stale, s.now.Add(time.Minute), s.now)
	s.Require().NoError(err)
	_, _, err = s.ledger.ApplyLock(ctx, active, s.now.Add(48*time.Hour), s.now)
	s.Require().NoError(err)

	n, err := s.ledger.CompactExpired(ctx, s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(1, n)

	rec, err := s.ledger.Get(ctx, stale)
	s.Require().NoError(err)
	s.Nil(rec)
	for _, k := range []models.AttemptKey{active, unlocked} {
		rec, err := s.ledger.Get(ctx, k)
		s.Require().NoError(err)
		s.NotNil(rec)
	}
}
