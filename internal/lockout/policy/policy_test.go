package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"authguard/internal/lockout/config"
	"authguard/internal/lockout/models"
)

type PolicySuite struct {
	suite.Suite
	now    time.Time
	limits config.Limits
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

func (s *PolicySuite) SetupTest() {
	s.now = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	s.limits = config.DefaultConfig().Default
}

func (s *PolicySuite) failures(n int) *models.AttemptRecord {
	rec := &models.AttemptRecord{}
	for i := 0; i < n; i++ {
		rec.RecordFailure(s.now)
	}
	return rec
}

func (s *PolicySuite) TestAbsentRecordIsFullyAllowed() {
	v := Evaluate(nil, s.now, s.limits)
	s.True(v.IsAllowed())
	s.Equal(5, v.RemainingAttempts)

	v = Evaluate(&models.AttemptRecord{}, s.now, s.limits)
	s.Equal(5, v.RemainingAttempts)
}

func (s *PolicySuite) TestRemainingCountsDown() {
	for n := 1; n <= 4; n++ {
		v := Evaluate(s.failures(n), s.now, s.limits)
		s.True(v.IsAllowed(), "failures=%d", n)
		s.Equal(5-n, v.RemainingAttempts, "failures=%d", n)
	}
}

func (s *PolicySuite) TestActiveLock() {
	rec := s.failures(5)
	s.Require().True(rec.Lock(LockUntil(s.now, s.limits), s.now))

	v := Evaluate(rec, s.now.Add(time.Minute), s.limits)
	s.True(v.IsLocked())
	s.Equal(14*time.Minute, v.RetryAfter)
	s.Require().NotNil(v.LockedUntil)
	s.Equal(s.now.Add(15*time.Minute), *v.LockedUntil)
}

func (s *PolicySuite) TestLockExpiresAtBoundary() {
	rec := s.failures(5)
	rec.Lock(LockUntil(s.now, s.limits), s.now)

	s.True(Evaluate(rec, s.now.Add(15*time.Minute-time.Nanosecond), s.limits).IsLocked())

	v := Evaluate(rec, s.now.Add(15*time.Minute), s.limits)
	s.True(v.IsAllowed())
	s.Equal(5, v.RemainingAttempts)
}

func (s *PolicySuite) TestThresholdWithoutLockSelfHeals() {
	v := Evaluate(s.failures(5), s.now, s.limits)
	s.True(v.IsAllowed())
	s.Equal(0, v.RemainingAttempts)

	v = Evaluate(s.failures(7), s.now, s.limits)
	s.Equal(0, v.RemainingAttempts)
}

func (s *PolicySuite) TestShouldLock() {
	s.False(ShouldLock(nil, s.now, s.limits))
	s.False(ShouldLock(s.failures(4), s.now, s.limits))
	s.True(ShouldLock(s.failures(5), s.now, s.limits))

	locked := s.failures(6)
	locked.Lock(LockUntil(s.now, s.limits), s.now)
	s.False(ShouldLock(locked, s.now, s.limits))
}

func (s *PolicySuite) TestCustomLimits() {
	limits := config.Limits{MaxAttempts: 3, LockoutDuration: time.Hour}
	v := Evaluate(s.failures(1), s.now, limits)
	s.Equal(2, v.RemainingAttempts)
	s.True(ShouldLock(s.failures(3), s.now, limits))
	s.Equal(s.now.Add(time.Hour), LockUntil(s.now, limits))
}

func (s *PolicySuite) TestEvaluateDoesNotMutate() {
	rec := s.failures(5)
	rec.Lock(s.now.Add(-time.Minute), s.now.Add(-time.Hour))
	before := *rec.Clone()
	_ = Evaluate(rec, s.now, s.limits)
	s.Equal(before.FailureCount, rec.FailureCount)
	s.Equal(*before.LockedUntil, *rec.LockedUntil)
}
