// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"sync"
	"sync/atomic"

	dErrors "authguard/pkg/domain-errors"
)

// ConcurrentResult counts how a burst of concurrent calls ended.
type ConcurrentResult struct {
	Successes   int32
	Unavailable int32 // storage or limiter outage
	Errors      int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Unavailable + r.Errors
}

// RunConcurrent starts n goroutines, releases them at once and waits for all
// of them. idx runs from 0 to n-1.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		counts [3]atomic.Int32
		wg     sync.WaitGroup
		gate   = make(chan struct{})
	)
	for i := range n {
		wg.Go(func() {
			<-gate
			counts[bucket(fn(i))].Add(1)
		})
	}
	close(gate)
	wg.Wait()

	return &ConcurrentResult{
		Successes:   counts[0].Load(),
		Unavailable: counts[1].Load(),
		Errors:      counts[2].Load(),
	}
}

func bucket(err error) int {
	switch {
	case err == nil:
		return 0
	case dErrors.HasCode(err, dErrors.CodeStorageUnavailable),
		dErrors.HasCode(err, dErrors.CodeRateLimiterUnavailable):
		return 1
	default:
		return 2
	}
}
