package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "authguard/pkg/domain-errors"
)

func TestRunConcurrentBucketsResults(t *testing.T) {
	res := RunConcurrent(9, func(idx int) error {
		switch idx % 3 {
		case 0:
			return nil
		case 1:
			return dErrors.New(dErrors.CodeStorageUnavailable, "down")
		default:
			return errors.New("boom")
		}
	})

	assert.Equal(t, int32(3), res.Successes)
	assert.Equal(t, int32(3), res.Unavailable)
	assert.Equal(t, int32(3), res.Errors)
	assert.Equal(t, int32(9), res.Total())
}
