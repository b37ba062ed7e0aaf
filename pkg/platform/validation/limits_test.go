package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "authguard/pkg/domain-errors"
)

func TestCheckStringLength(t *testing.T) {
	t.Run("at limit passes", func(t *testing.T) {
		assert.NoError(t, CheckStringLength("identity", strings.Repeat("a", MaxIdentityLength), MaxIdentityLength))
	})

	t.Run("over limit fails with validation code", func(t *testing.T) {
		err := CheckStringLength("identity", strings.Repeat("a", MaxIdentityLength+1), MaxIdentityLength)
		assert.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "identity exceeds max length of 320")
	})
}
