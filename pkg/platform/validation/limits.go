// Package validation bounds the size of untrusted input at the HTTP edge.
package validation

import (
	"fmt"

	dErrors "authguard/pkg/domain-errors"
)

const (
	MaxBodySize = 64 << 10

	// MaxIdentityLength fits the longest legal email address.
	MaxIdentityLength = 320
	// MaxOperationLength applies to the raw operation string, before lookup.
	MaxOperationLength = 64
)

func CheckStringLength(field, value string, limit int) error {
	if n := len(value); n > limit {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", field, limit))
	}
	return nil
}
