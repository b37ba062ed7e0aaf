// Package ledger implements ports.Ledger over memory, PostgreSQL, and Redis.
package ledger

import (
	dErrors "authguard/pkg/domain-errors"
)

// ErrStorageUnavailable matches any ledger backend failure via errors.Is.
var ErrStorageUnavailable = &dErrors.Error{Code: dErrors.CodeStorageUnavailable}

func storageError(err error, op string) error {
	return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "ledger "+op+" failed")
}
