package models

import (
	"fmt"
	"strings"
)

// KeyPrefix namespaces ledger keys in shared key-value stores.
const KeyPrefix = "authguard:attempt"

// String returns the storage key for k. Identity segments are escaped so an
// identity containing ':' cannot collide with another operation's key.
func (k AttemptKey) String() string {
	return fmt.Sprintf("%s:%s:%s", KeyPrefix, k.operation, sanitizeKeySegment(k.identity))
}

// sanitizeKeySegment escapes '_' as '__' and then ':' as '_c', which keeps the
// mapping injective.
func sanitizeKeySegment(s string) string {
	s = strings.ReplaceAll(s, "_", "__")
	s = strings.ReplaceAll(s, ":", "_c")
	return s
}
