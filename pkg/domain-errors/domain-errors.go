// Package domainerrors carries transport-agnostic failure codes between the
// ledger, the lockout service and the HTTP edge.
package domainerrors

import "errors"

type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"

	// CodeInvalidKey: empty identity or unregistered operation type.
	CodeInvalidKey Code = "invalid_key"
	// CodeStorageUnavailable: the ledger backend failed a read or write.
	CodeStorageUnavailable Code = "storage_unavailable"
	// CodeRateLimiterUnavailable is what callers of the lockout service see
	// when the ledger cannot answer.
	CodeRateLimiterUnavailable Code = "rate_limiter_unavailable"
	CodeLocked                 Code = "locked"
	CodeMisconfigured          Code = "misconfigured"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match on Code alone, so sentinel values like
// &Error{Code: CodeLocked} work with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if t, ok := target.(*Error); ok {
		other = t
	}
	return other != nil && other.Code == e.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches msg to err. An err that already carries a code keeps it;
// code only applies to foreign errors.
func Wrap(err error, code Code, msg string) error {
	if inner, ok := asError(err); ok {
		code = inner.Code
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// Translate re-codes err unconditionally. The previous chain stays reachable.
func Translate(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode inspects the outermost *Error in err's chain.
func HasCode(err error, code Code) bool {
	e, ok := asError(err)
	return ok && e.Code == code
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
