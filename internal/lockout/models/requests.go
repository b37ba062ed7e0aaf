package models

import (
	"strings"

	dErrors "authguard/pkg/domain-errors"
	"authguard/pkg/platform/validation"
)

// AttemptRequest is the body shared by the check, failure and success RPCs.
type AttemptRequest struct {
	Identity  string `json:"identity"`
	Operation string `json:"operation"`
}

func (r *AttemptRequest) Normalize() {
	if r == nil {
		return
	}
	r.Identity = NormalizeIdentity(r.Identity)
	r.Operation = strings.TrimSpace(r.Operation)
}

func (r *AttemptRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Identity == "" {
		return dErrors.New(dErrors.CodeInvalidKey, "identity is required")
	}
	if err := validation.CheckStringLength("identity", r.Identity, validation.MaxIdentityLength); err != nil {
		return dErrors.Translate(err, dErrors.CodeInvalidKey, "identity is too long")
	}
	if _, err := ParseOperationType(r.Operation); err != nil {
		return err
	}
	return nil
}
