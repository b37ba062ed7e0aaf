package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "authguard/pkg/domain-errors"
	"authguard/pkg/requestcontext"
)

// Normalizable request bodies canonicalise their fields before validation.
type Normalizable interface {
	Normalize()
}

// Validatable request bodies reject themselves with a domain error.
type Validatable interface {
	Validate() error
}

// DecodeJSON reads r's body into a new T. On malformed JSON it writes a 400
// and returns false; the caller just returns.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	body := new(T)
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		ctx := r.Context()
		logger.WarnContext(ctx, "malformed request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return body, true
}

// PrepareRequest runs Normalize then Validate on req when it implements them.
func PrepareRequest(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	v, ok := req.(Validatable)
	if !ok {
		return nil
	}
	return v.Validate()
}

// DecodeAndPrepare decodes like DecodeJSON and then prepares the body.
// Validation errors that already carry a domain code keep it; anything else
// is reported as a validation failure.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	body, ok := DecodeJSON[T](w, r, logger)
	if !ok {
		return nil, false
	}
	err := PrepareRequest(body)
	if err == nil {
		return body, true
	}

	ctx := r.Context()
	logger.WarnContext(ctx, "request rejected",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		err = dErrors.New(dErrors.CodeValidation, err.Error())
	}
	WriteError(w, err)
	return nil, false
}
