package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "authguard/pkg/domain-errors"
)

type errorMapping struct {
	status int
	name   string
}

var errorMappings = map[dErrors.Code]errorMapping{
	dErrors.CodeNotFound:               {http.StatusNotFound, "not_found"},
	dErrors.CodeBadRequest:             {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput:           {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:             {http.StatusBadRequest, "validation_error"},
	dErrors.CodeInvariantViolation:     {http.StatusBadRequest, "validation_error"},
	dErrors.CodeInvalidKey:             {http.StatusBadRequest, "invalid_key"},
	dErrors.CodeLocked:                 {http.StatusTooManyRequests, "locked"},
	dErrors.CodeStorageUnavailable:     {http.StatusServiceUnavailable, "rate_limiter_unavailable"},
	dErrors.CodeRateLimiterUnavailable: {http.StatusServiceUnavailable, "rate_limiter_unavailable"},
	dErrors.CodeTimeout:                {http.StatusGatewayTimeout, "timeout"},
}

var internalError = errorMapping{http.StatusInternalServerError, "internal_error"}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // status already sent
}

// WriteError renders err as {"error": ..., "error_description": ...}. The
// description is only included for client errors, so backend failure detail
// never reaches the caller.
func WriteError(w http.ResponseWriter, err error) {
	m, msg := lookup(err)
	body := map[string]string{"error": m.name}
	if msg != "" && m.status < http.StatusInternalServerError {
		body["error_description"] = msg
	}
	WriteJSON(w, m.status, body)
}

func lookup(err error) (errorMapping, string) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		return internalError, ""
	}
	m, ok := errorMappings[de.Code]
	if !ok {
		m = internalError
	}
	return m, de.Message
}
