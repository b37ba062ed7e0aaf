package models

import "time"

// VerdictResponse is the wire form of a Verdict.
type VerdictResponse struct {
	Allowed           bool       `json:"allowed"`
	RemainingAttempts *int       `json:"remaining_attempts,omitempty"`
	RetryAfterSeconds *int       `json:"retry_after_seconds,omitempty"`
	LockedUntil       *time.Time `json:"locked_until,omitempty"`
	Degraded          bool       `json:"degraded,omitempty"`
}

// ToResponse renders v. The remaining-attempts count is included only when disclose is set.
func ToResponse(v Verdict, disclose, degraded bool) *VerdictResponse {
	resp := &VerdictResponse{Allowed: v.IsAllowed(), Degraded: degraded}
	if v.IsLocked() {
		secs := v.RetryAfterSeconds()
		resp.RetryAfterSeconds = &secs
		if v.LockedUntil != nil {
			until := v.LockedUntil.UTC()
			resp.LockedUntil = &until
		}
		return resp
	}
	if disclose && !degraded {
		remaining := v.RemainingAttempts
		resp.RemainingAttempts = &remaining
	}
	return resp
}
