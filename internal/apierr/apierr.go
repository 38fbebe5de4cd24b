package apierr

import (
	"fmt"
	"net/http"
)

// Error is a typed API error carrying the HTTP status and a short machine
// code. Handlers unwrap these at the boundary; anything that is not an
// *apierr.Error surfaces as a 500 with no internal detail.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(kind string) *Error {
	return New(http.StatusNotFound, "not_found", fmt.Errorf("%s not found", kind))
}

// TransitionRejected names both statuses so a client can see exactly which
// move was refused.
func TransitionRejected(current, requested string) *Error {
	return New(http.StatusBadRequest, "invalid_transition",
		fmt.Errorf("cannot transition from %s to %s", current, requested))
}

func MissingField(field, requested string) *Error {
	return New(http.StatusBadRequest, "missing_field",
		fmt.Errorf("%s is required when requesting status %s", field, requested))
}

// ReferentialRejected is deliberately uniform: "not found", "not eligible"
// and "owning service unreachable" all collapse into it.
func ReferentialRejected(kind string) *Error {
	return New(http.StatusBadRequest, "reference_invalid",
		fmt.Errorf("%s not found or not eligible", kind))
}

func TenantViolation(kind string) *Error {
	return New(http.StatusForbidden, "cross_tenant",
		fmt.Errorf("%s belongs to a different organization", kind))
}

func Duplicate(kind, field string) *Error {
	return New(http.StatusBadRequest, "duplicate",
		fmt.Errorf("%s with this %s already exists", kind, field))
}

func InvalidInput(err error) *Error {
	return New(http.StatusBadRequest, "invalid_input", err)
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, "unauthorized", err)
}
