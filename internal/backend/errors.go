package backend

import "fmt"

// Error codes surfaced by the gateway.
const (
	// CodeNotConfigured is the sentinel code returned by every operation
	// when backend credentials are absent. It is an expected, recoverable
	// condition, not a failure.
	CodeNotConfigured = "backend_not_configured"

	// CodeBadResponse is used when the backend answers with a body the
	// client cannot decode.
	CodeBadResponse = "bad_response"

	// CodeNetwork is used when the request never produced an HTTP response.
	CodeNetwork = "network_error"
)

// Error is the structured error returned by gateway operations. Exactly one
// of (value, error) is meaningful on any completed call.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Is matches errors by code, so errors.Is(err, ErrNotConfigured) holds for
// any not-configured error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ErrNotConfigured is returned by every operation when the backend has no
// credentials. Callers treat it as "skip cloud work", never as a crash.
var ErrNotConfigured = &Error{
	Code:    CodeNotConfigured,
	Message: "backend is not configured",
}
