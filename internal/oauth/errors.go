package oauth

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned when no credential is held and no
// way to obtain one is configured.
var ErrNotAuthenticated = errors.New("not authenticated: no access token available")

// ExchangeError is returned when the provider's token endpoint answers
// a code exchange or refresh with a non-success status. It carries the
// raw status and body so operators can see exactly what the provider
// said.
type ExchangeError struct {
	// StatusCode is the HTTP status returned by the token endpoint.
	StatusCode int

	// Body is the raw response body, typically a JSON error document.
	Body string
}

// Error implements the error interface.
func (e *ExchangeError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("token endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("token endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the failure is worth retrying. Server-side
// failures (5xx) are transient; 4xx means the grant itself was
// rejected and retrying would burn the refresh token for nothing.
func (e *ExchangeError) Transient() bool {
	return e.StatusCode >= 500
}

// ReauthRequiredError indicates the stored grant was definitively
// rejected (expired, revoked, or already rotated away). Recovery
// requires a new interactive authorization, not another retry.
type ReauthRequiredError struct {
	Err error
}

// Error implements the error interface.
func (e *ReauthRequiredError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("re-authentication required: %v", e.Err)
	}
	return "re-authentication required"
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *ReauthRequiredError) Unwrap() error {
	return e.Err
}

// IsReauthRequired reports whether err indicates that the credential
// can only be recovered through a new authorization flow.
func IsReauthRequired(err error) bool {
	var reauth *ReauthRequiredError
	return errors.As(err, &reauth)
}
