package focus

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorDetail is a single entry of the API's JSON:API-style error
// document.
type ErrorDetail struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Status int    `json:"status,omitempty"`
}

// APIError is returned when the Focus API answers with a non-2xx
// status. It carries the HTTP status and the structured error list
// when one could be parsed, otherwise the raw body.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Errors is the parsed error list, possibly empty.
	Errors []ErrorDetail

	// Body is the raw response body when no error list could be parsed.
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, d := range e.Errors {
			if d.Detail != "" {
				parts = append(parts, fmt.Sprintf("%s (%s)", d.Title, d.Detail))
			} else {
				parts = append(parts, d.Title)
			}
		}
		return fmt.Sprintf("focus api returned status %d: %s", e.StatusCode, strings.Join(parts, "; "))
	}
	if e.Body != "" {
		return fmt.Sprintf("focus api returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("focus api returned status %d", e.StatusCode)
}

// AuthRejected reports whether the error is an authentication
// rejection: the presented credential was not accepted. Distinct from
// authorization or validation failures, which are never retried.
func (e *APIError) AuthRejected() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsAuthRejected reports whether err carries an authentication
// rejection from the API.
func IsAuthRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.AuthRejected()
}
