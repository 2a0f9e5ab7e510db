package oauth

// RedactedToken wraps a sensitive token string to prevent accidental
// logging. It implements fmt.Stringer to return "[REDACTED]" instead
// of the actual value, so a token that ends up in a log line or a
// status table never leaks the secret.
type RedactedToken struct {
	value string
}

// NewRedactedToken creates a RedactedToken wrapping the given value.
func NewRedactedToken(value string) RedactedToken {
	return RedactedToken{value: value}
}

// Value returns the actual token value. Use it only when the token
// needs to be sent in an Authorization header. Never log the result.
func (t RedactedToken) Value() string {
	return t.value
}

// String implements fmt.Stringer.
func (t RedactedToken) String() string {
	if t.value == "" {
		return "(none)"
	}
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (t RedactedToken) GoString() string {
	return "oauth.RedactedToken{[REDACTED]}"
}

// IsEmpty returns true if the token value is empty.
func (t RedactedToken) IsEmpty() bool {
	return t.value == ""
}

// MarshalText implements encoding.TextMarshaler so that serialized
// forms never carry the secret either.
func (t RedactedToken) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
