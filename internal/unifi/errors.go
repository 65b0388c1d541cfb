package unifi

import "fmt"

// AuthError indicates the controller rejected our credentials: either the
// login itself failed, or a data request still returned 401 after one
// re-login attempt.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "authentication failed"
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// ParseError indicates the controller answered, but not with something we
// can use: a non-success HTTP status or a response body that does not decode
// into the expected envelope.
type ParseError struct {
	Status int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse response: %v", e.Err)
	}
	return fmt.Sprintf("API request failed with status: %d", e.Status)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RequestError indicates the request never produced a usable HTTP response
// (connection refused, timeout, TLS failure).
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("HTTP request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
