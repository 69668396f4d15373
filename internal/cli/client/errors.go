package client

import "fmt"

// ValidationError reports a client-side precondition failure. No network
// request has been made when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// AuthRequiredError is returned when an authenticated operation is attempted
// without a token. It is rejected before any request is issued.
type AuthRequiredError struct {
	Op string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("%s requires authentication. Please run 'savora login' first", e.Op)
}

// RemoteError is a non-2xx response from the API. Message carries the
// server-provided message when the error body had one.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.Status, e.Message)
}

// TransportError means the request never completed (DNS, timeout,
// connection reset). There is no server detail to report.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
