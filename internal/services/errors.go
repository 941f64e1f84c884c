package services

import (
	"errors"
	"fmt"
)

// HTTPStatusError is a non-2xx answer from the backend.
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: bad status code: %d", e.Endpoint, e.StatusCode)
}

// ParseError means the body could not be decoded into the expected entity.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse response: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransportError covers everything before a response arrived: connectivity,
// timeouts, an open circuit.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err came from the network layer.
func IsNetworkError(err error) bool {
	var (
		statusErr    *HTTPStatusError
		parseErr     *ParseError
		transportErr *TransportError
	)
	return errors.As(err, &statusErr) || errors.As(err, &parseErr) || errors.As(err, &transportErr)
}
