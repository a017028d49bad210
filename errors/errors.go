package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Authentication failures. They never reach the client beyond an auth_error event.
	ErrMissingToken = fmt.Errorf("missing bearer token")
	ErrInvalidToken = fmt.Errorf("invalid bearer token")
	ErrExpiredToken = fmt.Errorf("expired bearer token")

	// ErrDuplicateRegistration means a connection id was registered twice: a lifecycle bug.
	ErrDuplicateRegistration = fmt.Errorf("connection already registered")

	ErrSinkFull   = fmt.Errorf("connection send buffer is full")
	ErrSinkClosed = fmt.Errorf("connection is closed")

	ErrInvalidMembership = fmt.Errorf("invalid membership document")
	ErrInvalidConfig     = fmt.Errorf("invalid configuration")
)

// IsAuthFailure reports whether err is one of the handshake or revalidation failures.
func IsAuthFailure(err error) bool {
	return Is(err, ErrMissingToken) || Is(err, ErrInvalidToken) || Is(err, ErrExpiredToken)
}
