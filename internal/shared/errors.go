package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates sign-in failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers every bearer-key rejection: undecodable,
	// unknown user, or stale epoch. Callers must not expose which.
	ErrInvalidToken = errors.New("invalid api key")
)
