package contracts

import "errors"

// Common errors for domain contracts
var (
	// ErrResultCountMismatch occurs when a transport returns a different number of results than requests
	ErrResultCountMismatch = errors.New("transport returned a result count that does not match the staged requests")

	// ErrNoTransport occurs when a session is executed without a transport
	ErrNoTransport = errors.New("session has no transport")

	// ErrInvalidLimit occurs when a repository is asked for a non-positive number of records
	ErrInvalidLimit = errors.New("limit must be positive")
)
