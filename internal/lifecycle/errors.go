package lifecycle

import "errors"

// Errors returned by the engine. Callers match them with errors.Is; the
// wrapped message carries the detail.
var (
	// ErrValidation is returned for missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the principal may not perform the operation.
	ErrForbidden = errors.New("not allowed")

	// ErrUnauthorized is returned when a permanent delete is attempted
	// without the operator secret.
	ErrUnauthorized = errors.New("invalid delete password")

	// ErrConflict is reserved for concurrent modification. Nothing raises it:
	// updates are last-write-wins.
	ErrConflict = errors.New("conflict")
)
