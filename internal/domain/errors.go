package domain

import "errors"

// Error kinds for the session engine. Callers classify failures with
// errors.Is; details are attached at the call site via fmt.Errorf wrapping.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned when an operation is not legal for the
	// session's current status or question position.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidArgument is returned for malformed or out-of-range input,
	// e.g. a negative response time or a quiz with no questions.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is returned for duplicate submissions and nickname collisions.
	ErrConflict = errors.New("conflict")
	// ErrDataIntegrity signals an internal inconsistency, e.g. the current
	// question pointer referencing a question the quiz does not contain.
	// State is left unchanged when it is returned.
	ErrDataIntegrity = errors.New("data integrity")
)
