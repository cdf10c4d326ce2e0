package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint would be violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState is returned when an operation is not allowed in the entity's current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict signals a concurrent modification (stale version).
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized means the caller could not be identified.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller is identified but not allowed.
	ErrForbidden = errors.New("forbidden")
	// ErrPaymentRejected means the payment provider did not confirm the payment.
	ErrPaymentRejected = errors.New("payment rejected")
)
