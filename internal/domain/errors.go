package domain

import "errors"

// Sentinel errors shared across the core. Services never swallow these;
// the delivery layer maps them to HTTP status codes.
var (
	// ErrValidation indicates bad input, recoverable by the caller
	ErrValidation = errors.New("validation error")

	// ErrInvalidSignature indicates a tampered or malformed token
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrTokenExpired indicates a token with a valid signature whose
	// clock-based validity has lapsed. On the refresh path this is a
	// normal branch, not an error.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidTransition indicates an entity already in a terminal state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrDivisionUndefined indicates a degenerate risk calculation
	// (stop loss unset or equal to entry); recorded as zero, not fatal
	ErrDivisionUndefined = errors.New("risk per unit undefined")

	// ErrNotFound indicates a missing entity
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates insufficient authority for the operation
	ErrForbidden = errors.New("forbidden")
)
