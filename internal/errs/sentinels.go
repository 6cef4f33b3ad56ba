// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store/registry/ledger layers. Anything else returned
// by a store method is a persistence failure and propagates verbatim.
var (
	// ErrValidation indicates missing or malformed input, recoverable by correcting it.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate indicates a uniqueness constraint violation (e.g., plate already registered).
	ErrDuplicate = errors.New("already exists")

	// ErrNotFound indicates a token/id lookup miss; expected and recoverable.
	ErrNotFound = errors.New("not found")

	// ErrIncomplete indicates a commit attempted with missing prerequisites.
	ErrIncomplete = errors.New("incomplete")

	// ErrEmpty indicates an export attempted with no data.
	ErrEmpty = errors.New("no data")

	// ErrAlreadyVerified indicates a verification attempt while a driver is already held.
	ErrAlreadyVerified = errors.New("already verified")

	// ErrInvalidState indicates an operation not allowed in the machine's current state.
	ErrInvalidState = errors.New("invalid state")
)
