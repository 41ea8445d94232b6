// Package faults defines the error kinds shared across services.
//
// Services wrap these sentinels with context via fmt.Errorf("...: %w", ...);
// the HTTP boundary maps them to status codes with errors.Is. Anything that
// does not match a sentinel is treated as an internal error and never exposed
// to clients.
package faults

import "errors"

var (
	// ErrInvalidInput indicates malformed or missing required fields or identifiers.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates no valid session where one is required.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a valid session with insufficient rights.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique-constraint violation, e.g. a duplicate email.
	ErrConflict = errors.New("conflict")

	// ErrUploadFailed indicates the media host did not return a usable URL.
	ErrUploadFailed = errors.New("upload failed")

	// ErrInvalidOperation indicates a structurally valid but semantically
	// disallowed request, e.g. a super-admin deleting their own account.
	ErrInvalidOperation = errors.New("invalid operation")
)
