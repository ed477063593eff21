package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationMissing signals that a workspace has no registered store
	// or model credential. Callers use it to prompt for setup.
	ErrConfigurationMissing = errors.New("workspace configuration missing")
	// ErrConflict signals a filename collision awaiting an explicit caller decision.
	ErrConflict = errors.New("filename conflict")
	// ErrUnauthorized signals a missing caller credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden signals an insufficient role for a gated action.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound signals an unknown document id.
	ErrNotFound = errors.New("document not found")
	// ErrUpstreamModel signals a failure from the external language model stack.
	ErrUpstreamModel = errors.New("upstream model error")
	// ErrStorageFailure signals a read or write failure against the tenant store.
	ErrStorageFailure = errors.New("storage failure")
	// ErrInvalidInput signals a malformed submission, such as a chunk/embedding
	// count mismatch, rejected before anything is persisted.
	ErrInvalidInput = errors.New("invalid input")
)

// ConflictError wraps ErrConflict with the colliding filename so the caller
// can surface it and re-submit with an explicit choice.
type ConflictError struct {
	Filename string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %q already has an active version", ErrConflict.Error(), e.Filename)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflict creates a filename conflict error.
func NewConflict(filename string) error {
	return &ConflictError{Filename: filename}
}

// ModelError wraps ErrUpstreamModel with a reason classification.
type ModelError struct {
	Reason string // "invalid_credential", "quota_exceeded", "malformed_response", "api_error"
	Err    error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrUpstreamModel.Error(), e.Reason, e.Err)
}

func (e *ModelError) Unwrap() error { return ErrUpstreamModel }

// NewModelError classifies an upstream model failure.
func NewModelError(reason string, err error) error {
	return &ModelError{Reason: reason, Err: err}
}
