// Package apperr holds the error taxonomy shared by the workflows, the
// record stores and the HTTP layer. Every typed error unwraps to one of the
// sentinels so callers can branch with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrCollaborator = errors.New("collaborator failure")
	ErrInvalidState = errors.New("invalid state")
)

// ValidationError reports a missing or malformed field on a create/update.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Msg)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Required is the common "field is required" validation error.
func Required(field string) error {
	return &ValidationError{Field: field, Msg: "is required"}
}

// NotFoundError reports a reference to a record that is no longer present.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// CollaboratorError wraps a failure from an external collaborator such as the
// suggestion generator. Core state is never mutated when one is returned.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrCollaborator, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", ErrCollaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Is(target error) bool { return target == ErrCollaborator }

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Collaborator wraps err as a CollaboratorError for op.
func Collaborator(op string, err error) error {
	return &CollaboratorError{Op: op, Err: err}
}

// StateError reports an operation that is not allowed from the current
// workflow state, e.g. confirming misplaced items with no pending prompt.
type StateError struct {
	Subject string
	State   string
	Op      string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: cannot %s %s in state %s", ErrInvalidState, e.Op, e.Subject, e.State)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }
