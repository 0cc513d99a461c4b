// Package errors provides explicit, human-readable error types for petcare.
// Every error carries a Reason and a Suggestion so that both the CLI and the
// HTTP API can tell the user what went wrong and what to do next.
package errors

import (
	"errors"
	"fmt"
)

// PetCareError is the base error type for all petcare errors.
type PetCareError struct {
	Code       ErrorCode
	Message    string
	Reason     string
	Suggestion string
	Cause      error
}

// ErrorCode represents the category of error for exit code and HTTP status mapping.
type ErrorCode int

const (
	CodeValidation ErrorCode = 1
	CodeAuth       ErrorCode = 2
	CodeStorage    ErrorCode = 3
	CodeInternal   ErrorCode = 4
	CodeNotFound   ErrorCode = 5
	CodeRateLimit  ErrorCode = 6
	CodeForbidden  ErrorCode = 7
)

func (e *PetCareError) Error() string {
	msg := e.Message
	if e.Reason != "" {
		msg = fmt.Sprintf("%s\nReason: %s", msg, e.Reason)
	}
	if e.Suggestion != "" {
		msg = fmt.Sprintf("%s\nSuggestion: %s", msg, e.Suggestion)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s\nCaused by: %v", msg, e.Cause)
	}
	return msg
}

func (e *PetCareError) Unwrap() error {
	return e.Cause
}

// Base returns the embedded PetCareError. It lets callers recover the common
// fields from any of the concrete error types with a single errors.As.
func (e *PetCareError) Base() *PetCareError {
	return e
}

type baser interface {
	Base() *PetCareError
}

// As extracts the PetCareError carried by err, if any.
func As(err error) (*PetCareError, bool) {
	var b baser
	if errors.As(err, &b) {
		return b.Base(), true
	}
	return nil, false
}

// CodeOf returns the error code carried by err, or CodeInternal.
func CodeOf(err error) ErrorCode {
	if pe, ok := As(err); ok {
		return pe.Code
	}
	return CodeInternal
}

// ErrNotFound is returned when a referenced record does not exist.
type ErrNotFound struct {
	PetCareError
	Kind string
	ID   int64
}

// NewNotFound creates a new ErrNotFound for the given record kind.
func NewNotFound(kind string, id int64) *ErrNotFound {
	return &ErrNotFound{
		PetCareError: PetCareError{
			Code:       CodeNotFound,
			Message:    fmt.Sprintf("%s not found: %d", kind, id),
			Reason:     fmt.Sprintf("no %s exists with this id", kind),
			Suggestion: fmt.Sprintf("list available records with 'petcare %s list'", kind),
		},
		Kind: kind,
		ID:   id,
	}
}

// IsNotFound reports whether err is (or wraps) an ErrNotFound.
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}

// ErrInvalidField is returned when a record fails validation.
type ErrInvalidField struct {
	PetCareError
	Kind  string
	Field string
}

// NewInvalidField creates a new ErrInvalidField.
func NewInvalidField(kind, field, reason string) *ErrInvalidField {
	return &ErrInvalidField{
		PetCareError: PetCareError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("invalid %s", kind),
			Reason:     fmt.Sprintf("field '%s': %s", field, reason),
			Suggestion: fmt.Sprintf("correct '%s' and try again", field),
		},
		Kind:  kind,
		Field: field,
	}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}

// NewUnknownPet is returned when a record references a pet that does not exist.
func NewUnknownPet(kind string, petID int64) *ErrInvalidField {
	return &ErrInvalidField{
		PetCareError: PetCareError{
			Code:       CodeValidation,
			Message:    fmt.Sprintf("invalid %s", kind),
			Reason:     fmt.Sprintf("field 'petId': pet %d does not exist", petID),
			Suggestion: "list pets with 'petcare pet list'",
		},
		Kind:  kind,
		Field: "petId",
	}
}

// ErrAuthFailed is returned when authentication fails.
type ErrAuthFailed struct {
	PetCareError
}

// NewAuthFailed creates a new ErrAuthFailed.
func NewAuthFailed(reason string) *ErrAuthFailed {
	return &ErrAuthFailed{
		PetCareError: PetCareError{
			Code:       CodeAuth,
			Message:    "authentication failed",
			Reason:     reason,
			Suggestion: "pass a valid token with --token or set auth.token in config",
		},
	}
}

// NewAuthExpired is returned when the auth token has expired.
func NewAuthExpired() *ErrAuthFailed {
	return &ErrAuthFailed{
		PetCareError: PetCareError{
			Code:       CodeAuth,
			Message:    "authentication expired",
			Reason:     "token has expired",
			Suggestion: "ask the gateway operator for a new token",
		},
	}
}

// ErrAccessDenied is returned when an authenticated user lacks a grant.
type ErrAccessDenied struct {
	PetCareError
	User      string
	Operation string
}

// NewAccessDenied creates a new ErrAccessDenied.
func NewAccessDenied(user, operation string) *ErrAccessDenied {
	return &ErrAccessDenied{
		PetCareError: PetCareError{
			Code:       CodeForbidden,
			Message:    "access denied",
			Reason:     fmt.Sprintf("user '%s' may not %s", user, operation),
			Suggestion: "ask the gateway operator for the caretaker role",
		},
		User:      user,
		Operation: operation,
	}
}

// ErrStorageUnavailable is returned when the backing store cannot be reached.
type ErrStorageUnavailable struct {
	PetCareError
}

// NewStorageUnavailable creates a new ErrStorageUnavailable.
func NewStorageUnavailable(reason string) *ErrStorageUnavailable {
	return &ErrStorageUnavailable{
		PetCareError: PetCareError{
			Code:       CodeStorage,
			Message:    "storage unavailable",
			Reason:     reason,
			Suggestion: "check storage.driver and storage.dsn, then run 'petcare doctor'",
		},
	}
}

// NewStorageFailure wraps a backend error raised while performing op.
func NewStorageFailure(op string, cause error) *ErrStorageUnavailable {
	return &ErrStorageUnavailable{
		PetCareError: PetCareError{
			Code:       CodeStorage,
			Message:    "storage operation failed",
			Reason:     op,
			Suggestion: "check the database is reachable, then run 'petcare doctor'",
			Cause:      cause,
		},
	}
}

// ErrMigrationFailed is returned when a schema migration cannot be applied.
type ErrMigrationFailed struct {
	PetCareError
	Migration string
}

// NewMigrationFailed creates a new ErrMigrationFailed.
func NewMigrationFailed(migration string, cause error) *ErrMigrationFailed {
	return &ErrMigrationFailed{
		PetCareError: PetCareError{
			Code:       CodeStorage,
			Message:    fmt.Sprintf("migration failed: %s", migration),
			Reason:     "the schema change could not be applied",
			Suggestion: "inspect the database and the schema_migrations table",
			Cause:      cause,
		},
		Migration: migration,
	}
}

// ErrGatewayUnavailable is returned by the CLI when the gateway cannot be reached.
type ErrGatewayUnavailable struct {
	PetCareError
	Endpoint string
}

// NewGatewayUnavailable creates a new ErrGatewayUnavailable.
func NewGatewayUnavailable(endpoint, reason string) *ErrGatewayUnavailable {
	return &ErrGatewayUnavailable{
		PetCareError: PetCareError{
			Code:       CodeInternal,
			Message:    "gateway unavailable",
			Reason:     reason,
			Suggestion: "start petcare-gateway or set --endpoint",
		},
		Endpoint: endpoint,
	}
}

// ErrRateLimited is returned when a client exceeds the request rate.
type ErrRateLimited struct {
	PetCareError
}

// NewRateLimited creates a new ErrRateLimited.
func NewRateLimited() *ErrRateLimited {
	return &ErrRateLimited{
		PetCareError: PetCareError{
			Code:       CodeRateLimit,
			Message:    "too many requests",
			Reason:     "request rate limit exceeded",
			Suggestion: "retry after a short pause",
		},
	}
}

// ErrBadRequest is returned when a request cannot be decoded or has a malformed parameter.
type ErrBadRequest struct {
	PetCareError
}

// NewBadRequest creates a new ErrBadRequest.
func NewBadRequest(reason string) *ErrBadRequest {
	return &ErrBadRequest{
		PetCareError: PetCareError{
			Code:       CodeValidation,
			Message:    "bad request",
			Reason:     reason,
			Suggestion: "check the request parameters",
		},
	}
}
