package report

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes ledger errors.
type ErrorCode string

const (
	// CodeNotFound indicates a lookup of a non-existent report id.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodePermissionDenied indicates a delete attempted by a non-owner identity.
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// Error represents a terminal ledger failure.
//
// Both error conditions are caller-input or authorization errors, not
// transient faults: the triggering call is aborted with no observable state
// change and there is no retry.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ID identifies the affected report (for NOT_FOUND).
	ID int64

	// Caller identifies the rejected identity (for PERMISSION_DENIED).
	Caller AccountID
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Caller != "" {
		return fmt.Sprintf("%s: %s (caller=%s)", e.Code, e.Message, e.Caller)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotFound returns true if the error is a NOT_FOUND ledger error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Code == CodeNotFound
	}
	return false
}

// IsPermissionDenied returns true if the error is a PERMISSION_DENIED ledger error.
// Uses errors.As to handle wrapped errors.
func IsPermissionDenied(err error) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Code == CodePermissionDenied
	}
	return false
}

// NewNotFound creates an Error for a missing report id.
func NewNotFound(id int64) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("no report with id %d", id),
		ID:      id,
	}
}

// NewPermissionDenied creates an Error for a delete by a non-owner.
func NewPermissionDenied(caller AccountID, id int64) *Error {
	return &Error{
		Code:    CodePermissionDenied,
		Message: fmt.Sprintf("only the ledger owner may delete report %d", id),
		ID:      id,
		Caller:  caller,
	}
}
