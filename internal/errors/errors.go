package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a docstore error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION" // 400: bad input, rejected before persistence
	ErrNotFound   ErrorCode = "NOT_FOUND"  // 404
	ErrIntegrity  ErrorCode = "INTEGRITY"  // 409: identifier collision, constraint violation
	ErrStorage    ErrorCode = "STORAGE"    // 500: disk write failure, unreadable upload
	ErrCancelled  ErrorCode = "CANCELLED"  // 499: context cancelled mid-operation
	ErrInternal   ErrorCode = "INTERNAL"   // 500
)

// StoreError represents a structured error with code, status, and details.
type StoreError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 400 error for invalid input. Validation errors are
// raised before any persistence happens.
func NewValidation(msg string) *StoreError {
	return &StoreError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewBadQuery creates a 400 error for a search query that failed to compile.
func NewBadQuery(token, reason string) *StoreError {
	return &StoreError{
		Code:    ErrValidation,
		Status:  400,
		Message: fmt.Sprintf("bad query token %q: %s", token, reason),
		Details: map[string]any{"token": token},
	}
}

// NewNotFound creates a 404 error for an unknown document id.
func NewNotFound(documentID string) *StoreError {
	return &StoreError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("document not found: %s", documentID),
		Details: map[string]any{"document_id": documentID},
	}
}

// NewFileNotFound creates a 404 error for a missing file path.
func NewFileNotFound(path string) *StoreError {
	return &StoreError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewIntegrity creates a 409 error for identifier collisions and referential
// violations surfaced by the database.
func NewIntegrity(msg string) *StoreError {
	return &StoreError{
		Code:    ErrIntegrity,
		Status:  409,
		Message: msg,
	}
}

// NewStorage creates a 500 error for a failed disk read or write.
// The filename identifies which upload failed inside a batch.
func NewStorage(filename string, err error) *StoreError {
	msg := "storage failure"
	if err != nil {
		msg = err.Error()
	}
	e := &StoreError{
		Code:    ErrStorage,
		Status:  500,
		Message: msg,
	}
	if filename != "" {
		e.Details = map[string]any{"filename": filename}
	}
	return e
}

// NewCancelled creates a 499 error for an operation aborted by context.
func NewCancelled(operation string) *StoreError {
	return &StoreError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the original error is kept in Details for logging.
func NewInternal(err error) *StoreError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &StoreError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is (or wraps) a StoreError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *StoreError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
