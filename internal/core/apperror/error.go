// Package apperror provides structured error handling for the catalog and
// circulation core. All business errors must use AppError for consistent
// API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by failure class
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Circulation rule violations (422)
	CodeNoCopiesAvailable      = "NO_COPIES_AVAILABLE"
	CodeBorrowLimitExceeded    = "BORROW_LIMIT_EXCEEDED"
	CodeAlreadyReturned        = "ALREADY_RETURNED"
	CodeMemberInactive         = "MEMBER_INACTIVE"
	CodeTitleHasActiveLoans    = "TITLE_HAS_ACTIVE_LOANS"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the service.
// It implements the error interface and carries structured details for
// API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, counts, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400).
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404).
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewNoCopiesAvailable is returned when an issue request finds no free copy.
func NewNoCopiesAvailable(titleID any) *AppError {
	return &AppError{
		Code:       CodeNoCopiesAvailable,
		Message:    "No copies of this title are available",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"title_id": titleID},
	}
}

// NewBorrowLimitExceeded is returned when a member holds max_books active loans.
func NewBorrowLimitExceeded(memberID any, limit int) *AppError {
	return &AppError{
		Code:       CodeBorrowLimitExceeded,
		Message:    "Member has reached the borrowing limit",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"member_id": memberID, "max_books": limit},
	}
}

// NewAlreadyReturned is returned on a repeated return of the same loan.
// The repeat never touches availability again.
func NewAlreadyReturned(loanID any) *AppError {
	return &AppError{
		Code:       CodeAlreadyReturned,
		Message:    "Loan has already been returned",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"loan_id": loanID},
	}
}

// NewMemberInactive is returned when issuing to a deactivated member.
func NewMemberInactive(memberID any) *AppError {
	return &AppError{
		Code:       CodeMemberInactive,
		Message:    "Member is not active",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"member_id": memberID},
	}
}

// NewTitleHasActiveLoans guards catalog deletion while loans reference the title.
func NewTitleHasActiveLoans(titleID any, active int) *AppError {
	return &AppError{
		Code:       CodeTitleHasActiveLoans,
		Message:    "Title has active loans and cannot be removed",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"title_id": titleID, "active_loans": active},
	}
}

// NewConcurrentModification creates an optimistic locking error.
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another request. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewConflict creates a conflict error (409).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409).
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewDatabase wraps a storage-level failure (500).
func NewDatabase(err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "Storage operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewInternal creates an internal server error (hides details from client).
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the appropriate HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// HasCode checks whether err carries the given application error code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
