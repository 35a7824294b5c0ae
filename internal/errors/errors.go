package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a cuebin error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrViewNotFound    ErrorCode = "VIEW_NOT_FOUND"   // 404
	ErrFileNotFound    ErrorCode = "FILE_NOT_FOUND"   // 404
	ErrConflict        ErrorCode = "CONFLICT"         // 409
	ErrPolicyViolation ErrorCode = "POLICY_VIOLATION" // 422
	ErrInvalidView     ErrorCode = "INVALID_VIEW"     // 422
	ErrCancelled       ErrorCode = "CANCELLED"        // 499
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// CuebinError represents a structured error with code, status, and details.
type CuebinError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *CuebinError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CuebinError {
	return &CuebinError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing catalog entity.
func NewNotFound(kind, id string) *CuebinError {
	return &CuebinError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewViewNotFound creates a 404 error for an id that is neither a saved
// view nor a preset.
func NewViewNotFound(id string) *CuebinError {
	return &CuebinError{
		Code:    ErrViewNotFound,
		Status:  404,
		Message: fmt.Sprintf("view not found: %s", id),
		Details: map[string]any{"view_id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *CuebinError {
	return &CuebinError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *CuebinError {
	return &CuebinError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewPolicyViolation creates a 422 error when a media item does not fit
// its bin or owner.
func NewPolicyViolation(err error) *CuebinError {
	return &CuebinError{
		Code:    ErrPolicyViolation,
		Status:  422,
		Message: err.Error(),
	}
}

// NewInvalidView creates a 422 error carrying the view's diagnostics.
func NewInvalidView(id string, diagnostics any) *CuebinError {
	return &CuebinError{
		Code:    ErrInvalidView,
		Status:  422,
		Message: fmt.Sprintf("view %q is invalid", id),
		Details: map[string]any{"view_id": id, "diagnostics": diagnostics},
	}
}

// NewCancelled creates a 499 error when the caller gave up.
func NewCancelled(op string) *CuebinError {
	return &CuebinError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *CuebinError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CuebinError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err wraps a CuebinError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *CuebinError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}

// As returns the CuebinError in err's chain, or nil.
func As(err error) *CuebinError {
	var cErr *CuebinError
	if stderrors.As(err, &cErr) {
		return cErr
	}
	return nil
}
