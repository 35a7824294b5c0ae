package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestCuebinError_Error(t *testing.T) {
	err := &CuebinError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "actor not found: a1",
	}

	expected := "NOT_FOUND: actor not found: a1"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *CuebinError
		code   ErrorCode
		status int
	}{
		{"invalid request", NewInvalidRequest("name is required"), ErrInvalidRequest, 400},
		{"not found", NewNotFound("bin", "b1"), ErrNotFound, 404},
		{"view not found", NewViewNotFound("by-moon"), ErrViewNotFound, 404},
		{"file not found", NewFileNotFound("/tmp/x.jsonl"), ErrFileNotFound, 404},
		{"conflict", NewConflict("bin is not empty"), ErrConflict, 409},
		{"policy", NewPolicyViolation(fmt.Errorf("music does not fit")), ErrPolicyViolation, 422},
		{"invalid view", NewInvalidView("v", []string{"bad"}), ErrInvalidView, 422},
		{"cancelled", NewCancelled("import"), ErrCancelled, 499},
		{"internal", NewInternal(nil), ErrInternal, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Status != tt.status {
				t.Errorf("Status = %d, want %d", tt.err.Status, tt.status)
			}
			if tt.err.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestNewNotFound_Details(t *testing.T) {
	err := NewNotFound("take", "t9")
	if err.Details["kind"] != "take" || err.Details["id"] != "t9" {
		t.Errorf("Details = %v", err.Details)
	}
	if err.Message != "take not found: t9" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(stderrors.New("disk on fire"))
	if err.Message != "disk on fire" {
		t.Errorf("Message = %q, want %q", err.Message, "disk on fire")
	}
}

func TestIs(t *testing.T) {
	err := NewViewNotFound("x")

	if !Is(err, ErrViewNotFound) {
		t.Error("Is(err, ErrViewNotFound) = false, want true")
	}
	if Is(err, ErrNotFound) {
		t.Error("Is(err, ErrNotFound) = true, want false")
	}
	if Is(stderrors.New("plain"), ErrViewNotFound) {
		t.Error("Is(plain error) = true, want false")
	}

	wrapped := fmt.Errorf("loading tree: %w", err)
	if !Is(wrapped, ErrViewNotFound) {
		t.Error("Is(wrapped) = false, want true")
	}
	if As(wrapped) != err {
		t.Error("As(wrapped) did not return the original error")
	}
}
