package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("expected errors.Is to see through the wrapper")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "something broke",
				Err:     errors.New("disk full"),
			},
			expected: "INTERNAL_ERROR: something broke (caused by: disk full)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"NotFound", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"Validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"InvalidInput", InvalidInput("malformed id"), CodeInvalidInput, http.StatusBadRequest},
		{"Conflict", Conflict("capacity exceeded"), CodeConflict, http.StatusConflict},
		{"Internal", Internal("boom", errors.New("cause")), CodeInternal, http.StatusInternalServerError},
		{"Unavailable", Unavailable("down"), CodeUnavailable, http.StatusServiceUnavailable},
		{"Timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.StatusCode())
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "abc-123")

	if err.Details["id"] != "abc-123" {
		t.Errorf("expected id detail 'abc-123', got %v", err.Details["id"])
	}
	if err.Details["resource"] != "Booking" {
		t.Errorf("expected resource detail 'Booking', got %v", err.Details["resource"])
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(Conflict("taken")); got != CodeConflict {
		t.Errorf("expected %s, got %s", CodeConflict, got)
	}
	wrapped := fmt.Errorf("outer: %w", NotFound("Customer"))
	if got := CodeOf(wrapped); got != CodeNotFound {
		t.Errorf("expected %s through a wrap, got %s", CodeNotFound, got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("expected empty code for plain error, got %s", got)
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(Internal("x", nil)) {
		t.Errorf("expected true for AppError")
	}
	if IsAppError(errors.New("plain")) {
		t.Errorf("expected false for plain error")
	}
	if IsAppError(nil) {
		t.Errorf("expected false for nil")
	}
}
