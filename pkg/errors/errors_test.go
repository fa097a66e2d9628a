package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "instance not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "instance not found" {
		t.Errorf("expected message 'instance not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "operation failed", cause)

	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("operation does not exist")
	ctx := map[string]interface{}{
		"instance":  "b2c7d9e1",
		"operation": "tokenize",
	}

	err := WrapWithContext(ErrCodeInvocation, "invocation failed", cause, ctx)

	if err.Code != ErrCodeInvocation {
		t.Errorf("expected code %s, got %s", ErrCodeInvocation, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["operation"] != "tokenize" {
		t.Errorf("expected operation to be tokenize")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeNotFound, "not found"),
			expected: "[NOT_FOUND] not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should work with Unwrap")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{
			name:     "structured error",
			err:      New(ErrCodeNotFound, "gone"),
			expected: ErrCodeNotFound,
		},
		{
			name:     "wrapped structured error",
			err:      fmt.Errorf("dispatch failed: %w", New(ErrCodeInvocation, "bad op")),
			expected: ErrCodeInvocation,
		},
		{
			name:     "plain error defaults to internal",
			err:      errors.New("boom"),
			expected: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(New(ErrCodeNotFound, "gone")) {
		t.Error("expected IsNotFound to be true for NOT_FOUND")
	}
	if IsNotFound(New(ErrCodeInvocation, "bad op")) {
		t.Error("expected IsNotFound to be false for INVOCATION_ERROR")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("expected IsNotFound to be false for plain error")
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeNotFound,
		ErrCodeInvocation,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeInvalidRequest,
		ErrCodeUnavailable,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
	}
}
