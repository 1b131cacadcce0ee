package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidSpec, "bad value: %d", 42)

	if err.Code != ErrCodeInvalidSpec {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidSpec)
	}
	if err.Message != "bad value: 42" {
		t.Errorf("Message = %q", err.Message)
	}
	want := "INVALID_SPEC: bad value: 42"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrCodeInvalidFormat, cause, "parse %s", "bike.json")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	want := "INVALID_FORMAT: parse bike.json: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeInvalidGeometry, "degenerate frame")

	if !Is(err, ErrCodeInvalidGeometry) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeInvalidGeometry) {
		t.Error("Is should not match a plain error")
	}

	// Code survives further wrapping with fmt.Errorf.
	wrapped := fmt.Errorf("compute layout: %w", err)
	if !Is(wrapped, ErrCodeInvalidGeometry) {
		t.Error("Is should unwrap fmt.Errorf chains")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeMissingField, "x")); got != ErrCodeMissingField {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeMissingField)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidSpec, "wheelbase must be positive")); got != "wheelbase must be positive" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("plain failure")); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
