package goerror

import (
	"errors"
	"net/http"
	"testing"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("db down")), want: http.StatusInternalServerError},
		{name: "invalid input", err: NewInvalidInput(errors.New("bad")), want: http.StatusBadRequest},
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "conflict", err: NewBusiness("dup", CodeConflict), want: http.StatusBadRequest},
		{name: "not found", err: NewBusiness("missing", CodeNotFound), want: http.StatusNotFound},
		{name: "not found as bad request", err: NewBusiness("missing", CodeNotFound, WithStatus(http.StatusBadRequest)), want: http.StatusBadRequest},
		{name: "rate limited", err: NewBusiness("slow down", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "forbidden", err: NewBusiness("nope", CodeForbidden), want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ge *Error
			if !errors.As(tt.err, &ge) {
				t.Fatalf("expected *Error, got %T", tt.err)
			}
			if got := ge.StatusCode(); got != tt.want {
				t.Fatalf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewInvalidInput_Fields(t *testing.T) {
	// Arrange & Act
	err := NewInvalidInput(nil, "confirm_password", "must match new_password")

	// Assert
	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if ge.Fields()["confirm_password"] != "must match new_password" {
		t.Fatalf("unexpected fields: %v", ge.Fields())
	}
	if ge.Type() != TypeValidation || ge.Code() != CodeInvalidInput {
		t.Fatalf("unexpected classification: %s", ge.String())
	}

	odd := NewInvalidInput(nil, "lonely")
	if !errors.As(odd, &ge) || ge.Code() != CodeInvalidFormat {
		t.Fatalf("odd kv should be invalid format, got %v", odd)
	}
}

func TestWithCause_Unwrap(t *testing.T) {
	// Arrange
	cause := errors.New("duplicate key")

	// Act
	err := NewBusiness("phone already registered", CodeConflict, WithCause(cause))

	// Assert
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be unwrapped")
	}
}

func TestCode_Fallback(t *testing.T) {
	// Arrange
	unknown := Code(99)

	// Act
	err := NewBusiness("odd", unknown)

	// Assert
	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if ge.StatusCode() != http.StatusInternalServerError || unknown.String() != CodeInternal.String() {
		t.Fatalf("unknown code = %s/%d, want internal/500", unknown, ge.StatusCode())
	}
	if got := NewBusiness("", CodeUnauthorized).Error(); got != "business error" {
		t.Fatalf("Error() = %q", got)
	}
}
