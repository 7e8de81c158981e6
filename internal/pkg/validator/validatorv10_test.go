package validator

import (
	"errors"
	"testing"
)

type sample struct {
	PhoneKey string `validate:"required,phonekey"`
	Code     string `validate:"omitempty,otpcode"`
	Password string `validate:"omitempty,password"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	tests := []struct {
		name      string
		in        sample
		wantField string
	}{
		{name: "valid", in: sample{PhoneKey: "998901234567", Code: "123456", Password: "password1"}},
		{name: "missing phone", in: sample{}, wantField: "phone_key"},
		{name: "short phone", in: sample{PhoneKey: "12345"}, wantField: "phone_key"},
		{name: "bad code", in: sample{PhoneKey: "998901234567", Code: "12ab56"}, wantField: "code"},
		{name: "short password", in: sample{PhoneKey: "998901234567", Password: "short"}, wantField: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error = %v", err)
				}
				return
			}

			var verr V10ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected V10ValidationError, got %T (%v)", err, err)
			}
			if _, ok := verr.Values()[tt.wantField]; !ok {
				t.Fatalf("expected field %q in %v", tt.wantField, verr.Values())
			}
		})
	}
}
