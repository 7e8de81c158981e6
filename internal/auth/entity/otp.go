package entity

import (
	"errors"
	"time"
)

// ErrOTPMismatch is returned by an OTP store when a compare-and-delete finds
// a live code that differs from the one supplied.
var ErrOTPMismatch = errors.New("auth: otp code mismatch")

// Purpose scopes a code to the flow that issued it.
type Purpose string

const (
	PurposeRegister      Purpose = "register"
	PurposeResetPassword Purpose = "reset_password"
)

func (p Purpose) String() string {
	return string(p)
}

// OTP is the single outstanding code for a phone key.
type OTP struct {
	PhoneKey  string    `json:"-"`
	Code      string    `json:"code"`
	Purpose   Purpose   `json:"purpose"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the code is no longer usable at now.
// A zero ExpiresAt never expires.
func (o OTP) Expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && !now.Before(o.ExpiresAt)
}
