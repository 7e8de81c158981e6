// Package sms talks to SMS gateways. The only gateway today is Eskiz
// (notify.eskiz.uz).
package sms

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned when neither a token nor login credentials are set.
	ErrNotConfigured = errors.New("sms: gateway credentials not configured")

	// ErrPlaceholderCredentials is returned by Validate when sample values are still in place.
	ErrPlaceholderCredentials = errors.New("sms: placeholder gateway credentials")

	// ErrUnauthorized is returned when the gateway rejects freshly issued credentials.
	ErrUnauthorized = errors.New("sms: gateway rejected credentials")
)

// Status is the gateway verdict for a single message.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
)

// Result is what the gateway said about a message.
type Result struct {
	Status Status
	// ProviderID is the gateway message id, empty if none was returned.
	ProviderID string
	// Reason is set for StatusFailed.
	Reason string
}

// Sender delivers a text message to a phone number made of digits only.
// A non-nil error means the outcome is unknown (transport, timeout, auth).
type Sender interface {
	Send(ctx context.Context, phone, message string) (Result, error)
}
