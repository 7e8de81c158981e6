// Package clock lets OTP expiry, rate-limit windows and token lifetimes be
// driven by a fixed instant in tests.
package clock
