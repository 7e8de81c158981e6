package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels returned by repositories and stores; usecases translate them.
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource conflict")
)

// Type is the bucket an error falls into: who is at fault.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

var typeNames = [...]string{
	TypeServer:     "server",
	TypeBusiness:   "business",
	TypeValidation: "validation",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// Code identifies the failure independently of its message and picks the
// default HTTP status.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeTooManyRequest
	CodeUnauthorized
	CodeForbidden
)

type codeInfo struct {
	name   string
	status int
}

// Duplicates and bad input share 400 so auth flows leak nothing extra.
var codes = map[Code]codeInfo{
	CodeInternal:       {"internal", http.StatusInternalServerError},
	CodeInvalidFormat:  {"invalid_format", http.StatusBadRequest},
	CodeInvalidInput:   {"invalid_input", http.StatusBadRequest},
	CodeNotFound:       {"not_found", http.StatusNotFound},
	CodeConflict:       {"conflict", http.StatusBadRequest},
	CodeTooManyRequest: {"too_many_requests", http.StatusTooManyRequests},
	CodeUnauthorized:   {"unauthorized", http.StatusUnauthorized},
	CodeForbidden:      {"forbidden", http.StatusForbidden},
}

func (c Code) info() codeInfo {
	if ci, ok := codes[c]; ok {
		return ci
	}
	return codes[CodeInternal]
}

func (c Code) String() string {
	return c.info().name
}

// Error is what usecases return to transports: a client-safe message, a
// classification, and optionally the cause and per-field messages.
type Error struct {
	cause  error
	msg    string
	kind   Type
	code   Code
	status int
	fields map[string]string
}

type Option func(*Error)

// WithStatus overrides the status the code would map to.
func WithStatus(status int) Option {
	return func(e *Error) { e.status = status }
}

// WithCause keeps the underlying error for errors.Is/As and logs.
func WithCause(err error) Option {
	return func(e *Error) { e.cause = err }
}

func (e *Error) Error() string {
	switch {
	case e.cause != nil:
		return e.cause.Error()
	case e.msg != "":
		return e.msg
	default:
		return e.kind.String() + " error"
	}
}

// String is the verbose form used when logging.
func (e *Error) String() string {
	return fmt.Sprintf("goerror{type=%s code=%s msg=%q cause=%v}", e.kind, e.code, e.msg, e.cause)
}

func (e *Error) Msg() string { return e.msg }
func (e *Error) Type() Type { return e.kind }
func (e *Error) Code() Code { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error { return e.cause }

func (e *Error) StatusCode() int {
	if e.status != 0 {
		return e.status
	}
	return e.code.info().status
}

func build(kind Type, code Code, msg string, opts ...Option) *Error {
	e := &Error{kind: kind, code: code, msg: msg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewServer hides err behind a generic message; the cause stays for logs.
func NewServer(err error) error {
	return build(TypeServer, CodeInternal, "Internal server error", WithCause(err))
}

func NewBusiness(msg string, code Code, opts ...Option) error {
	return build(TypeBusiness, code, msg, opts...)
}

// NewInvalidInput wraps a validator error, or, when err is nil, builds
// field messages from kv pairs. An odd kv count is a malformed request.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return build(TypeValidation, CodeInvalidInput, "Validation error", WithCause(err))
	}
	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	e := build(TypeValidation, CodeInvalidInput, "Validation error")
	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}
	return e
}

func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return build(TypeValidation, CodeInvalidFormat, msg)
}
