package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"
)

const (
	DefaultEskizBaseURL = "https://notify.eskiz.uz"
	DefaultEskizFrom    = "4546"

	eskizSendPath  = "/api/message/sms/send"
	eskizLoginPath = "/api/auth/login"

	maxResponseBody = 64 << 10
)

var placeholderCredentials = []string{"your_email@example.com", "your_password", "your_token"}

// EskizConfig configures the Eskiz client. Token wins over Email/Password
// until the gateway answers 401, after which the client logs in itself.
type EskizConfig struct {
	BaseURL  string
	Email    string
	Password string
	Token    string
	From     string

	HTTPClient *http.Client
	// LoginAttempts bounds retries of the login call. Zero means 3.
	LoginAttempts uint64
	// LoginBackoff is the first fibonacci step between login attempts.
	LoginBackoff time.Duration
}

// Validate rejects configs that would never authenticate. In production it
// also rejects the sample values shipped in .env.example.
func (c EskizConfig) Validate(production bool) error {
	if c.Token == "" && (c.Email == "" || c.Password == "") {
		return ErrNotConfigured
	}

	if !production {
		return nil
	}

	for _, v := range []string{c.Email, c.Password, c.Token} {
		if lo.Contains(placeholderCredentials, v) {
			return ErrPlaceholderCredentials
		}
	}

	return nil
}

// Eskiz is a Sender backed by the Eskiz REST API.
type Eskiz struct {
	cfg   EskizConfig
	hc    *http.Client
	token *atomic.String
}

func NewEskiz(cfg EskizConfig) *Eskiz {
	cfg.BaseURL = strings.TrimRight(lo.CoalesceOrEmpty(cfg.BaseURL, DefaultEskizBaseURL), "/")
	cfg.From = lo.CoalesceOrEmpty(cfg.From, DefaultEskizFrom)
	if cfg.LoginAttempts == 0 {
		cfg.LoginAttempts = 3
	}
	if cfg.LoginBackoff <= 0 {
		cfg.LoginBackoff = 200 * time.Millisecond
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}

	return &Eskiz{cfg: cfg, hc: hc, token: atomic.NewString(cfg.Token)}
}

type eskizSendRequest struct {
	MobilePhone string `json:"mobile_phone"`
	Message     string `json:"message"`
	From        string `json:"from"`
}

type eskizSendResponse struct {
	ID      providerID `json:"id"`
	Status  string     `json:"status"`
	Message string     `json:"message"`
}

// providerID accepts the gateway id as either a JSON string or number.
type providerID string

func (p *providerID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = providerID(s)
		return nil
	}
	if string(b) == "null" {
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = providerID(n.String())
	return nil
}

type eskizLoginResponse struct {
	Message string `json:"message"`
	Data    struct {
		Token string `json:"token"`
	} `json:"data"`
}

func (e *Eskiz) Send(ctx context.Context, phone, message string) (Result, error) {
	token, err := e.currentToken(ctx)
	if err != nil {
		return Result{}, err
	}

	res, status, err := e.send(ctx, token, phone, message)
	if err != nil {
		return Result{}, err
	}

	if status == http.StatusUnauthorized {
		if !e.canLogin() {
			return Result{}, ErrUnauthorized
		}

		slog.WarnContext(ctx, "eskiz token rejected, logging in again")
		e.token.CompareAndSwap(token, "")

		token, err = e.login(ctx)
		if err != nil {
			return Result{}, err
		}

		res, status, err = e.send(ctx, token, phone, message)
		if err != nil {
			return Result{}, err
		}
		if status == http.StatusUnauthorized {
			return Result{}, ErrUnauthorized
		}
	}

	return res, nil
}

func (e *Eskiz) send(ctx context.Context, token, phone, message string) (Result, int, error) {
	body, err := json.Marshal(eskizSendRequest{MobilePhone: phone, Message: message, From: e.cfg.From})
	if err != nil {
		return Result{}, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+eskizSendPath, bytes.NewReader(body))
	if err != nil {
		return Result{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := e.hc.Do(req)
	if err != nil {
		return Result{}, 0, fmt.Errorf("sms: eskiz send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return Result{}, resp.StatusCode, nil
	}

	var out eskizSendResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&out)

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{}, resp.StatusCode, fmt.Errorf("sms: eskiz send: unexpected status %d", resp.StatusCode)
	}
	if decodeErr != nil && resp.StatusCode < http.StatusBadRequest {
		return Result{}, resp.StatusCode, fmt.Errorf("sms: eskiz send: decode response: %w", decodeErr)
	}

	return toResult(resp.StatusCode, out), resp.StatusCode, nil
}

func toResult(httpStatus int, out eskizSendResponse) Result {
	res := Result{ProviderID: string(out.ID)}

	if httpStatus >= http.StatusBadRequest {
		res.Status = StatusFailed
		res.Reason = lo.CoalesceOrEmpty(out.Message, fmt.Sprintf("gateway status %d", httpStatus))
		return res
	}

	switch strings.ToLower(out.Status) {
	case "waiting":
		res.Status = StatusPending
	case "success", "delivered":
		res.Status = StatusSuccess
	default:
		res.Status = StatusFailed
		res.Reason = lo.CoalesceOrEmpty(out.Message, "gateway status "+lo.CoalesceOrEmpty(out.Status, "unknown"))
	}

	return res
}

func (e *Eskiz) canLogin() bool {
	return e.cfg.Email != "" && e.cfg.Password != ""
}

func (e *Eskiz) currentToken(ctx context.Context) (string, error) {
	if t := e.token.Load(); t != "" {
		return t, nil
	}
	if !e.canLogin() {
		return "", ErrNotConfigured
	}

	return e.login(ctx)
}

// login fetches a new token, retrying transport and 5xx failures.
func (e *Eskiz) login(ctx context.Context) (string, error) {
	b := retry.NewFibonacci(e.cfg.LoginBackoff)
	b = retry.WithCappedDuration(2*time.Second, b)
	b = retry.WithMaxRetries(e.cfg.LoginAttempts-1, b)

	var token string
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		t, err := e.loginOnce(ctx)
		if err != nil {
			var re *retryableLoginError
			if errors.As(err, &re) {
				slog.WarnContext(ctx, "eskiz login attempt failed", "error", err)
				return retry.RetryableError(err)
			}
			return err
		}

		token = t
		return nil
	})
	if err != nil {
		return "", err
	}

	e.token.Store(token)
	return token, nil
}

type retryableLoginError struct{ err error }

func (r *retryableLoginError) Error() string { return r.err.Error() }

func (r *retryableLoginError) Unwrap() error { return r.err }

func (e *Eskiz) loginOnce(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{"email": e.cfg.Email, "password": e.cfg.Password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+eskizLoginPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.hc.Do(req)
	if err != nil {
		return "", &retryableLoginError{err: fmt.Errorf("sms: eskiz login: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", &retryableLoginError{err: fmt.Errorf("sms: eskiz login: unexpected status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusUnauthorized:
		return "", ErrUnauthorized
	case resp.StatusCode >= http.StatusBadRequest:
		return "", fmt.Errorf("sms: eskiz login: unexpected status %d", resp.StatusCode)
	}

	var out eskizLoginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&out); err != nil {
		return "", fmt.Errorf("sms: eskiz login: decode response: %w", err)
	}
	if out.Data.Token == "" {
		return "", fmt.Errorf("sms: eskiz login: empty token")
	}

	return out.Data.Token, nil
}
