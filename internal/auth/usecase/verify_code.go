package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
)

type VerifyCodeInput struct {
	Phone       string `validate:"required,max=32"`
	CountryCode string `validate:"required,max=8"`
	Code        string `validate:"required,otpcode"`
	Name        string `validate:"required,min=2,max=100,alphaspace"`
	Password    string `validate:"required,password"`
}

type VerifyCodeOutput struct {
	UserID int64
}

func errCodeNotFound() error {
	return goerror.NewBusiness("Verification code not found or expired", goerror.CodeNotFound, goerror.WithStatus(http.StatusBadRequest))
}

func errCodeInvalid() error {
	return goerror.NewBusiness("Invalid verification code", goerror.CodeInvalidInput)
}

// VerifyCode completes registration: the code is consumed and the account
// is created with the given name and password.
func (s *Usecase) VerifyCode(ctx context.Context, in VerifyCodeInput) (*VerifyCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyCode")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	key, err := s.phoneKey(in.Phone, in.CountryCode)
	if err != nil {
		return nil, err
	}

	otp, err := s.checkCode(ctx, key, in.Code, entity.PurposeRegister)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.consumeCode(ctx, key, in.Code); err != nil {
		return nil, err
	}

	id, err := s.repoDB.CreateAccount(ctx, entity.NewAccount{
		ID:           s.uid.Generate(),
		PhoneKey:     key,
		DisplayName:  in.Name,
		PasswordHash: string(hashed),
		CreatedAt:    s.clock.Now(),
	})
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("Phone already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create account", "phone_key", key, "error", err)
		s.restoreCode(ctx, otp)
		return nil, goerror.NewServer(err)
	}

	return &VerifyCodeOutput{UserID: id}, nil
}

// checkCode compares code with the live code for key without consuming it,
// so a mistyped code can be retried. The matched record is returned so it can
// be put back if the write that follows the consume fails.
func (s *Usecase) checkCode(ctx context.Context, key, code string, purpose entity.Purpose) (*entity.OTP, error) {
	rec, err := s.otpStore.Peek(ctx, key)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errCodeNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to peek otp", "phone_key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	if rec.Purpose != purpose || rec.Expired(s.clock.Now()) {
		return nil, errCodeNotFound()
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return nil, errCodeInvalid()
	}

	return rec, nil
}

// consumeCode deletes the code atomically. Losing a race to a concurrent
// verify or a re-issue reads as not found.
func (s *Usecase) consumeCode(ctx context.Context, key, code string) error {
	err := s.otpStore.Consume(ctx, key, code)
	if errors.Is(err, goerror.ErrNotFound) || errors.Is(err, entity.ErrOTPMismatch) {
		return errCodeNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume otp", "phone_key", key, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

// restoreCode re-issues a consumed code after the account write failed, so
// the user can retry with the same SMS instead of waiting out the send window.
// The original expiry is kept.
func (s *Usecase) restoreCode(ctx context.Context, otp *entity.OTP) {
	if otp == nil || otp.Expired(s.clock.Now()) {
		return
	}
	if err := s.otpStore.Issue(ctx, *otp); err != nil {
		slog.WarnContext(ctx, "failed to restore otp after write failure", "phone_key", otp.PhoneKey, "error", err)
	}
}
