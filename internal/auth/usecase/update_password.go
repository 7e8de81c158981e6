package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
	"github.com/shandysiswandi/smsauth/internal/pkg/phone"
)

type UpdatePasswordInput struct {
	Phone           string `validate:"required,max=32"`
	CountryCode     string `validate:"omitempty,max=8"`
	Code            string `validate:"required,otpcode"`
	NewPassword     string `validate:"required,password"`
	ConfirmPassword string `validate:"required"`
}

// UpdatePassword completes a reset started by ForgotPassword.
func (s *Usecase) UpdatePassword(ctx context.Context, in UpdatePasswordInput) error {
	ctx, span := s.startSpan(ctx, "UpdatePassword")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if in.NewPassword != in.ConfirmPassword {
		return goerror.NewInvalidInput(nil, "confirm_password", "Confirm password must match new password")
	}

	key := phone.Key(in.Phone, in.CountryCode)

	otp, err := s.checkCode(ctx, key, in.Code, entity.PurposeResetPassword)
	if err != nil {
		return err
	}

	acc, err := s.repoDB.FindByPhone(ctx, key)
	if errors.Is(err, goerror.ErrNotFound) {
		if err := s.otpStore.Invalidate(ctx, key); err != nil {
			slog.WarnContext(ctx, "failed to invalidate orphan otp", "phone_key", key, "error", err)
		}
		return errPhoneNotRegistered()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find by phone", "phone_key", key, "error", err)
		return goerror.NewServer(err)
	}

	hashed, err := s.hash.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.consumeCode(ctx, key, in.Code); err != nil {
		return err
	}

	if err := s.repoDB.UpdatePasswordHash(ctx, acc.ID, string(hashed)); err != nil {
		slog.ErrorContext(ctx, "failed to repo update password hash", "user_id", acc.ID, "error", err)
		s.restoreCode(ctx, otp)
		return goerror.NewServer(err)
	}

	return nil
}
