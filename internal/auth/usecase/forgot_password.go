package usecase

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
)

type ForgotPasswordInput struct {
	Phone       string `validate:"required,max=32"`
	CountryCode string `validate:"required,max=8"`
}

func errPhoneNotRegistered() error {
	return goerror.NewBusiness("Phone not registered", goerror.CodeNotFound, goerror.WithStatus(http.StatusBadRequest))
}

// ForgotPassword issues a reset code for an existing account.
func (s *Usecase) ForgotPassword(ctx context.Context, in ForgotPasswordInput) (*SendCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "ForgotPassword")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	key, err := s.phoneKey(in.Phone, in.CountryCode)
	if err != nil {
		return nil, err
	}

	exists, err := s.repoDB.ExistsByPhone(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo exists by phone", "phone_key", key, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !exists {
		return nil, errPhoneNotRegistered()
	}

	return s.issueCode(ctx, key, entity.PurposeResetPassword)
}
