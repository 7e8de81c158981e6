package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
	"github.com/shandysiswandi/smsauth/internal/pkg/phone"
)

type LoginInput struct {
	Phone       string `validate:"required,max=32"`
	CountryCode string `validate:"omitempty,max=8"`
	Password    string `validate:"required,max=72"`
}

type LoginOutput struct {
	UserID      int64
	AccessToken string
}

func errIncorrectCredential() error {
	return goerror.NewBusiness("Incorrect phone or password", goerror.CodeInvalidInput)
}

// Login checks a password. Unknown phones and wrong passwords get the same answer.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	key := phone.Key(in.Phone, in.CountryCode)

	acc, err := s.repoDB.FindByPhone(ctx, key)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errIncorrectCredential()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find by phone", "phone_key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.hash.Verify(acc.PasswordHash, in.Password) {
		return nil, errIncorrectCredential()
	}

	token, err := s.jwt.Generate(acc.ID, acc.PhoneKey)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginOutput{UserID: acc.ID, AccessToken: token}, nil
}
