package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type SendCodeInput struct {
	Phone       string `validate:"required,max=32"`
	CountryCode string `validate:"required,max=8"`
}

type SendCodeOutput struct {
	Delivery entity.DeliveryStatus
	SMSID    string
	Reason   string
}

// SendCode issues a registration code for a phone that has no account yet.
func (s *Usecase) SendCode(ctx context.Context, in SendCodeInput) (*SendCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "SendCode")
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
	if exists {
		return nil, goerror.NewBusiness("Phone already registered", goerror.CodeConflict)
	}

	return s.issueCode(ctx, key, entity.PurposeRegister)
}

// issueCode runs rate limit, generate, store and dispatch. Only the first
// three can fail the call; a failed dispatch is reported in the output.
func (s *Usecase) issueCode(ctx context.Context, key string, purpose entity.Purpose) (*SendCodeOutput, error) {
	now := s.clock.Now()

	allowed, err := s.limiter.TryAcquire(ctx, key, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to acquire otp rate limit", "phone_key", key, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !allowed {
		return nil, goerror.NewBusiness("Too many requests, please wait before requesting a new code", goerror.CodeTooManyRequest)
	}

	code, err := s.otpGen.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	rec := entity.OTP{
		PhoneKey:  key,
		Code:      code,
		Purpose:   purpose,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.otpTTL()),
	}
	if err := s.otpStore.Issue(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to store otp", "phone_key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	purposeAttr := attribute.String("purpose", purpose.String())
	if s.otpIssued != nil {
		s.otpIssued.Add(ctx, 1, metric.WithAttributes(purposeAttr))
	}

	res := s.deliver(ctx, entity.Notification{
		PhoneKey: key,
		Message:  s.smsMessage(purpose, code),
		Purpose:  purpose,
	})

	if s.otpDelivery != nil {
		s.otpDelivery.Add(ctx, 1, metric.WithAttributes(purposeAttr, attribute.String("status", string(res.Status))))
	}

	return &SendCodeOutput{Delivery: res.Status, SMSID: res.SMSID, Reason: res.Reason}, nil
}

// deliver hands n to the dispatcher under its own deadline. The request
// context only contributes values so a client hang-up does not drop the SMS.
func (s *Usecase) deliver(ctx context.Context, n entity.Notification) entity.DeliveryResult {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.smsTimeout())
	defer cancel()

	res := s.dispatcher.Send(dctx, n)
	if res.Status == entity.DeliveryFailed {
		slog.WarnContext(ctx, "otp delivery failed, code stays valid", "phone_key", n.PhoneKey, "reason", res.Reason)
	}

	return res
}
