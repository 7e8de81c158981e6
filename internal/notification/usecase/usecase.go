package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/smsauth/internal/notification/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/config"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/jwt"
	"github.com/shandysiswandi/smsauth/internal/pkg/sms"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
	"github.com/shandysiswandi/smsauth/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultSendTimeout  = 10 * time.Second
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// ErrGatewayUnavailable means the gateway outcome is unknown and the message
// may be retried.
var ErrGatewayUnavailable = errors.New("notification: sms gateway unavailable")

type repoDB interface {
	CreateDelivery(ctx context.Context, d entity.Delivery) error
	ListDeliveriesByPhone(ctx context.Context, phoneKey string, limit int32) ([]entity.Delivery, error)
}

type Usecase struct {
	repoDB    repoDB
	sender    sms.Sender
	validator validator.Validator
	cfg       config.Config
	uid       uid.NumberID
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	Sender     sms.Sender
	Validator  validator.Validator
	Config     config.Config
	UID        uid.NumberID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		sender:    dep.Sender,
		validator: dep.Validator,
		cfg:       dep.Config,
		uid:       dep.UID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) sendTimeout() time.Duration {
	if d := s.cfg.GetSecond("modules.notification.sms.timeout_seconds"); d > 0 {
		return d
	}
	return defaultSendTimeout
}

type DeliverOTPInput struct {
	PhoneKey string `validate:"required,phonekey"`
	Message  string `validate:"required,max=918"`
	Purpose  string `validate:"required,oneof=register reset_password"`
}

// DeliverOTP texts a queued code and logs the attempt. Malformed input is
// dropped. ErrGatewayUnavailable is returned when the gateway could not be
// reached so the caller may redeliver.
func (s *Usecase) DeliverOTP(ctx context.Context, in DeliverOTPInput) error {
	ctx, span := s.startSpan(ctx, "DeliverOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "dropping invalid otp delivery", "phone_key", in.PhoneKey, "error", err)
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout())
	res, sendErr := s.sender.Send(sendCtx, in.PhoneKey, in.Message)
	cancel()

	d := entity.Delivery{
		ID:            s.uid.Generate(),
		PhoneKey:      in.PhoneKey,
		Purpose:       in.Purpose,
		ProviderID:    res.ProviderID,
		CorrelationID: instrument.GetCorrelationID(ctx),
		CreatedAt:     s.clock.Now(),
	}
	switch {
	case sendErr != nil:
		d.Status = entity.DeliveryStatusFailed
		d.Reason = "sms gateway unavailable"
		if errors.Is(sendErr, context.DeadlineExceeded) {
			d.Reason = "sms gateway timeout"
		}
	case res.Status == sms.StatusSuccess:
		d.Status = entity.DeliveryStatusSent
	case res.Status == sms.StatusPending:
		d.Status = entity.DeliveryStatusPending
	default:
		d.Status = entity.DeliveryStatusFailed
		d.Reason = res.Reason
	}

	if err := s.repoDB.CreateDelivery(ctx, d); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery", "phone_key", in.PhoneKey, "error", err)
	}

	if sendErr != nil {
		slog.ErrorContext(ctx, "failed to deliver otp", "phone_key", in.PhoneKey, "purpose", in.Purpose, "error", sendErr)
		return errors.Join(ErrGatewayUnavailable, sendErr)
	}

	slog.InfoContext(ctx, "otp delivery recorded", "phone_key", in.PhoneKey, "purpose", in.Purpose, "status", d.Status)

	return nil
}

type ListDeliveriesInput struct {
	Limit int32
}

// ListDeliveries returns the SMS attempts for the phone of the calling account.
func (s *Usecase) ListDeliveries(ctx context.Context, in ListDeliveriesInput) ([]entity.Delivery, error) {
	ctx, span := s.startSpan(ctx, "ListDeliveries")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil || clm.PhoneKey == "" {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if in.Limit <= 0 || in.Limit > maxHistoryLimit {
		in.Limit = defaultHistoryLimit
	}

	out, err := s.repoDB.ListDeliveriesByPhone(ctx, clm.PhoneKey, in.Limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list deliveries", "phone_key", clm.PhoneKey, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}
