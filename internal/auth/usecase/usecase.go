package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/config"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
	"github.com/shandysiswandi/smsauth/internal/pkg/hash"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/jwt"
	"github.com/shandysiswandi/smsauth/internal/pkg/otpcode"
	"github.com/shandysiswandi/smsauth/internal/pkg/phone"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
	"github.com/shandysiswandi/smsauth/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultOTPTTL     = 5 * time.Minute
	defaultSMSTimeout = 10 * time.Second

	codePlaceholder         = "{code}"
	defaultRegisterTemplate = "Your verification code is {code}"
	defaultResetTemplate    = "Your password reset code is {code}"
)

type repoDB interface {
	ExistsByPhone(ctx context.Context, phoneKey string) (bool, error)
	CreateAccount(ctx context.Context, acc entity.NewAccount) (int64, error)
	FindByPhone(ctx context.Context, phoneKey string) (*entity.Account, error)
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
}

// OTPStore keeps at most one live code per phone key. Peek returns
// goerror.ErrNotFound for absent or expired codes. Consume deletes the code
// only when it still equals code, returning entity.ErrOTPMismatch otherwise.
type OTPStore interface {
	Issue(ctx context.Context, rec entity.OTP) error
	Peek(ctx context.Context, phoneKey string) (*entity.OTP, error)
	Consume(ctx context.Context, phoneKey, code string) error
	Invalidate(ctx context.Context, phoneKey string) error
}

// RateLimiter refuses a second acquisition inside its window without
// moving the window.
type RateLimiter interface {
	TryAcquire(ctx context.Context, phoneKey string, now time.Time) (bool, error)
}

// Dispatcher delivers a code and reports the outcome instead of failing.
type Dispatcher interface {
	Send(ctx context.Context, n entity.Notification) entity.DeliveryResult
}

type Usecase struct {
	repoDB     repoDB
	otpStore   OTPStore
	limiter    RateLimiter
	dispatcher Dispatcher
	validator  validator.Validator
	cfg        config.Config
	hash       hash.Hash
	otpGen     otpcode.Generator
	uid        uid.NumberID
	clock      clock.Clocker
	jwt        jwt.JWT
	ins        instrument.Instrumentation

	otpIssued   metric.Int64Counter
	otpDelivery metric.Int64Counter
}

type Dependency struct {
	RepoDB       repoDB
	OTPStore     OTPStore
	RateLimiter  RateLimiter
	Dispatcher   Dispatcher
	Validator    validator.Validator
	Config       config.Config
	PasswordHash hash.Hash
	OTPGenerator otpcode.Generator
	UID          uid.NumberID
	Clock        clock.Clocker
	JWT          jwt.JWT
	Instrument   instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:     dep.RepoDB,
		otpStore:   dep.OTPStore,
		limiter:    dep.RateLimiter,
		dispatcher: dep.Dispatcher,
		validator:  dep.Validator,
		cfg:        dep.Config,
		hash:       dep.PasswordHash,
		otpGen:     dep.OTPGenerator,
		uid:        dep.UID,
		clock:      dep.Clock,
		jwt:        dep.JWT,
		ins:        dep.Instrument,
	}

	meter := s.ins.Meter("auth.usecase")

	var err error
	s.otpIssued, err = meter.Int64Counter("auth.otp.issued", metric.WithDescription("Verification codes issued"))
	if err != nil {
		slog.Warn("failed to create metric auth.otp.issued", "error", err)
	}
	s.otpDelivery, err = meter.Int64Counter("auth.otp.delivery", metric.WithDescription("Verification code deliveries by status"))
	if err != nil {
		slog.Warn("failed to create metric auth.otp.delivery", "error", err)
	}

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) otpTTL() time.Duration {
	if d := s.cfg.GetSecond("modules.auth.otp.ttl_seconds"); d > 0 {
		return d
	}
	return defaultOTPTTL
}

func (s *Usecase) smsTimeout() time.Duration {
	if d := s.cfg.GetSecond("modules.auth.sms.timeout_seconds"); d > 0 {
		return d
	}
	return defaultSMSTimeout
}

func (s *Usecase) smsMessage(purpose entity.Purpose, code string) string {
	key, tmpl := "modules.auth.sms.register_template", defaultRegisterTemplate
	if purpose == entity.PurposeResetPassword {
		key, tmpl = "modules.auth.sms.reset_template", defaultResetTemplate
	}
	if v := s.cfg.GetString(key); v != "" {
		tmpl = v
	}

	if !strings.Contains(tmpl, codePlaceholder) {
		tmpl += " " + codePlaceholder
	}

	return strings.ReplaceAll(tmpl, codePlaceholder, code)
}

type phoneKeyCheck struct {
	Phone string `validate:"phonekey"`
}

// phoneKey normalizes raw against countryCode and rejects keys that cannot be
// a mobile number.
func (s *Usecase) phoneKey(raw, countryCode string) (string, error) {
	key := phone.Key(raw, countryCode)
	if err := s.validator.Validate(phoneKeyCheck{Phone: key}); err != nil {
		return "", goerror.NewInvalidInput(err)
	}

	return key, nil
}
