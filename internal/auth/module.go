package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/smsauth/internal/auth/inbound"
	"github.com/shandysiswandi/smsauth/internal/auth/outbound/cache"
	"github.com/shandysiswandi/smsauth/internal/auth/outbound/db"
	"github.com/shandysiswandi/smsauth/internal/auth/outbound/memory"
	"github.com/shandysiswandi/smsauth/internal/auth/outbound/mq"
	smsout "github.com/shandysiswandi/smsauth/internal/auth/outbound/sms"
	"github.com/shandysiswandi/smsauth/internal/auth/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/config"
	"github.com/shandysiswandi/smsauth/internal/pkg/hash"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/jwt"
	"github.com/shandysiswandi/smsauth/internal/pkg/messaging"
	"github.com/shandysiswandi/smsauth/internal/pkg/otpcode"
	"github.com/shandysiswandi/smsauth/internal/pkg/router"
	"github.com/shandysiswandi/smsauth/internal/pkg/sms"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
	"github.com/shandysiswandi/smsauth/internal/pkg/validator"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"

	DispatcherDirect = "direct"
	DispatcherQueue  = "queue"

	defaultRateLimitWindow = 5 * time.Minute
)

var (
	ErrUnknownStore      = errors.New("auth: unknown otp store driver")
	ErrUnknownDispatcher = errors.New("auth: unknown sms dispatcher driver")
	ErrMissingRedis      = errors.New("auth: redis store selected without a redis client")
	ErrMissingMessaging  = errors.New("auth: queue dispatcher selected without messaging")
	ErrMissingSMSSender  = errors.New("auth: direct dispatcher selected without an sms sender")
)

type Dependency struct {
	DBConn       *pgxpool.Pool              `validate:"required"`
	Router       *router.Router             `validate:"required"`
	Config       config.Config              `validate:"required"`
	Instrument   instrument.Instrumentation `validate:"required"`
	UID          uid.NumberID               `validate:"required"`
	Clock        clock.Clocker              `validate:"required"`
	Validator    validator.Validator        `validate:"required"`
	PasswordHash hash.Hash                  `validate:"required"`
	OTPGenerator otpcode.Generator          `validate:"required"`
	JWT          jwt.JWT                    `validate:"required"`

	// Required by the redis store.
	CacheConn redis.UniversalClient
	// Required by the queue dispatcher.
	Messaging messaging.Messaging
	// Required by the direct dispatcher.
	SMS sms.Sender
}

type otpBackend interface {
	usecase.OTPStore
	usecase.RateLimiter
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	backend, err := newOTPBackend(dep)
	if err != nil {
		return err
	}

	dispatcher, err := newDispatcher(dep)
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:       db.NewDB(dep.DBConn, dep.Instrument),
		OTPStore:     backend,
		RateLimiter:  backend,
		Dispatcher:   dispatcher,
		Validator:    dep.Validator,
		Config:       dep.Config,
		PasswordHash: dep.PasswordHash,
		OTPGenerator: dep.OTPGenerator,
		UID:          dep.UID,
		Clock:        dep.Clock,
		JWT:          dep.JWT,
		Instrument:   dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, router.Throttle(router.ThrottleConfig{
		RequestsPerSecond: dep.Config.GetFloat64("modules.auth.throttle.requests_per_second"),
		Burst:             dep.Config.GetInt("modules.auth.throttle.burst"),
		TTL:               dep.Config.GetMinute("modules.auth.throttle.ttl_minutes"),
	}))

	return nil
}

func rateLimitWindow(cfg config.Config) time.Duration {
	if d := cfg.GetSecond("modules.auth.otp.rate_limit_window_seconds"); d > 0 {
		return d
	}
	return defaultRateLimitWindow
}

func newOTPBackend(dep Dependency) (otpBackend, error) {
	window := rateLimitWindow(dep.Config)

	switch driver := strings.ToLower(strings.TrimSpace(dep.Config.GetString("modules.auth.store.driver"))); driver {
	case "", StoreRedis:
		if dep.CacheConn == nil {
			return nil, ErrMissingRedis
		}
		return cache.New(dep.CacheConn, dep.Clock, dep.Instrument, window), nil
	case StoreMemory:
		return struct {
			*memory.OTPStore
			*memory.RateLimiter
		}{memory.NewOTPStore(dep.Clock), memory.NewRateLimiter(window)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, driver)
	}
}

func newDispatcher(dep Dependency) (usecase.Dispatcher, error) {
	switch driver := strings.ToLower(strings.TrimSpace(dep.Config.GetString("modules.auth.dispatcher.driver"))); driver {
	case "", DispatcherDirect:
		if dep.SMS == nil {
			return nil, ErrMissingSMSSender
		}
		return smsout.NewDispatcher(dep.SMS, dep.Instrument), nil
	case DispatcherQueue:
		if dep.Messaging == nil {
			return nil, ErrMissingMessaging
		}
		return mq.NewMessaging(dep.Messaging, dep.Instrument), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDispatcher, driver)
	}
}
