package notification

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/smsauth/internal/notification/inbound"
	"github.com/shandysiswandi/smsauth/internal/notification/outbound/db"
	"github.com/shandysiswandi/smsauth/internal/notification/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/config"
	"github.com/shandysiswandi/smsauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/messaging"
	"github.com/shandysiswandi/smsauth/internal/pkg/router"
	"github.com/shandysiswandi/smsauth/internal/pkg/sms"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
	"github.com/shandysiswandi/smsauth/internal/pkg/validator"
)

// ErrMissingConsumer is returned when consumers are enabled without a broker.
var ErrMissingConsumer = errors.New("notification: consumers enabled without messaging")

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	SMS        sms.Sender                 `validate:"required"`

	// Consumers only start when Ctx, Goroutine and Messaging are all set.
	Ctx       context.Context
	Goroutine *goroutine.Manager
	Messaging messaging.Consumer
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		Sender:     dep.SMS,
		Validator:  dep.Validator,
		Config:     dep.Config,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	if len(dep.Config.GetArray("modules.notification.consumer_names")) == 0 {
		return nil
	}
	if dep.Messaging == nil {
		return ErrMissingConsumer
	}
	if dep.Ctx != nil && dep.Goroutine != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
