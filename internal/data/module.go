package data

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/smsauth/internal/data/inbound"
	"github.com/shandysiswandi/smsauth/internal/data/outbound/db"
	"github.com/shandysiswandi/smsauth/internal/data/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/config"
	"github.com/shandysiswandi/smsauth/internal/pkg/idempotency"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/router"
	"github.com/shandysiswandi/smsauth/internal/pkg/storage"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
	"github.com/shandysiswandi/smsauth/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`

	Idempotency idempotency.Idempotency
	// Export is only mounted when set.
	Storage storage.Storage
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:      db.NewDB(dep.DBConn, dep.Instrument),
		Validator:   dep.Validator,
		Config:      dep.Config,
		UID:         dep.UID,
		UUID:        dep.UUID,
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
		Idempotency: dep.Idempotency,
		Storage:     dep.Storage,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.Options{ExportEnabled: dep.Storage != nil})

	return nil
}
