package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/smsauth/internal/data/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/config"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
	"github.com/shandysiswandi/smsauth/internal/pkg/idempotency"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/jwt"
	"github.com/shandysiswandi/smsauth/internal/pkg/storage"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
	"github.com/shandysiswandi/smsauth/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPageSize int32 = 20
	maxPageSize     int32 = 100

	defaultExportURLTTL = 15 * time.Minute
)

type repoDB interface {
	CreateRecord(ctx context.Context, rec entity.NewRecord) error
	ListRecords(ctx context.Context, filter entity.RecordListFilter) ([]entity.Record, int64, error)
	GetRecord(ctx context.Context, userID, id int64) (*entity.Record, error)
	UpdateRecord(ctx context.Context, upd entity.RecordUpdate) (*entity.Record, error)
	DeleteRecord(ctx context.Context, userID, id int64) error
}

type Usecase struct {
	repoDB    repoDB
	idemp     idempotency.Idempotency
	storage   storage.Storage
	validator validator.Validator
	cfg       config.Config
	uid       uid.NumberID
	uuid      uid.StringID
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	Validator  validator.Validator
	Config     config.Config
	UID        uid.NumberID
	UUID       uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation

	// Optional. Without it Create ignores idempotency keys.
	Idempotency idempotency.Idempotency
	// Optional. Without it Export is unavailable.
	Storage storage.Storage
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		idemp:     dep.Idempotency,
		storage:   dep.Storage,
		validator: dep.Validator,
		cfg:       dep.Config,
		uid:       dep.UID,
		uuid:      dep.UUID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("data.usecase").Start(ctx, name)
}

// authorize lets a token act only on its own records.
func (s *Usecase) authorize(ctx context.Context, userID int64) error {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	if clm.UserID != userID {
		return goerror.NewBusiness("You do not have access to these records", goerror.CodeForbidden)
	}

	return nil
}

func errRecordNotFound() error {
	return goerror.NewBusiness("Record not found", goerror.CodeNotFound)
}
