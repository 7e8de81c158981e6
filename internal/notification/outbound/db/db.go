package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/smsauth/internal/notification/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	queryCreateDelivery = `INSERT INTO sms_deliveries (id, phone_key, purpose, provider_id, status, reason, correlation_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	queryListDeliveriesByPhone = `SELECT id, phone_key, purpose, provider_id, status, reason, correlation_id, created_at
FROM sms_deliveries WHERE phone_key = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) CreateDelivery(ctx context.Context, d entity.Delivery) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDelivery")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateDelivery,
		d.ID, d.PhoneKey, d.Purpose, d.ProviderID, d.Status.String(), d.Reason, d.CorrelationID, d.CreatedAt,
	)

	return err
}

// ListDeliveriesByPhone returns the latest attempts for a phone key, newest first.
func (s *DB) ListDeliveriesByPhone(ctx context.Context, phoneKey string, limit int32) (_ []entity.Delivery, err error) {
	ctx, span := s.startSpan(ctx, "ListDeliveriesByPhone")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, queryListDeliveriesByPhone, phoneKey, limit)
	if err != nil {
		return nil, err
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Delivery, error) {
		var (
			d      entity.Delivery
			status string
		)
		err := row.Scan(&d.ID, &d.PhoneKey, &d.Purpose, &d.ProviderID, &status, &d.Reason, &d.CorrelationID, &d.CreatedAt)
		d.Status = entity.DeliveryStatus(status)
		return d, err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
