package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/smsauth/internal/data/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
)

const (
	recordColumns = `id, user_id, title, description, created_at, updated_at`

	queryCreateRecord = `INSERT INTO data_records (id, user_id, title, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)`

	queryListRecords = `SELECT ` + recordColumns + `
FROM data_records WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	queryCountRecords = `SELECT COUNT(*) FROM data_records WHERE user_id = $1`

	queryGetRecord = `SELECT ` + recordColumns + `
FROM data_records WHERE user_id = $1 AND id = $2`

	queryUpdateRecord = `UPDATE data_records SET title = $3, description = $4, updated_at = $5
WHERE user_id = $1 AND id = $2
RETURNING ` + recordColumns

	queryDeleteRecord = `DELETE FROM data_records WHERE user_id = $1 AND id = $2`
)

func scanRecord(row pgx.Row) (*entity.Record, error) {
	var rec entity.Record
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}

	return &rec, nil
}

// CreateRecord returns goerror.ErrNotFound when the owner account is gone.
func (s *DB) CreateRecord(ctx context.Context, rec entity.NewRecord) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRecord")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateRecord, rec.ID, rec.UserID, rec.Title, rec.Description, rec.CreatedAt)
	err = s.mapError(err)

	return err
}

// ListRecords returns one page plus the owner's total record count.
func (s *DB) ListRecords(ctx context.Context, filter entity.RecordListFilter) (_ []entity.Record, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "ListRecords")
	defer func() { s.endSpan(span, err) }()

	var total int64
	if err = s.conn.QueryRow(ctx, queryCountRecords, filter.UserID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.conn.Query(ctx, queryListRecords, filter.UserID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Record, error) {
		rec, err := scanRecord(row)
		if err != nil {
			return entity.Record{}, err
		}
		return *rec, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (s *DB) GetRecord(ctx context.Context, userID, id int64) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "GetRecord")
	defer func() { s.endSpan(span, err) }()

	rec, err := scanRecord(s.conn.QueryRow(ctx, queryGetRecord, userID, id))
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return rec, nil
}

func (s *DB) UpdateRecord(ctx context.Context, upd entity.RecordUpdate) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "UpdateRecord")
	defer func() { s.endSpan(span, err) }()

	rec, err := scanRecord(s.conn.QueryRow(ctx, queryUpdateRecord,
		upd.UserID, upd.ID, upd.Title, upd.Description, upd.UpdatedAt,
	))
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return rec, nil
}

func (s *DB) DeleteRecord(ctx context.Context, userID, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteRecord")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryDeleteRecord, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}
