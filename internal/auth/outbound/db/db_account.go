package db

import (
	"context"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
)

const (
	queryExistsByPhone = `SELECT EXISTS (SELECT 1 FROM accounts WHERE phone_key = $1)`

	queryCreateAccount = `INSERT INTO accounts (id, phone_key, display_name, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
RETURNING id`

	queryFindByPhone = `SELECT id, phone_key, display_name, password_hash, created_at, updated_at
FROM accounts WHERE phone_key = $1`

	queryUpdatePasswordHash = `UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`
)

func (s *DB) ExistsByPhone(ctx context.Context, phoneKey string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsByPhone")
	defer func() { s.endSpan(span, err) }()

	var exists bool
	if err := s.conn.QueryRow(ctx, queryExistsByPhone, phoneKey).Scan(&exists); err != nil {
		return false, s.mapError(err)
	}

	return exists, nil
}

// CreateAccount returns goerror.ErrConflict when the phone is taken.
func (s *DB) CreateAccount(ctx context.Context, acc entity.NewAccount) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer func() { s.endSpan(span, err) }()

	var id int64
	err = s.conn.QueryRow(ctx, queryCreateAccount,
		acc.ID, acc.PhoneKey, acc.DisplayName, acc.PasswordHash, acc.CreatedAt,
	).Scan(&id)
	if err != nil {
		err = s.mapError(err)
		return 0, err
	}

	return id, nil
}

func (s *DB) FindByPhone(ctx context.Context, phoneKey string) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "FindByPhone")
	defer func() { s.endSpan(span, err) }()

	var acc entity.Account
	err = s.conn.QueryRow(ctx, queryFindByPhone, phoneKey).Scan(
		&acc.ID, &acc.PhoneKey, &acc.DisplayName, &acc.PasswordHash, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return &acc, nil
}

func (s *DB) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdatePasswordHash")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryUpdatePasswordHash, id, passwordHash)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}
