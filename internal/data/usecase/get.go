package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/smsauth/internal/data/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
)

type GetInput struct {
	UserID int64
	ID     int64
}

func (s *Usecase) Get(ctx context.Context, in GetInput) (*entity.Record, error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer span.End()

	if err := s.authorize(ctx, in.UserID); err != nil {
		return nil, err
	}

	rec, err := s.repoDB.GetRecord(ctx, in.UserID, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errRecordNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get record", "user_id", in.UserID, "id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return rec, nil
}
