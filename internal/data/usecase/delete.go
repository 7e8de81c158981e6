package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
)

type DeleteInput struct {
	UserID int64
	ID     int64
}

func (s *Usecase) Delete(ctx context.Context, in DeleteInput) error {
	ctx, span := s.startSpan(ctx, "Delete")
	defer span.End()

	if err := s.authorize(ctx, in.UserID); err != nil {
		return err
	}

	err := s.repoDB.DeleteRecord(ctx, in.UserID, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return errRecordNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete record", "user_id", in.UserID, "id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
