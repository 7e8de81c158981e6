package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/smsauth/internal/data/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
)

type UpdateInput struct {
	UserID      int64  `validate:"required,gt=0"`
	ID          int64  `validate:"required,gt=0"`
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=5000"`
}

func (s *Usecase) Update(ctx context.Context, in UpdateInput) (*entity.Record, error) {
	ctx, span := s.startSpan(ctx, "Update")
	defer span.End()

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if err := s.authorize(ctx, in.UserID); err != nil {
		return nil, err
	}

	rec, err := s.repoDB.UpdateRecord(ctx, entity.RecordUpdate{
		ID:          in.ID,
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		UpdatedAt:   s.clock.Now(),
	})
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errRecordNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update record", "user_id", in.UserID, "id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return rec, nil
}
