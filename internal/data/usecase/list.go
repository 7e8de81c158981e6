package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/smsauth/internal/data/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
)

type ListInput struct {
	UserID int64
	Page   int32
	Size   int32
}

type ListOutput struct {
	Page    int32
	Size    int32
	Total   int64
	Records []entity.Record
}

// List returns the owner's records newest first. Out of range page sizes
// fall back to the default.
func (s *Usecase) List(ctx context.Context, in ListInput) (*ListOutput, error) {
	ctx, span := s.startSpan(ctx, "List")
	defer span.End()

	if err := s.authorize(ctx, in.UserID); err != nil {
		return nil, err
	}

	if in.Size <= 0 || in.Size > maxPageSize {
		in.Size = defaultPageSize
	}
	page := max(in.Page, 1)

	records, total, err := s.repoDB.ListRecords(ctx, entity.RecordListFilter{
		UserID: in.UserID,
		Limit:  in.Size,
		Offset: int64(page-1) * int64(in.Size),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list records", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ListOutput{
		Page:    page,
		Size:    in.Size,
		Total:   total,
		Records: records,
	}, nil
}
