package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/smsauth/internal/data/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
	"github.com/shandysiswandi/smsauth/internal/pkg/idempotency"
)

type CreateInput struct {
	UserID         int64  `validate:"required,gt=0"`
	Title          string `validate:"required,max=200"`
	Description    string `validate:"max=5000"`
	IdempotencyKey string `validate:"omitempty,max=128"`
}

type CreateOutput struct {
	Record entity.Record
	// Replayed is true when the record came from an earlier call with the
	// same idempotency key.
	Replayed bool
}

func (s *Usecase) Create(ctx context.Context, in CreateInput) (*CreateOutput, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if err := s.authorize(ctx, in.UserID); err != nil {
		return nil, err
	}

	if in.IdempotencyKey == "" || s.idemp == nil {
		rec, err := s.create(ctx, in)
		if err != nil {
			return nil, err
		}
		return &CreateOutput{Record: *rec}, nil
	}

	key := "data:create:" + strconv.FormatInt(in.UserID, 10) + ":" + in.IdempotencyKey
	payload, replayed, err := s.idemp.Exec(ctx, key, func(ctx context.Context) ([]byte, error) {
		rec, err := s.create(ctx, in)
		if err != nil {
			return nil, err
		}
		return json.Marshal(rec)
	})
	if errors.Is(err, idempotency.ErrInProgress) {
		return nil, goerror.NewBusiness("A request with this Idempotency-Key is still in progress", goerror.CodeConflict, goerror.WithStatus(http.StatusConflict))
	}
	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return nil, err
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to exec idempotent create", "idempotency_key", in.IdempotencyKey, "error", err)
		return nil, goerror.NewServer(err)
	}

	var rec entity.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		slog.ErrorContext(ctx, "failed to decode idempotent record", "idempotency_key", in.IdempotencyKey, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CreateOutput{Record: rec, Replayed: replayed}, nil
}

func (s *Usecase) create(ctx context.Context, in CreateInput) (*entity.Record, error) {
	now := s.clock.Now()
	rec := entity.NewRecord{
		ID:          s.uid.Generate(),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
	}

	err := s.repoDB.CreateRecord(ctx, rec)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create record", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &entity.Record{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Title:       rec.Title,
		Description: rec.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
