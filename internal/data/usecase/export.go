package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shandysiswandi/smsauth/internal/data/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
	"github.com/shandysiswandi/smsauth/internal/pkg/storage"
)

const exportPageSize int32 = 1_000

type ExportInput struct {
	UserID int64
}

type ExportOutput struct {
	URL       string
	ExpiresAt time.Time
	Count     int
}

// Export writes every record of the owner to object storage as one JSON
// document and returns a short lived download link.
func (s *Usecase) Export(ctx context.Context, in ExportInput) (*ExportOutput, error) {
	ctx, span := s.startSpan(ctx, "Export")
	defer span.End()

	if s.storage == nil {
		return nil, goerror.NewBusiness("Export is not enabled", goerror.CodeInternal, goerror.WithStatus(http.StatusNotImplemented))
	}

	if err := s.authorize(ctx, in.UserID); err != nil {
		return nil, err
	}

	var (
		records = []entity.Record{}
		offset  int64
	)
	for {
		page, total, err := s.repoDB.ListRecords(ctx, entity.RecordListFilter{
			UserID: in.UserID,
			Limit:  exportPageSize,
			Offset: offset,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo export records", "user_id", in.UserID, "error", err)
			return nil, goerror.NewServer(err)
		}

		records = append(records, page...)
		offset += int64(exportPageSize)

		if int64(len(records)) >= total || len(page) == 0 {
			break
		}
	}

	body, err := json.Marshal(records)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode export", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	key := "exports/" + strconv.FormatInt(in.UserID, 10) + "/" + s.uuid.Generate() + ".json"
	if _, err := s.storage.Put(ctx, key, bytes.NewReader(body), storage.PutOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata:    map[string]string{"records": strconv.Itoa(len(records))},
	}); err != nil {
		slog.ErrorContext(ctx, "failed to store export", "user_id", in.UserID, "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.cfg.GetMinute("modules.data.export.url_ttl_minutes")
	if ttl <= 0 {
		ttl = defaultExportURLTTL
	}

	url, err := s.storage.PresignGet(ctx, key, ttl)
	if err != nil {
		slog.ErrorContext(ctx, "failed to presign export", "user_id", in.UserID, "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ExportOutput{
		URL:       url,
		ExpiresAt: s.clock.Now().Add(ttl),
		Count:     len(records),
	}, nil
}
