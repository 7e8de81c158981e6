package inbound

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shandysiswandi/smsauth/internal/data/entity"
)

// FlexibleID accepts an id sent either as a JSON number or a string.
type FlexibleID int64

func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}

	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*id = FlexibleID(v)

	return nil
}

type CreateRequest struct {
	UserID      FlexibleID `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

type RecordResponse struct {
	entity.Record

	message string
	status  int
}

func (r RecordResponse) Message() string {
	return r.message
}

func (r RecordResponse) StatusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

type ListResponse struct {
	Records []entity.Record `json:"records"`

	page  int32
	size  int32
	total int64
}

func (ListResponse) Message() string {
	return "Records retrieved successfully"
}

func (r ListResponse) Meta() map[string]any {
	return map[string]any{
		"page":  r.page,
		"size":  r.size,
		"total": r.total,
	}
}

type UpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type DeleteResponse struct{}

func (DeleteResponse) Message() string {
	return "Record deleted successfully"
}

type ExportResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Count     int       `json:"count"`
}

func (ExportResponse) Message() string {
	return "Export is ready"
}
