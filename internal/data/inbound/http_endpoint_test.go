package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/smsauth/internal/data/entity"
	"github.com/shandysiswandi/smsauth/internal/data/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/jwt"
	"github.com/shandysiswandi/smsauth/internal/pkg/router"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
)

var sample = entity.Record{
	ID:          9007199254740993,
	UserID:      42,
	Title:       "groceries",
	Description: "milk",
	CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	UpdatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
}

type fakeUsecase struct {
	createIn usecase.CreateInput
	listIn   usecase.ListInput
	updateIn usecase.UpdateInput
	err      error
}

func (f *fakeUsecase) Create(_ context.Context, in usecase.CreateInput) (*usecase.CreateOutput, error) {
	f.createIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.CreateOutput{Record: sample}, nil
}

func (f *fakeUsecase) List(_ context.Context, in usecase.ListInput) (*usecase.ListOutput, error) {
	f.listIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.ListOutput{Page: 2, Size: 5, Total: 6, Records: []entity.Record{sample}}, nil
}

func (f *fakeUsecase) Get(_ context.Context, _ usecase.GetInput) (*entity.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sample, nil
}

func (f *fakeUsecase) Update(_ context.Context, in usecase.UpdateInput) (*entity.Record, error) {
	f.updateIn = in
	if f.err != nil {
		return nil, f.err
	}
	rec := sample
	rec.Title = in.Title
	return &rec, nil
}

func (f *fakeUsecase) Delete(_ context.Context, _ usecase.DeleteInput) error {
	return f.err
}

func (f *fakeUsecase) Export(_ context.Context, _ usecase.ExportInput) (*usecase.ExportOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.ExportOutput{URL: "https://objects.test/x.json", ExpiresAt: sample.CreatedAt, Count: 1}, nil
}

type harness struct {
	handler http.Handler
	token   string
}

func newHarness(t *testing.T, uc *fakeUsecase, opts Options) *harness {
	t.Helper()

	tok, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "smsauth-test",
		Audiences: []string{"smsauth"},
		TTL:       time.Hour,
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}
	access, err := tok.Generate(42, "998901234567")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	r := router.NewRouter(router.Config{JWT: tok, Instrument: instrument.NewNoop()})
	RegisterHTTPEndpoint(r, uc, opts)

	return &harness{handler: r, token: access}
}

func (h *harness) do(t *testing.T, method, path, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s %s response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, out
}

func TestHTTPEndpoint_Create(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantUser int64
	}{
		{name: "numeric user id", body: `{"userId":42,"title":"t","description":"d"}`, wantCode: http.StatusCreated, wantUser: 42},
		{name: "string user id", body: `{"userId":"42","title":"t"}`, wantCode: http.StatusCreated, wantUser: 42},
		{name: "garbage user id", body: `{"userId":"abc","title":"t"}`, wantCode: http.StatusBadRequest},
		{name: "unknown field", body: `{"userId":42,"title":"t","extra":1}`, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			uc := &fakeUsecase{}
			h := newHarness(t, uc, Options{})

			// Act
			code, body := h.do(t, http.MethodPost, "/api/data/create", tt.body, map[string]string{"Idempotency-Key": " key-1 "})

			// Assert
			if code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%v)", code, tt.wantCode, body)
			}
			if tt.wantCode != http.StatusCreated {
				return
			}
			if uc.createIn.UserID != tt.wantUser || uc.createIn.IdempotencyKey != "key-1" {
				t.Fatalf("createIn = %+v", uc.createIn)
			}
			if body["message"] != "Record created successfully" || body["id"] != "9007199254740993" || body["userId"] != "42" {
				t.Fatalf("body = %v", body)
			}
		})
	}
}

func TestHTTPEndpoint_RequiresToken(t *testing.T) {
	// Arrange
	h := newHarness(t, &fakeUsecase{}, Options{})
	h.token = ""

	// Act
	code, body := h.do(t, http.MethodGet, "/api/data/list/42", "", nil)

	// Assert
	if code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401 (%v)", code, body)
	}
}

func TestHTTPEndpoint_List(t *testing.T) {
	// Arrange
	uc := &fakeUsecase{}
	h := newHarness(t, uc, Options{})

	// Act
	code, body := h.do(t, http.MethodGet, "/api/data/list/42?page=2&size=5", "", nil)

	// Assert
	if code != http.StatusOK {
		t.Fatalf("code = %d (%v)", code, body)
	}
	if uc.listIn != (usecase.ListInput{UserID: 42, Page: 2, Size: 5}) {
		t.Fatalf("listIn = %+v", uc.listIn)
	}
	records, ok := body["records"].([]any)
	if !ok || len(records) != 1 {
		t.Fatalf("records = %v", body["records"])
	}
	meta, ok := body["meta"].(map[string]any)
	if !ok || meta["page"] != float64(2) || meta["size"] != float64(5) || meta["total"] != float64(6) {
		t.Fatalf("meta = %v", body["meta"])
	}

	code, _ = h.do(t, http.MethodGet, "/api/data/list/42?size=big", "", nil)
	if code != http.StatusBadRequest {
		t.Fatalf("bad size code = %d, want 400", code)
	}
}

func TestHTTPEndpoint_RecordRoutes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "get", method: http.MethodGet, path: "/api/data/42/7", wantCode: http.StatusOK, wantMsg: "Record retrieved successfully"},
		{name: "get bad id", method: http.MethodGet, path: "/api/data/42/x", wantCode: http.StatusBadRequest, wantMsg: "Invalid path parameter id"},
		{name: "get missing", method: http.MethodGet, path: "/api/data/42/7", err: goerror.NewBusiness("Record not found", goerror.CodeNotFound), wantCode: http.StatusNotFound, wantMsg: "Record not found"},
		{name: "get forbidden", method: http.MethodGet, path: "/api/data/41/7", err: goerror.NewBusiness("You do not have access to these records", goerror.CodeForbidden), wantCode: http.StatusForbidden, wantMsg: "You do not have access to these records"},
		{name: "update", method: http.MethodPut, path: "/api/data/42/7", body: `{"title":"new","description":""}`, wantCode: http.StatusOK, wantMsg: "Record updated successfully"},
		{name: "update bad body", method: http.MethodPut, path: "/api/data/42/7", body: `{`, wantCode: http.StatusBadRequest, wantMsg: "Invalid request body"},
		{name: "delete", method: http.MethodDelete, path: "/api/data/42/7", wantCode: http.StatusOK, wantMsg: "Record deleted successfully"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := newHarness(t, &fakeUsecase{err: tt.err}, Options{})

			// Act
			code, body := h.do(t, tt.method, tt.path, tt.body, nil)

			// Assert
			if code != tt.wantCode || body["message"] != tt.wantMsg {
				t.Fatalf("%s %s = %d %v, want %d %q", tt.method, tt.path, code, body, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestHTTPEndpoint_Export(t *testing.T) {
	t.Run("not mounted without storage", func(t *testing.T) {
		h := newHarness(t, &fakeUsecase{}, Options{})
		code, _ := h.do(t, http.MethodPost, "/api/data/export/42", "", nil)
		if code != http.StatusNotFound {
			t.Fatalf("code = %d, want 404", code)
		}
	})

	t.Run("returns the link", func(t *testing.T) {
		h := newHarness(t, &fakeUsecase{}, Options{ExportEnabled: true})
		code, body := h.do(t, http.MethodPost, "/api/data/export/42", "", nil)
		if code != http.StatusOK || body["url"] != "https://objects.test/x.json" || body["count"] != float64(1) {
			t.Fatalf("export = %d %v", code, body)
		}
	})
}
