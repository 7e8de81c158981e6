package inbound

import (
	"net/http"

	"github.com/shandysiswandi/smsauth/internal/data/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// Create stores a record for the caller.
// @Summary Create record
// @Description A repeated Idempotency-Key returns the first record instead of creating another.
// @Tags Data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Client supplied deduplication key"
// @Param request body CreateRequest true "Record payload"
// @Success 201 {object} RecordResponse "Record created"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 401 {object} router.errorResponse "Missing or invalid token"
// @Failure 403 {object} router.errorResponse "Token belongs to another user"
// @Failure 409 {object} router.errorResponse "Same Idempotency-Key still in progress"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/data/create [post]
func (h *HTTPEndpoint) Create(r *router.Request) (any, error) {
	var req CreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Create(r.Context(), usecase.CreateInput{
		UserID:         int64(req.UserID),
		Title:          req.Title,
		Description:    req.Description,
		IdempotencyKey: r.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		return nil, err
	}

	return RecordResponse{Record: resp.Record, message: "Record created successfully", status: http.StatusCreated}, nil
}

// List pages through the caller's records newest first.
// @Summary List records
// @Tags Data
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Owner id"
// @Param page query int false "Page number, starts at 1"
// @Param size query int false "Page size, at most 100"
// @Success 200 {object} ListResponse "Records"
// @Failure 401 {object} router.errorResponse "Missing or invalid token"
// @Failure 403 {object} router.errorResponse "Token belongs to another user"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/data/list/{userId} [get]
func (h *HTTPEndpoint) List(r *router.Request) (any, error) {
	userID, err := r.GetParamInt64("userId")
	if err != nil {
		return nil, err
	}
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.List(r.Context(), usecase.ListInput{UserID: userID, Page: page, Size: size})
	if err != nil {
		return nil, err
	}

	return ListResponse{
		Records: resp.Records,
		page:    resp.Page,
		size:    resp.Size,
		total:   resp.Total,
	}, nil
}

// Get returns one record.
// @Summary Get record
// @Tags Data
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Owner id"
// @Param id path string true "Record id"
// @Success 200 {object} RecordResponse "Record"
// @Failure 401 {object} router.errorResponse "Missing or invalid token"
// @Failure 403 {object} router.errorResponse "Token belongs to another user"
// @Failure 404 {object} router.errorResponse "Record not found"
// @Router /api/data/{userId}/{id} [get]
func (h *HTTPEndpoint) Get(r *router.Request) (any, error) {
	userID, id, err := recordParams(r)
	if err != nil {
		return nil, err
	}

	rec, err := h.uc.Get(r.Context(), usecase.GetInput{UserID: userID, ID: id})
	if err != nil {
		return nil, err
	}

	return RecordResponse{Record: *rec, message: "Record retrieved successfully"}, nil
}

// Update replaces title and description.
// @Summary Update record
// @Tags Data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Owner id"
// @Param id path string true "Record id"
// @Param request body UpdateRequest true "Record payload"
// @Success 200 {object} RecordResponse "Record updated"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 401 {object} router.errorResponse "Missing or invalid token"
// @Failure 403 {object} router.errorResponse "Token belongs to another user"
// @Failure 404 {object} router.errorResponse "Record not found"
// @Router /api/data/{userId}/{id} [put]
func (h *HTTPEndpoint) Update(r *router.Request) (any, error) {
	userID, id, err := recordParams(r)
	if err != nil {
		return nil, err
	}

	var req UpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	rec, err := h.uc.Update(r.Context(), usecase.UpdateInput{
		UserID:      userID,
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	return RecordResponse{Record: *rec, message: "Record updated successfully"}, nil
}

// Delete removes a record.
// @Summary Delete record
// @Tags Data
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Owner id"
// @Param id path string true "Record id"
// @Success 200 {object} DeleteResponse "Record deleted"
// @Failure 401 {object} router.errorResponse "Missing or invalid token"
// @Failure 403 {object} router.errorResponse "Token belongs to another user"
// @Failure 404 {object} router.errorResponse "Record not found"
// @Router /api/data/{userId}/{id} [delete]
func (h *HTTPEndpoint) Delete(r *router.Request) (any, error) {
	userID, id, err := recordParams(r)
	if err != nil {
		return nil, err
	}

	if err := h.uc.Delete(r.Context(), usecase.DeleteInput{UserID: userID, ID: id}); err != nil {
		return nil, err
	}

	return DeleteResponse{}, nil
}

// Export uploads every record as JSON and returns a download link.
// @Summary Export records
// @Tags Data
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Owner id"
// @Success 200 {object} ExportResponse "Presigned download link"
// @Failure 401 {object} router.errorResponse "Missing or invalid token"
// @Failure 403 {object} router.errorResponse "Token belongs to another user"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/data/export/{userId} [post]
func (h *HTTPEndpoint) Export(r *router.Request) (any, error) {
	userID, err := r.GetParamInt64("userId")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Export(r.Context(), usecase.ExportInput{UserID: userID})
	if err != nil {
		return nil, err
	}

	return ExportResponse{URL: resp.URL, ExpiresAt: resp.ExpiresAt, Count: resp.Count}, nil
}

func recordParams(r *router.Request) (userID, id int64, err error) {
	if userID, err = r.GetParamInt64("userId"); err != nil {
		return 0, 0, err
	}
	if id, err = r.GetParamInt64("id"); err != nil {
		return 0, 0, err
	}
	return userID, id, nil
}
