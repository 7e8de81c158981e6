package inbound

import (
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/smsauth/internal/notification/entity"
	"github.com/shandysiswandi/smsauth/internal/notification/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

type DeliveryResponse struct {
	ID         int64     `json:"id,string"`
	Purpose    string    `json:"purpose"`
	Status     string    `json:"status"`
	ProviderID string    `json:"providerId,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ListDeliveriesResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
}

func (ListDeliveriesResponse) Message() string {
	return "SMS deliveries retrieved successfully"
}

// ListDeliveries shows the caller the latest SMS attempts made to their phone.
// @Summary List SMS deliveries
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Param limit query int false "At most 100"
// @Success 200 {object} ListDeliveriesResponse "Delivery attempts, newest first"
// @Failure 401 {object} router.errorResponse "Missing or invalid token"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/sms/deliveries [get]
func (h *HTTPEndpoint) ListDeliveries(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ListDeliveries(r.Context(), usecase.ListDeliveriesInput{Limit: limit})
	if err != nil {
		return nil, err
	}

	resp := ListDeliveriesResponse{
		Deliveries: lo.Map(out, func(d entity.Delivery, _ int) DeliveryResponse {
			return DeliveryResponse{
				ID:         d.ID,
				Purpose:    d.Purpose,
				Status:     d.Status.String(),
				ProviderID: d.ProviderID,
				Reason:     d.Reason,
				CreatedAt:  d.CreatedAt,
			}
		}),
	}

	return resp, nil
}
