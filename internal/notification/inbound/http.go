package inbound

import (
	"context"

	"github.com/shandysiswandi/smsauth/internal/notification/entity"
	"github.com/shandysiswandi/smsauth/internal/notification/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/router"
)

type uc interface {
	DeliverOTP(ctx context.Context, in usecase.DeliverOTPInput) error
	ListDeliveries(ctx context.Context, in usecase.ListDeliveriesInput) ([]entity.Delivery, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/sms/deliveries", end.ListDeliveries)
}
