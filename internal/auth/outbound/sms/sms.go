// Package sms delivers verification codes straight through the SMS gateway
// while the request waits.
package sms

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	reasonTimeout     = "sms gateway timeout"
	reasonUnavailable = "sms gateway unavailable"
)

type Dispatcher struct {
	sender sms.Sender
	ins    instrument.Instrumentation
}

func NewDispatcher(sender sms.Sender, ins instrument.Instrumentation) *Dispatcher {
	return &Dispatcher{sender: sender, ins: ins}
}

// Send never returns an error: anything that keeps the gateway from
// accepting the message is a failed delivery.
func (d *Dispatcher) Send(ctx context.Context, n entity.Notification) entity.DeliveryResult {
	ctx, span := d.ins.Tracer("auth.outbound.sms").Start(ctx, "Send")
	defer span.End()

	span.SetAttributes(attribute.String("purpose", n.Purpose.String()))

	res, err := d.sender.Send(ctx, n.PhoneKey, n.Message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to send sms", "phone_key", n.PhoneKey, "error", err)

		if errors.Is(err, context.DeadlineExceeded) {
			return entity.DeliveryFailedWith(reasonTimeout)
		}
		return entity.DeliveryFailedWith(reasonUnavailable)
	}

	switch res.Status {
	case sms.StatusSuccess:
		return entity.Delivered(res.ProviderID)
	case sms.StatusPending:
		return entity.DeliveryQueued(res.ProviderID)
	default:
		out := entity.DeliveryFailedWith(res.Reason)
		out.SMSID = res.ProviderID
		return out
	}
}
