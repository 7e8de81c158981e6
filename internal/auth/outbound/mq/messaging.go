// Package mq hands verification codes to the notification worker through
// the message broker.
package mq

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/messaging"
	"github.com/shandysiswandi/smsauth/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

const reasonQueueUnavailable = "notification queue unavailable"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

// Send publishes the code and reports it pending; the gateway verdict is
// recorded later by the consumer.
func (m *Messaging) Send(ctx context.Context, n entity.Notification) entity.DeliveryResult {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, "PublishOTPRequested")
	defer span.End()

	body, err := json.Marshal(event.OTPRequestedMessage{
		PhoneKey: n.PhoneKey,
		Message:  n.Message,
		Purpose:  n.Purpose.String(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return entity.DeliveryFailedWith(reasonQueueUnavailable)
	}

	cID := instrument.GetCorrelationID(ctx)
	id, err := m.client.Publish(ctx, event.OTPRequestedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     n.PhoneKey,
		Headers: map[string]string{keyOfCorrelationID: cID},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to publish otp requested", "phone_key", n.PhoneKey, "error", err)
		return entity.DeliveryFailedWith(reasonQueueUnavailable)
	}

	return entity.DeliveryQueued(id)
}
