package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/smsauth/internal/notification/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/messaging"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
	"github.com/shandysiswandi/smsauth/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc          uc
	uuid        uid.StringID
	ins         instrument.Instrumentation
	maxAttempts int
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cid := msg.Header(keyOfCorrelationID); cid != "" {
		return instrument.SetCorrelationID(ctx, cid)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// OTPRequested never logs the body: it contains the code.
func (h *MQHandler) OTPRequested(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OTPRequested")
	defer span.End()

	var payload event.OTPRequestedMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse otp requested message", "message_id", msg.ID, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: otp requested", "message_id", msg.ID, "phone_key", payload.PhoneKey, "attempt", msg.Attempts)

	err := h.uc.DeliverOTP(ctx, usecase.DeliverOTPInput{
		PhoneKey: payload.PhoneKey,
		Message:  payload.Message,
		Purpose:  payload.Purpose,
	})
	if errors.Is(err, usecase.ErrGatewayUnavailable) && msg.Attempts < h.maxAttempts {
		return err
	}
	if err != nil {
		slog.ErrorContext(ctx, "giving up otp delivery", "message_id", msg.ID, "phone_key", payload.PhoneKey, "attempt", msg.Attempts, "error", err)
	}

	return nil
}
