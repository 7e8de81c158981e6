package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/messaging"
	"github.com/shandysiswandi/smsauth/internal/shared/event"
)

type fakePublisher struct {
	id       string
	err      error
	gotTopic string
	gotMsg   messaging.OutgoingMessage
}

func (f *fakePublisher) Publish(_ context.Context, topic string, msg messaging.OutgoingMessage) (string, error) {
	f.gotTopic, f.gotMsg = topic, msg
	return f.id, f.err
}

func TestMessaging_Send(t *testing.T) {
	n := entity.Notification{
		PhoneKey: "998901234567",
		Message:  "Your password reset code is 654321",
		Purpose:  entity.PurposeResetPassword,
	}

	t.Run("published", func(t *testing.T) {
		// Arrange
		pub := &fakePublisher{id: "msg-1"}
		m := NewMessaging(pub, instrument.NewNoop())
		ctx := instrument.SetCorrelationID(context.Background(), "corr-1")

		// Act
		got := m.Send(ctx, n)

		// Assert
		if got != entity.DeliveryQueued("msg-1") {
			t.Fatalf("Send() = %+v", got)
		}
		if pub.gotTopic != event.OTPRequestedDestination {
			t.Fatalf("topic = %q", pub.gotTopic)
		}
		if pub.gotMsg.Key != n.PhoneKey || pub.gotMsg.Headers[keyOfCorrelationID] != "corr-1" {
			t.Fatalf("message = %+v", pub.gotMsg)
		}

		var body event.OTPRequestedMessage
		if err := json.Unmarshal(pub.gotMsg.Body, &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		want := event.OTPRequestedMessage{PhoneKey: n.PhoneKey, Message: n.Message, Purpose: "reset_password"}
		if body != want {
			t.Fatalf("body = %+v, want %+v", body, want)
		}
	})

	t.Run("publish error", func(t *testing.T) {
		// Arrange
		m := NewMessaging(&fakePublisher{err: errors.New("broker down")}, instrument.NewNoop())

		// Act
		got := m.Send(context.Background(), n)

		// Assert
		if got.Status != entity.DeliveryFailed || got.Reason != reasonQueueUnavailable {
			t.Fatalf("Send() = %+v", got)
		}
	})
}
