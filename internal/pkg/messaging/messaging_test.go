package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	nsq "github.com/nsqio/go-nsq"
)

func TestNewConsumeOptions_Defaults(t *testing.T) {
	co := newConsumeOptions(WithGroup("notification"), WithConcurrency(4), nil)

	if co.group != "notification" || co.concurrency != 4 || co.maxInFlight != 4 {
		t.Fatalf("unexpected options: %+v", co)
	}

	co = newConsumeOptions(WithConcurrency(0), WithMaxInFlight(10))
	if co.concurrency != 1 || co.maxInFlight != 10 {
		t.Fatalf("unexpected options: %+v", co)
	}
}

func TestSafeHandle_RecoversPanic(t *testing.T) {
	err := safeHandle(context.Background(), "test", func(context.Context, Message) error {
		panic("kaboom")
	}, Message{Topic: "otp_requested"})
	if err == nil {
		t.Fatalf("expected error from panicking handler")
	}

	boom := errors.New("boom")
	if err := safeHandle(context.Background(), "test", func(context.Context, Message) error { return boom }, Message{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestDecodeNSQ_Envelope(t *testing.T) {
	// Arrange
	body, err := json.Marshal(nsqEnvelope{Headers: map[string]string{"cID": "abc"}, Body: []byte(`{"phone_key":"998901234567"}`)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var id nsq.MessageID
	copy(id[:], "0123456789abcdef")

	// Act
	msg := decodeNSQ("otp_requested", nsq.NewMessage(id, body))

	// Assert
	if msg.Header("cID") != "abc" || string(msg.Body) != `{"phone_key":"998901234567"}` {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Topic != "otp_requested" || msg.ID == "" {
		t.Fatalf("unexpected metadata: %+v", msg)
	}
}

func TestDecodeNSQ_PlainBody(t *testing.T) {
	var id nsq.MessageID
	msg := decodeNSQ("t", nsq.NewMessage(id, []byte("plain text")))

	if string(msg.Body) != "plain text" || msg.Headers != nil {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestNewFromDriver_Unknown(t *testing.T) {
	if _, err := NewFromDriver(context.Background(), "carrier-pigeon", FactoryOptions{}); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}
