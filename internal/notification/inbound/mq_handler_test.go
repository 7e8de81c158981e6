package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shandysiswandi/smsauth/internal/notification/entity"
	"github.com/shandysiswandi/smsauth/internal/notification/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/messaging"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
	"github.com/shandysiswandi/smsauth/internal/shared/event"
)

type fakeUsecase struct {
	in    usecase.DeliverOTPInput
	cid   string
	calls int
	err   error
}

func (f *fakeUsecase) DeliverOTP(ctx context.Context, in usecase.DeliverOTPInput) error {
	f.calls++
	f.in = in
	f.cid = instrument.GetCorrelationID(ctx)
	return f.err
}

func (f *fakeUsecase) ListDeliveries(context.Context, usecase.ListDeliveriesInput) ([]entity.Delivery, error) {
	return nil, f.err
}

func otpMessage(t *testing.T, attempts int, headers map[string]string) messaging.Message {
	t.Helper()

	body, err := json.Marshal(event.OTPRequestedMessage{PhoneKey: "998901234567", Message: "Code: 123456", Purpose: "register"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return messaging.Message{ID: "m-1", Topic: event.OTPRequestedDestination, Body: body, Headers: headers, Attempts: attempts}
}

func TestMQHandler_OTPRequested(t *testing.T) {
	gatewayDown := errors.Join(usecase.ErrGatewayUnavailable, context.DeadlineExceeded)

	tests := []struct {
		name      string
		msg       func(t *testing.T) messaging.Message
		ucErr     error
		wantErr   bool
		wantCalls int
	}{
		{
			name:      "delivers and keeps correlation id",
			msg:       func(t *testing.T) messaging.Message { return otpMessage(t, 1, map[string]string{"cID": "cid-9"}) },
			wantCalls: 1,
		},
		{
			name:      "malformed body is acked",
			msg:       func(*testing.T) messaging.Message { return messaging.Message{ID: "m-2", Body: []byte("{")} },
			wantCalls: 0,
		},
		{
			name:      "gateway down is retried",
			msg:       func(t *testing.T) messaging.Message { return otpMessage(t, 1, nil) },
			ucErr:     gatewayDown,
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name:      "gateway down on last attempt is acked",
			msg:       func(t *testing.T) messaging.Message { return otpMessage(t, 3, nil) },
			ucErr:     gatewayDown,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			uc := &fakeUsecase{err: tt.ucErr}
			h := &MQHandler{uc: uc, uuid: uid.NewUUID(), ins: instrument.NewNoop(), maxAttempts: 3}

			// Act
			err := h.OTPRequested(context.Background(), tt.msg(t))

			// Assert
			if (err != nil) != tt.wantErr {
				t.Fatalf("OTPRequested() error = %v, wantErr %v", err, tt.wantErr)
			}
			if uc.calls != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", uc.calls, tt.wantCalls)
			}
			if tt.wantCalls > 0 && (uc.in.PhoneKey != "998901234567" || uc.in.Purpose != "register" || uc.cid == "") {
				t.Fatalf("input = %+v cid = %q", uc.in, uc.cid)
			}
		})
	}
}

func TestMQHandler_UsesHeaderCorrelationID(t *testing.T) {
	uc := &fakeUsecase{}
	h := &MQHandler{uc: uc, uuid: uid.NewUUID(), ins: instrument.NewNoop(), maxAttempts: 3}

	if err := h.OTPRequested(context.Background(), otpMessage(t, 1, map[string]string{"cID": "cid-9"})); err != nil {
		t.Fatalf("OTPRequested() error = %v", err)
	}
	if uc.cid != "cid-9" {
		t.Fatalf("cid = %q, want cid-9", uc.cid)
	}
}
