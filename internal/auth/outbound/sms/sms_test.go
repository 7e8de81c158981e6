package sms

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/sms"
)

type fakeSender struct {
	res      sms.Result
	err      error
	gotPhone string
	gotText  string
}

func (f *fakeSender) Send(_ context.Context, phone, message string) (sms.Result, error) {
	f.gotPhone, f.gotText = phone, message
	return f.res, f.err
}

func TestDispatcher_Send(t *testing.T) {
	tests := []struct {
		name string
		res  sms.Result
		err  error
		want entity.DeliveryResult
	}{
		{
			name: "success",
			res:  sms.Result{Status: sms.StatusSuccess, ProviderID: "42"},
			want: entity.DeliveryResult{Status: entity.DeliverySuccess, SMSID: "42"},
		},
		{
			name: "pending",
			res:  sms.Result{Status: sms.StatusPending, ProviderID: "43"},
			want: entity.DeliveryResult{Status: entity.DeliveryPending, SMSID: "43"},
		},
		{
			name: "gateway refused",
			res:  sms.Result{Status: sms.StatusFailed, ProviderID: "44", Reason: "invalid number"},
			want: entity.DeliveryResult{Status: entity.DeliveryFailed, SMSID: "44", Reason: "invalid number"},
		},
		{
			name: "timeout",
			err:  fmt.Errorf("post: %w", context.DeadlineExceeded),
			want: entity.DeliveryResult{Status: entity.DeliveryFailed, Reason: reasonTimeout},
		},
		{
			name: "transport error",
			err:  errors.New("connection refused"),
			want: entity.DeliveryResult{Status: entity.DeliveryFailed, Reason: reasonUnavailable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			sender := &fakeSender{res: tt.res, err: tt.err}
			d := NewDispatcher(sender, instrument.NewNoop())

			// Act
			got := d.Send(context.Background(), entity.Notification{
				PhoneKey: "998901234567",
				Message:  "Your verification code is 123456",
				Purpose:  entity.PurposeRegister,
			})

			// Assert
			if got != tt.want {
				t.Fatalf("Send() = %+v, want %+v", got, tt.want)
			}
			if sender.gotPhone != "998901234567" || sender.gotText != "Your verification code is 123456" {
				t.Fatalf("sender got phone=%q text=%q", sender.gotPhone, sender.gotText)
			}
		})
	}
}
