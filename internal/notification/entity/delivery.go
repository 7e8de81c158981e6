package entity

import "time"

type DeliveryStatus string

const (
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusPending DeliveryStatus = "pending"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)

func (s DeliveryStatus) String() string {
	return string(s)
}

// Delivery is one attempt to text a queued message. The message body is
// never stored because it carries the code.
type Delivery struct {
	ID            int64
	PhoneKey      string
	Purpose       string
	ProviderID    string
	Status        DeliveryStatus
	Reason        string
	CorrelationID string
	CreatedAt     time.Time
}
