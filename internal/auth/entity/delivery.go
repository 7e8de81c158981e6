package entity

type DeliveryStatus string

const (
	DeliverySuccess DeliveryStatus = "success"
	DeliveryPending DeliveryStatus = "pending"
	DeliveryFailed  DeliveryStatus = "failed"
)

// DeliveryResult is the outcome of handing a code to the SMS channel.
// A failed delivery never undoes the issued code.
type DeliveryResult struct {
	Status DeliveryStatus
	// SMSID is the gateway message id when the gateway returned one.
	SMSID  string
	Reason string
}

func Delivered(smsID string) DeliveryResult {
	return DeliveryResult{Status: DeliverySuccess, SMSID: smsID}
}

func DeliveryQueued(smsID string) DeliveryResult {
	return DeliveryResult{Status: DeliveryPending, SMSID: smsID}
}

func DeliveryFailedWith(reason string) DeliveryResult {
	return DeliveryResult{Status: DeliveryFailed, Reason: reason}
}

// Notification is a text message bound for one phone.
type Notification struct {
	PhoneKey string
	Message  string
	Purpose  Purpose
}
