package event

const OTPRequestedDestination string = "otp_requested"
const OTPRequestedConsumerNotification string = "otp_requested_notification"

// OTPRequestedMessage asks the notification worker to text a code. Message
// already contains the code; the worker does not template it.
type OTPRequestedMessage struct {
	PhoneKey string `json:"phone_key"`
	Message  string `json:"message"`
	Purpose  string `json:"purpose"`
}
