package inbound

import (
	"github.com/shandysiswandi/smsauth/internal/auth/entity"
)

type SendCodeRequest struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
}

// SendCodeResponse reports the code as issued even when the SMS did not go
// out; the message tells the caller which case it is.
type SendCodeResponse struct {
	Delivery string `json:"delivery"`
	SMSID    string `json:"smsId,omitempty"`

	purpose entity.Purpose
}

func (r SendCodeResponse) Message() string {
	switch entity.DeliveryStatus(r.Delivery) {
	case entity.DeliverySuccess:
		if r.purpose == entity.PurposeResetPassword {
			return "Password reset code sent successfully"
		}
		return "SMS sent successfully"
	case entity.DeliveryPending:
		return "SMS is queued for delivery"
	default:
		return "Verification code saved, SMS delivery uncertain"
	}
}

type VerifyCodeRequest struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Password    string `json:"password"`
}

type VerifyCodeResponse struct {
	UserID int64 `json:"userId,string"`
}

func (VerifyCodeResponse) Message() string {
	return "Registration successful"
}

type LoginRequest struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
	Password    string `json:"password"`
}

type LoginResponse struct {
	LoggedIn    bool   `json:"loggedIn"`
	UserID      int64  `json:"userId,string"`
	AccessToken string `json:"accessToken"`
}

func (LoginResponse) Message() string {
	return "Login successful"
}

type ForgotPasswordRequest struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
}

type UpdatePasswordRequest struct {
	Phone           string `json:"phone"`
	CountryCode     string `json:"countryCode"`
	Code            string `json:"code"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type UpdatePasswordResponse struct{}

func (UpdatePasswordResponse) Message() string {
	return "Password updated successfully"
}
