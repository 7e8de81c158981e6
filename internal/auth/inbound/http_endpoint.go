package inbound

import (
	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/auth/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/router"
)

// HTTPEndpoint exposes the phone registration, login and password reset handlers.
type HTTPEndpoint struct {
	uc uc
}

// SendCode texts a registration code to a phone that has no account yet.
// @Summary Send registration code
// @Description Issues a 6 digit code and hands it to the SMS gateway. A failed SMS still returns 200 because the code is saved.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SendCodeRequest true "Phone payload"
// @Success 200 {object} SendCodeResponse "Code issued"
// @Failure 400 {object} router.errorResponse "Validation error or phone already registered"
// @Failure 429 {object} router.errorResponse "Code requested too recently"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /send-sms [post]
func (h *HTTPEndpoint) SendCode(r *router.Request) (any, error) {
	var req SendCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SendCode(r.Context(), usecase.SendCodeInput{
		Phone:       req.Phone,
		CountryCode: req.CountryCode,
	})
	if err != nil {
		return nil, err
	}

	return SendCodeResponse{
		Delivery: string(resp.Delivery),
		SMSID:    resp.SMSID,
		purpose:  entity.PurposeRegister,
	}, nil
}

// VerifyCode creates the account once the texted code matches.
// @Summary Verify code and register
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyCodeRequest true "Verification payload"
// @Success 200 {object} VerifyCodeResponse "Account created"
// @Failure 400 {object} router.errorResponse "Validation error, wrong or expired code"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /verify-code [post]
func (h *HTTPEndpoint) VerifyCode(r *router.Request) (any, error) {
	var req VerifyCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyCode(r.Context(), usecase.VerifyCodeInput{
		Phone:       req.Phone,
		CountryCode: req.CountryCode,
		Code:        req.Code,
		Name:        req.Name,
		Password:    req.Password,
	})
	if err != nil {
		return nil, err
	}

	return VerifyCodeResponse{UserID: resp.UserID}, nil
}

// Login checks phone and password and returns an access token.
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} LoginResponse "Logged in"
// @Failure 400 {object} router.errorResponse "Incorrect phone or password"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Phone:       req.Phone,
		CountryCode: req.CountryCode,
		Password:    req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		LoggedIn:    true,
		UserID:      resp.UserID,
		AccessToken: resp.AccessToken,
	}, nil
}

// ForgotPassword texts a reset code to a registered phone.
// @Summary Request password reset code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Phone payload"
// @Success 200 {object} SendCodeResponse "Code issued"
// @Failure 400 {object} router.errorResponse "Validation error or phone not registered"
// @Failure 429 {object} router.errorResponse "Code requested too recently"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /forgot-password [post]
func (h *HTTPEndpoint) ForgotPassword(r *router.Request) (any, error) {
	var req ForgotPasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ForgotPassword(r.Context(), usecase.ForgotPasswordInput{
		Phone:       req.Phone,
		CountryCode: req.CountryCode,
	})
	if err != nil {
		return nil, err
	}

	return SendCodeResponse{
		Delivery: string(resp.Delivery),
		SMSID:    resp.SMSID,
		purpose:  entity.PurposeResetPassword,
	}, nil
}

// UpdatePassword sets a new password with a reset code.
// @Summary Reset password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body UpdatePasswordRequest true "Reset payload"
// @Success 200 {object} UpdatePasswordResponse "Password updated"
// @Failure 400 {object} router.errorResponse "Validation error, mismatch, wrong or expired code"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /update-password [post]
func (h *HTTPEndpoint) UpdatePassword(r *router.Request) (any, error) {
	var req UpdatePasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.UpdatePassword(r.Context(), usecase.UpdatePasswordInput{
		Phone:           req.Phone,
		CountryCode:     req.CountryCode,
		Code:            req.Code,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return nil, err
	}

	return UpdatePasswordResponse{}, nil
}
