package inbound

import (
	"context"

	"github.com/shandysiswandi/smsauth/internal/auth/usecase"
	"github.com/shandysiswandi/smsauth/internal/pkg/router"
)

type uc interface {
	SendCode(ctx context.Context, in usecase.SendCodeInput) (*usecase.SendCodeOutput, error)
	VerifyCode(ctx context.Context, in usecase.VerifyCodeInput) (*usecase.VerifyCodeOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	ForgotPassword(ctx context.Context, in usecase.ForgotPasswordInput) (*usecase.SendCodeOutput, error)
	UpdatePassword(ctx context.Context, in usecase.UpdatePasswordInput) error
}

// PublicEndpoints lists the routes served without an access token.
var PublicEndpoints = []string{
	"/send-sms",
	"/verify-code",
	"/login",
	"/forgot-password",
	"/update-password",
}

// RegisterHTTPEndpoint mounts the auth routes; mws wrap every one of them.
func RegisterHTTPEndpoint(r *router.Router, uc uc, mws ...router.Middleware) {
	end := &HTTPEndpoint{uc: uc}

	// Registration
	r.POST("/send-sms", end.SendCode, mws...)
	r.POST("/verify-code", end.VerifyCode, mws...)

	// Session
	r.POST("/login", end.Login, mws...)

	// Password reset
	r.POST("/forgot-password", end.ForgotPassword, mws...)
	r.POST("/update-password", end.UpdatePassword, mws...)
}
