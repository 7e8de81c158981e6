package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/smsauth/internal/auth"
	"github.com/shandysiswandi/smsauth/internal/data"
	"github.com/shandysiswandi/smsauth/internal/notification"
)

func (a *App) initModules() {
	if err := auth.New(auth.Dependency{
		DBConn:       a.dbConn,
		Router:       a.router,
		Config:       a.config,
		Instrument:   a.ins,
		UID:          a.uid,
		Clock:        a.clock,
		Validator:    a.validator,
		PasswordHash: a.passwordHash,
		OTPGenerator: a.otpGenerator,
		JWT:          a.jwt,
		CacheConn:    a.cacheConn,
		Messaging:    a.messaging,
		SMS:          a.sms,
	}); err != nil {
		slog.Error("failed to init module auth", "error", err)
		os.Exit(1)
	}

	if err := data.New(data.Dependency{
		DBConn:      a.dbConn,
		Router:      a.router,
		Config:      a.config,
		Instrument:  a.ins,
		UID:         a.uid,
		UUID:        a.uuid,
		Clock:       a.clock,
		Validator:   a.validator,
		Idempotency: a.idemp,
		Storage:     a.storage,
	}); err != nil {
		slog.Error("failed to init module data", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			DBConn:     a.dbConn,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Validator:  a.validator,
			SMS:        a.sms,
			Ctx:        a.ctx,
			Goroutine:  a.goroutine,
			Messaging:  a.messaging,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
