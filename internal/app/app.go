package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/config"
	"github.com/shandysiswandi/smsauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/smsauth/internal/pkg/hash"
	"github.com/shandysiswandi/smsauth/internal/pkg/idempotency"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/jwt"
	"github.com/shandysiswandi/smsauth/internal/pkg/messaging"
	"github.com/shandysiswandi/smsauth/internal/pkg/otpcode"
	"github.com/shandysiswandi/smsauth/internal/pkg/router"
	"github.com/shandysiswandi/smsauth/internal/pkg/sms"
	"github.com/shandysiswandi/smsauth/internal/pkg/storage"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
	"github.com/shandysiswandi/smsauth/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine    *goroutine.Manager
	validator    validator.Validator
	clock        clock.Clocker
	passwordHash hash.Hash
	otpGenerator otpcode.Generator
	uid          uid.NumberID
	uuid         uid.StringID
	jwt          jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	sms       sms.Sender
	// messaging and storage stay nil when no driver is configured.
	messaging messaging.Messaging
	storage   storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initSMS()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
