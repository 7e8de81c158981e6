package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/samber/lo"
	"github.com/segmentio/kafka-go"
	"github.com/shandysiswandi/smsauth/internal/auth/inbound"
	"github.com/shandysiswandi/smsauth/internal/db/migrate"
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
	"google.golang.org/api/option"
)

const sampleJWTSecret = "change-me-change-me-change-me-change-me-change-me-change-me-0000"

var errPlaceholderSecret = errors.New("jwt secret is still the sample value")

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string][]string{
	"app.env":                                    {"APP_ENV"},
	"app.server.http.port":                       {"PORT"},
	"sms.eskiz.email":                            {"ESKIZ_EMAIL"},
	"sms.eskiz.password":                         {"ESKIZ_PASSWORD"},
	"sms.eskiz.token":                            {"ESKIZ_TOKEN", "ACCESS_TOKEN"},
	"modules.auth.otp.rate_limit_window_seconds": {"OTP_RATE_LIMIT_WINDOW_SECONDS"},
	"modules.auth.otp.ttl_seconds":               {"OTP_TTL_SECONDS"},
	"database.url":                               {"DATABASE_URL"},
	"redis.url":                                  {"REDIS_URL"},
	"jwt.secret":                                 {"JWT_SECRET"},
	"storage.access_key":                         {"STORAGE_ACCESS_KEY"},
	"storage.secret_key":                         {"STORAGE_SECRET_KEY"},
}

var configDefaults = map[string]any{
	"app.server.http.port":                       8080,
	"modules.auth.otp.ttl_seconds":               300,
	"modules.auth.otp.rate_limit_window_seconds": 300,
	"jwt.ttl_minutes":                            60,
	"hash.password.driver":                       "bcrypt",
	"hash.bcrypt.cost":                           12,
}

func (a *App) initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path, config.WithEnv(envBindings), config.WithDefaults(configDefaults))
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) production() bool {
	return strings.EqualFold(a.config.GetString("app.env"), "production")
}

func (a *App) secondsOr(key string, fallback time.Duration) time.Duration {
	if v := a.config.GetSecond(key); v > 0 {
		return v
	}
	return fallback
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("app.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.otpGenerator = otpcode.NewRandom()

	ph, err := hash.NewFromDriver(
		a.config.GetString("hash.password.driver"),
		a.config.GetInt("hash.bcrypt.cost"),
		a.config.GetString("hash.pepper"),
	)
	if err != nil {
		slog.Error("failed to init password hash", "error", err)
		os.Exit(1)
	}
	a.passwordHash = ph

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake(a.config.GetInt64("app.node_id"))
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow
}

func (a *App) initJWT() {
	secret := a.config.GetString("jwt.secret")
	if a.production() && secret == sampleJWTSecret {
		slog.Error("failed to init jwt token", "error", errPlaceholderSecret)
		os.Exit(1)
	}

	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(secret),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

func (a *App) initDatabase() {
	dsn := a.config.GetString("database.url")

	if a.config.GetBool("database.auto_migrate") {
		if err := migrate.Run(dsn, migrate.DirectionUp); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	if v := a.config.GetInt("database.pool.max_conns"); v > 0 {
		config.MaxConns = int32(v)
	}
	if v := a.config.GetInt("database.pool.min_conns"); v > 0 {
		config.MinConns = int32(v)
	}
	if v := a.config.GetSecond("database.pool.max_conn_lifetime_seconds"); v > 0 {
		config.MaxConnLifetime = v
	}
	if v := a.config.GetSecond("database.pool.max_conn_idle_seconds"); v > 0 {
		config.MaxConnIdleTime = v
	}

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

func (a *App) initCache() {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(a.cacheConn)
}

func (a *App) initSMS() {
	cfg := sms.EskizConfig{
		BaseURL:  a.config.GetString("sms.eskiz.base_url"),
		Email:    a.config.GetString("sms.eskiz.email"),
		Password: a.config.GetString("sms.eskiz.password"),
		Token:    a.config.GetString("sms.eskiz.token"),
		From:     a.config.GetString("sms.eskiz.from"),
	}
	if err := cfg.Validate(a.production()); err != nil {
		slog.Error("failed to init sms gateway", "error", err)
		os.Exit(1)
	}

	a.sms = sms.NewEskiz(cfg)
}

// initStorage leaves storage nil when no driver is configured; the data
// export route is not mounted then.
func (a *App) initStorage() {
	driver := strings.TrimSpace(a.config.GetString("storage.driver"))
	if driver == "" {
		return
	}

	accessKey := a.config.GetString("storage.access_key")
	secretKey := a.config.GetString("storage.secret_key")

	stg, err := storage.NewFromDriver(a.ctx, driver, storage.Config{
		Bucket: a.config.GetString("storage.bucket"),
		S3: storage.S3Options{
			Region:       a.config.GetString("storage.s3.region"),
			Endpoint:     a.config.GetString("storage.s3.endpoint"),
			AccessKey:    accessKey,
			SecretKey:    secretKey,
			UsePathStyle: a.config.GetBool("storage.s3.use_path_style"),
		},
		GCS: storage.GCSOptions{
			CredentialsFile:  a.config.GetString("storage.gcs.credentials_file"),
			Endpoint:         a.config.GetString("storage.gcs.endpoint"),
			WithoutAuth:      a.config.GetBool("storage.gcs.without_auth"),
			SignerAccessID:   a.config.GetString("storage.gcs.signer_access_id"),
			SignerPrivateKey: []byte(a.config.GetString("storage.gcs.signer_private_key")),
		},
		MinIO: storage.MinIOOptions{
			Endpoint:  a.config.GetString("storage.minio.endpoint"),
			Region:    a.config.GetString("storage.minio.region"),
			AccessKey: accessKey,
			SecretKey: secretKey,
			UseSSL:    a.config.GetBool("storage.minio.use_ssl"),
		},
	})
	if err != nil {
		slog.Error("failed to init storage", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.storage = stg
}

// initMessaging leaves messaging nil when no driver is configured.
func (a *App) initMessaging() {
	driver := strings.TrimSpace(a.config.GetString("messaging.driver"))
	if driver == "" {
		return
	}

	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr:         a.config.GetString("messaging.nsq.producer_addr"),
			ConsumerNSQDAddrs:    a.config.GetArray("messaging.nsq.consumer_nsqd_addrs"),
			ConsumerLookupdAddrs: a.config.GetArray("messaging.nsq.consumer_lookupd_addrs"),
			Config: func() *nsq.Config {
				cfg := nsq.NewConfig()
				cfg.MaxAttempts = uint16(lo.Clamp(a.config.GetInt("messaging.nsq.max_attempts"), 0, 65535))
				if v := a.config.GetSecond("messaging.nsq.dial_timeout_seconds"); v > 0 {
					cfg.DialTimeout = v
				}
				if v := a.config.GetSecond("messaging.nsq.default_requeue_delay_seconds"); v > 0 {
					cfg.DefaultRequeueDelay = v
				}
				return cfg
			}(),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("instrument.service_name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
			Dialer: &kafka.Dialer{
				Timeout: a.secondsOr("messaging.kafka.dial_timeout_seconds", 10*time.Second),
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID: a.config.GetString("messaging.pubsub.project_id"),
			ClientOptions: lo.Ternary(
				a.config.GetString("messaging.pubsub.credentials_file") != "",
				[]option.ClientOption{option.WithCredentialsFile(a.config.GetString("messaging.pubsub.credentials_file"))},
				nil,
			),
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
		PublicEndpoints: map[string][]string{
			http.MethodPost: inbound.PublicEndpoints,
		},
		TrustProxyHeaders: a.config.GetBool("app.server.http.trust_proxy_headers"),
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              net.JoinHostPort(a.config.GetString("app.server.http.host"), a.config.GetString("app.server.http.port")),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.secondsOr("app.server.http.read_header_timeout_seconds", 5*time.Second),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				if a.messaging == nil {
					return nil
				}
				return a.messaging.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				a.dbConn.Close()

				return nil
			},
		},
		{
			name: "Storage",
			fn: func(context.Context) error {
				if a.storage == nil {
					return nil
				}
				return a.storage.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
