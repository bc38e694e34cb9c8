// Command sessiond serves the session API: login, session lookup and
// logout backed by the PostgreSQL user table.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/openlims/authsession/core/audit"
	"github.com/openlims/authsession/core/config"
	"github.com/openlims/authsession/core/email"
	"github.com/openlims/authsession/core/health"
	"github.com/openlims/authsession/core/logger"
	"github.com/openlims/authsession/core/metrics"
	"github.com/openlims/authsession/core/server"
	"github.com/openlims/authsession/core/session"
	"github.com/openlims/authsession/core/sessionmonitor"
	"github.com/openlims/authsession/core/sessiontransport"
	"github.com/openlims/authsession/integration/authn/authntest"
	"github.com/openlims/authsession/integration/authn/pgauth"
	"github.com/openlims/authsession/integration/database/pg"
	"github.com/openlims/authsession/integration/database/redis"
	"github.com/openlims/authsession/integration/email/postmark"
	"github.com/openlims/authsession/middleware"
	"github.com/openlims/authsession/pkg/clientip"
)

type appConfig struct {
	Name     string `env:"APP_NAME" envDefault:"sessiond"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// AuthBackend selects the authentication back-end: "postgres" or "dummy".
	AuthBackend  string `env:"AUTH_BACKEND" envDefault:"postgres"`
	RedisEnabled bool   `env:"REDIS_ENABLED" envDefault:"false"`
	MailDir      string `env:"DEV_MAIL_DIR" envDefault:"./tmp/mail"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("sessiond stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var app appConfig
	if err := config.Load(&app); err != nil {
		return err
	}
	log := newLogger(app)
	logger.SetAsDefault(log)

	var cfg struct {
		session   session.Config
		monitor   sessionmonitor.Config
		pg        pg.Config
		redis     redis.Config
		postmark  postmark.Config
		transport sessiontransport.Config
		server    server.Config
	}
	for _, load := range []func() error{
		func() error { return config.Load(&cfg.session) },
		func() error { return config.Load(&cfg.monitor) },
		func() error { return config.Load(&cfg.pg) },
		func() error { return config.Load(&cfg.redis) },
		func() error { return config.Load(&cfg.postmark) },
		func() error { return config.Load(&cfg.transport) },
		func() error { return config.Load(&cfg.server) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	var checks []health.Check

	auth, closeAuth, err := newAuthBackend(ctx, app, cfg.pg, log, &checks)
	if err != nil {
		return err
	}
	defer closeAuth()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var mgr *session.Manager
	sinks := []session.AuditLogger{
		audit.NewLogger(log),
		metrics.NewCollector(reg, func() int { return mgr.Count() }),
	}
	if app.RedisEnabled {
		rdb, err := redis.Connect(ctx, cfg.redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks = append(checks, redis.Healthcheck(rdb))
		sinks = append(sinks, redis.NewAuditStream(rdb,
			redis.WithStreamName(cfg.redis.AuditStream),
			redis.WithMaxLen(cfg.redis.AuditStreamMaxLen),
			redis.WithStreamLogger(log),
		))
	}

	notifier, err := newNotifier(app, cfg.monitor, cfg.postmark, log)
	if err != nil {
		return err
	}
	monitor := sessionmonitor.New(
		sessionmonitor.SourceFuncs{
			CountFunc:    func() int { return mgr.Count() },
			SessionsFunc: func() []session.Entry { return mgr.Sessions() },
		},
		notifier,
		sessionmonitor.WithConfig(cfg.monitor),
		sessionmonitor.WithLogger(log),
	)

	mgr, err = session.NewManager(auth, audit.Fanout(sinks...).WithLogger(log), clientip.Provider{},
		session.WithConfig(cfg.session),
		session.WithLogger(log),
		session.WithListener(monitor),
	)
	if err != nil {
		return err
	}
	if err := mgr.Check(ctx); err != nil {
		return fmt.Errorf("authentication back-end unavailable: %w", err)
	}

	router := newRouter(routerDeps{
		log:       log,
		transport: sessiontransport.New(mgr, sessiontransport.WithConfig(cfg.transport), sessiontransport.WithLogger(log)),
		metrics:   metrics.Handler(reg),
		checks:    append(checks, mgr.Check),
	})

	srv, err := server.NewFromConfig(cfg.server, server.WithLogger(log))
	if err != nil {
		return err
	}
	serveErr := srv.Run(ctx, router)

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.server.ShutdownTimeout)
	defer cancel()
	return errors.Join(serveErr, monitor.Wait(waitCtx))
}

func newLogger(app appConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := []logger.Option{
		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			id, ok := middleware.GetRequestID(ctx)
			return logger.RequestID(id), ok
		}),
	}
	switch strings.ToLower(app.Env) {
	case "production":
		opts = append(opts, logger.WithProduction(app.Name))
	case "staging":
		opts = append(opts, logger.WithStaging(app.Name))
	default:
		opts = append(opts, logger.WithDevelopment(app.Name))
	}
	return logger.New(append(opts, logger.WithLevel(level))...)
}

// newAuthBackend returns the configured back-end and a cleanup function.
func newAuthBackend(ctx context.Context, app appConfig, cfg pg.Config, log *slog.Logger, checks *[]health.Check) (session.AuthenticationService, func(), error) {
	switch app.AuthBackend {
	case "dummy":
		if strings.EqualFold(app.Env, "production") {
			return nil, nil, errors.New("dummy authentication is not allowed in production")
		}
		log.Warn("Using dummy authentication: every non-empty password is accepted")
		return authntest.Dummy{}, func() {}, nil
	case "postgres", "":
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		*checks = append(*checks, pg.Healthcheck(pool))
		return pgauth.New(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown AUTH_BACKEND %q", app.AuthBackend)
	}
}

// newNotifier mails session reports when a recipient is configured,
// through Postmark when it has a token and to DEV_MAIL_DIR otherwise.
func newNotifier(app appConfig, cfg sessionmonitor.Config, pm postmark.Config, log *slog.Logger) (sessionmonitor.Notifier, error) {
	if cfg.NotifyEmail == "" {
		return sessionmonitor.NewLogNotifier(log), nil
	}
	var sender email.EmailSender = email.NewDevSender(app.MailDir)
	if pm.Enabled() {
		client, err := postmark.New(pm)
		if err != nil {
			return nil, err
		}
		sender = client
	}
	return sessionmonitor.NewEmailNotifier(sender, cfg.NotifyEmail)
}
