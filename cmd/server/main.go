// Command server runs the enclave gateway: a small HTTP server that
// exchanges platform ingress tokens for signed session cookies, proxies
// authenticated example calls upstream, and relays platform workflow events.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/enclavekit/modules/enclave"
	"github.com/dmitrymomot/enclavekit/pkg/config"
	"github.com/dmitrymomot/enclavekit/pkg/cookie"
	"github.com/dmitrymomot/enclavekit/pkg/events"
	"github.com/dmitrymomot/enclavekit/pkg/httpserver"
	"github.com/dmitrymomot/enclavekit/pkg/logger"
	"github.com/dmitrymomot/enclavekit/pkg/redis"
	"github.com/dmitrymomot/enclavekit/pkg/requestid"
	"github.com/dmitrymomot/enclavekit/pkg/session"
	"github.com/dmitrymomot/enclavekit/pkg/upstream"
)

type serverConfig struct {
	Port                  int    `env:"PORT,required"`
	CookieSignatureSecret string `env:"COOKIE_SIGNATURE_SECRET,required"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("gateway terminated", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	var (
		srvCfg      serverConfig
		enclaveCfg  enclave.Config
		upstreamCfg upstream.Config
		sessionCfg  session.Config
		redisCfg    redis.Config
		eventsCfg   events.Config
	)
	// Every required variable is validated here, before any listener binds.
	for _, err := range []error{
		config.Load(&srvCfg),
		config.Load(&enclaveCfg),
		config.Load(&upstreamCfg),
		config.Load(&sessionCfg),
		config.Load(&redisCfg),
		config.Load(&eventsCfg),
	} {
		if err != nil {
			return err
		}
	}

	logOpts := []logger.Option{
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if enclaveCfg.Production {
		logOpts = append(logOpts, logger.WithProduction("enclave-gateway"))
	} else {
		logOpts = append(logOpts, logger.WithDevelopment("enclave-gateway"))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	upstreamClient, err := upstream.New(upstreamCfg)
	if err != nil {
		return err
	}

	sessions, err := session.NewManager(sessionCfg, upstreamClient,
		session.WithLogger(log.With(logger.Component("session"))))
	if err != nil {
		return err
	}

	registry := events.NewRegistry()
	// The empty rule code is the platform's generic order event; further
	// rule codes are the extension point for enclave-specific logic.
	registry.Register("", events.SalesOrderHandler(log.With(logger.Component("events")), nil))

	subscriber, err := events.NewSubscriber(redisClient, eventsCfg, registry,
		events.WithLogger(log.With(logger.Component("events"))))
	if err != nil {
		return err
	}

	cookies, err := cookie.New([]string{srvCfg.CookieSignatureSecret})
	if err != nil {
		return err
	}

	module, err := enclave.New(enclaveCfg, enclave.Deps{
		Cookies:   cookies,
		Sessions:  sessions,
		Upstream:  upstreamClient,
		Logger:    log,
		Readiness: []func(context.Context) error{redis.Healthcheck(redisClient)},
	})
	if err != nil {
		return err
	}

	// Background loops run for the process lifetime. A failed startup
	// login is fatal: without a service token the gateway cannot verify
	// ingress tokens.
	errCh := make(chan error, 1)
	go func() {
		if err := sessions.Run(ctx); err != nil {
			select {
			case errCh <- err:
			default:
			}
			cancel()
		}
	}()
	go func() {
		if err := subscriber.Run(ctx); err != nil {
			log.ErrorContext(ctx, "event subscriber stopped", logger.Error(err))
		}
	}()

	srv := httpserver.New(
		httpserver.WithAddr(fmt.Sprintf(":%d", srvCfg.Port)),
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("gateway listening",
				slog.Int("port", srvCfg.Port),
				slog.String("enclave", enclaveCfg.Name),
				slog.Bool("production", enclaveCfg.Production))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("gateway stopped")
		}),
	)

	runErr := srv.Run(ctx, module.Handler())

	select {
	case startupErr := <-errCh:
		return errors.Join(startupErr, runErr)
	default:
		return runErr
	}
}
