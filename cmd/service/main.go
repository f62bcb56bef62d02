package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // served only on ${PPROF_PORT}
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	application "checkout/internal/app"
	"checkout/internal/handlers/rest/healthcheck_head"
	"checkout/internal/handlers/rest/payments_create_preference_post"
	"checkout/internal/handlers/rest/payments_download_get"
	"checkout/internal/handlers/rest/payments_resend_email_post"
	"checkout/internal/handlers/rest/payments_validate_get"
	"checkout/internal/handlers/rest/payments_webhook_post"
	"checkout/internal/handlers/rest/ping_get"
	"checkout/internal/pkg/config"
	"checkout/internal/pkg/dotenv"
	"checkout/internal/pkg/kafka"
	metrics_system "checkout/internal/pkg/metrics"
	"checkout/internal/pkg/middlewares/cors"
	"checkout/internal/pkg/middlewares/graceful_shutdown"
	"checkout/internal/pkg/middlewares/metrics"
	"checkout/internal/pkg/middlewares/rate_limiter"
	"checkout/internal/pkg/middlewares/recovery"
	"checkout/internal/pkg/middlewares/timeout"
	"checkout/internal/pkg/postgres"
	"checkout/pkg/logger"
	"checkout/pkg/logger/zap_adapter"
	"checkout/pkg/token_bucket"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "checkout-service"

func main() {
	if err := dotenv.Load(); err != nil {
		stdlog.Fatalf("failed to load .env file: %v", err)
	}

	zapLogger, err := zap_adapter.NewZapAdapter(serviceName, os.Getenv("LOG_LEVEL"))
	if err != nil {
		stdlog.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			stdlog.Printf("failed to sync logger: %v", err)
		}
	}()

	var appLogger logger.Logger = zapLogger
	mainLog := appLogger.With()

	mainLog.Info("starting checkout-service application")

	cfg, err := config.Load()
	if err != nil {
		mainLog.Error("load config", logger.NewField("error", err))
		return
	}

	err = run(context.Background(), cfg, appLogger)
	if err != nil {
		mainLog.Error("application failed", logger.NewField("error", err))
		return
	}
}

//nolint:contextcheck // shutdown contexts derive from context.Background on purpose
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	const (
		shutdownPeriod      = 15 * time.Second
		shutdownHardPeriod  = 3 * time.Second
		readinessDrainDelay = 5 * time.Second
	)

	// https://victoriametrics.com/blog/go-graceful-shutdown/#b-use-basecontext-to-provide-a-global-context-to-all-connections
	var isShuttingDown atomic.Bool

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	runLog := log.With(
		logger.NewField("store_mode", string(cfg.Store.Mode)),
		logger.NewField("mail_provider", string(cfg.Mail.Provider)),
		logger.NewField("webhook_mode", string(cfg.Webhook.Mode)),
	)

	storage, pinger, closeStorage, err := openStorage(ctx, log, cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer closeStorage()

	businessApp, err := application.InitializeApplication(ctx, log, storage, cfg)
	if err != nil {
		return fmt.Errorf("business logic: %w", err)
	}

	// Accepted notifications are processed inline or published for the worker.
	var sink payments_webhook_post.Service = businessApp.Notifications
	if cfg.Webhook.Mode == config.WebhookKafka {
		publisher, err := kafka.NewPublisher(ctx, log, &cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				runLog.Error("failed to close kafka publisher", logger.NewField("error", err))
			}
		}()
		sink = publisher
	}

	metrics_system.StartSystemMetricsCollector(ctx)

	// ongoingCtx is the BaseContext for every request and must outlive SIGTERM:
	// it is cancelled only after server.Shutdown() so in-flight requests finish.
	ongoingCtx, stopOngoingGracefully := context.WithCancel(context.Background())
	defer stopOngoingGracefully()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: initRouter(ongoingCtx, log, &isShuttingDown, businessApp, sink, pinger, cfg),
		BaseContext: func(_ net.Listener) context.Context {
			return ongoingCtx
		},

		ReadHeaderTimeout: 5 * time.Second, // Slowloris DoS gosec G112
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		defer close(serverErr)
		runLog.Info("server starting",
			logger.NewField("port", cfg.Server.Port),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var pprofServer *http.Server
	var pprofServerErr chan error
	if cfg.Server.PprofEnabled {
		pprofServer = &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.PprofPort),
			Handler: initPprofRouter(&isShuttingDown),
			BaseContext: func(_ net.Listener) context.Context {
				return ongoingCtx
			},

			ReadHeaderTimeout: 5 * time.Second, // Slowloris DoS gosec G112
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		pprofServerErr = make(chan error, 1)
		go func() {
			defer close(pprofServerErr)
			runLog.Info("pprof server starting",
				logger.NewField("port", cfg.Server.PprofPort),
			)
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				pprofServerErr <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		runLog.Info("Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case err := <-pprofServerErr: // nil channel when pprof is disabled
		return fmt.Errorf("pprof server: %w", err)
	}

	stop()
	isShuttingDown.Store(true)

	time.Sleep(readinessDrainDelay)
	runLog.Info("draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()

	var shutdownErr error
	err = server.Shutdown(shutdownCtx)
	if pprofServer != nil {
		shutdownErr = pprofServer.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			runLog.Error("pprof server shutdown error", logger.NewField("error", shutdownErr))
		} else {
			runLog.Info("pprof server stopped")
		}
	}

	stopOngoingGracefully()
	if err != nil || shutdownErr != nil {
		runLog.Info("Graceful shutdown timeout, forcing close")
		time.Sleep(shutdownHardPeriod)
	}

	businessApp.BackgroundWorkers.Wait()

	runLog.Info("Server stopped")
	return nil
}

// openStorage connects the order store selected by STORE_MODE. The returned
// pinger is nil in metadata mode.
func openStorage(ctx context.Context, log logger.Logger, cfg *config.Config) (application.Storage, healthcheck_head.Pinger, func(), error) {
	if cfg.Store.Mode != config.StorePostgres {
		return application.NewMetadataStorage(cfg.Store.ClaimTTL), nil, func() {}, nil
	}

	pool, err := postgres.NewConnPool(ctx, log, cfg)
	if err != nil {
		return application.Storage{}, nil, nil, fmt.Errorf("database: %w", err)
	}
	return application.NewPostgresStorage(pool), pool, pool.Close, nil
}

func initRouter(
	ongoingCtx context.Context,
	log logger.Logger,
	isShuttingDown *atomic.Bool,
	app *application.Application,
	sink payments_webhook_post.Service,
	pinger healthcheck_head.Pinger,
	cfg *config.Config,
) http.Handler {
	downloads := cfg.Store.Mode == config.StorePostgres

	router := mux.NewRouter()

	router.Use(graceful_shutdown.Middleware(isShuttingDown, ongoingCtx))
	router.Use(timeout.Middleware(cfg.Server.RequestTimeout))
	router.Use(metrics.Middleware(log))

	router.Handle("/metrics", promhttp.Handler())
	router.Handle("/healthcheck", healthcheck_head.New(isShuttingDown, pinger)).Methods(http.MethodHead)
	router.Handle("/ping", ping_get.New(log)).Methods(http.MethodGet)

	// Gateway notifications bypass the rate limiter.
	router.Handle("/payments/webhook",
		payments_webhook_post.New(log, sink, cfg.MercadoPago.WebhookSecret)).Methods(http.MethodPost)

	limiter := token_bucket.NewTokenBucket(cfg.Server.RateLimiterBurst, float64(cfg.Server.RateLimiterQPS))
	payments := router.PathPrefix("/payments").Subrouter()
	payments.Use(rate_limiter.Middleware(log, cfg.Server.RateLimiterQPS, limiter))

	payments.Handle("/create-preference",
		payments_create_preference_post.New(log, app.Orders)).Methods(http.MethodPost)
	payments.Handle("/validate",
		payments_validate_get.New(log, app.Reconciliation, downloads)).Methods(http.MethodGet)
	payments.Handle("/download/{orderId:[0-9]+}",
		payments_download_get.New(log, app.Orders)).Methods(http.MethodGet)
	payments.Handle("/resend-email/{orderId:[0-9]+}",
		payments_resend_email_post.New(log, app.Reconciliation)).Methods(http.MethodPost)

	return recovery.Middleware(log)(cors.Middleware(cfg.Server.CORSAllowedOrigins)(router))
}

func initPprofRouter(isShuttingDown *atomic.Bool) http.Handler {
	router := mux.NewRouter()

	router.Handle("/healthcheck", healthcheck_head.New(isShuttingDown, nil)).Methods(http.MethodHead)
	router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return router
}
