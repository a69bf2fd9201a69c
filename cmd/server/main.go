package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"eventparticipation/config"
	_ "eventparticipation/docs"
	"eventparticipation/internal/adapters/auth"
	"eventparticipation/internal/adapters/catalog"
	"eventparticipation/internal/adapters/email"
	"eventparticipation/internal/adapters/upstream"
	"eventparticipation/internal/adapters/userdir"
	deliveryhttp "eventparticipation/internal/delivery/http"
	"eventparticipation/internal/delivery/http/controllers"
	"eventparticipation/internal/delivery/http/middleware"
	"eventparticipation/internal/domain"
	"eventparticipation/internal/metrics"
	"eventparticipation/internal/observability"
	"eventparticipation/internal/repository/postgres"
	"eventparticipation/internal/repository/redis"
	"eventparticipation/internal/services"
)

const serviceName = "event-participation"

// @title Event Participation API
// @version 1.0
// @description Prices, registers and reconciles paid participation in community events.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, logger, observability.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		OTLPInsecure: cfg.OTLPInsecure,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracer shutdown", "err", err)
		}
	}()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	policy := upstream.RetryPolicy{
		MaxRetries: cfg.UpstreamRetries,
		BaseDelay:  cfg.UpstreamBackoff,
		MaxJitter:  cfg.UpstreamBackoff / 2,
	}

	var eventCatalog domain.EventCatalog = catalog.NewHTTPCatalog(
		upstream.NewClient(catalog.ServiceName, cfg.EventServiceURL, cfg.UpstreamTimeout, policy, m))
	checks := map[string]controllers.HealthCheck{"database": db.PingContext}

	rdb, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		// The cache is optional; run without it rather than refuse to start.
		logger.Warn("redis unavailable, charge config cache disabled", "err", err)
	}
	if rdb != nil {
		defer rdb.Close()
		eventCatalog = catalog.NewCachedCatalog(eventCatalog, redis.NewChargeConfigCache(rdb, cfg.ChargeConfigCacheTTL), logger, m)
		checks["redis"] = rdb.Health
	}
	users := userdir.NewHTTPDirectory(
		upstream.NewClient(userdir.ServiceName, cfg.UserServiceURL, cfg.UpstreamTimeout, policy, m))

	repo := postgres.NewParticipationRepository(db)
	fallback := domain.EventChargeConfig{
		CoverCharge:          cfg.FallbackCoverCharge,
		CoverChargeMode:      domain.ChargePerHead,
		VegFoodCharge:        cfg.FallbackVegCharge,
		VegFoodChargeMode:    domain.ChargePerHead,
		NonVegFoodCharge:     cfg.FallbackNonVegCharge,
		NonVegFoodChargeMode: domain.ChargePerHead,
	}
	participationSvc := services.NewParticipationService(repo, users, eventCatalog, fallback, logger, m, cfg.RequestTimeout)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Endpoint:        cfg.SESEndpoint,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	receipts := services.NewReceiptService(mailer, email.NewTemplateRenderer(), logger)
	paymentSvc := services.NewPaymentService(repo, receipts, logger, m, cfg.RequestTimeout)

	gateway, err := auth.NewGatewaySecret(cfg.PaymentGatewayTokenHash)
	if err != nil {
		return fmt.Errorf("payment gateway token: %w", err)
	}
	var matcher middleware.TokenMatcher
	if gateway != nil {
		matcher = gateway
	} else {
		logger.Warn("PAYMENT_GATEWAY_TOKEN_HASH not set, payment callback is unauthenticated")
	}

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Participation: controllers.NewParticipationController(logger, participationSvc),
		Payment:       controllers.NewPaymentController(logger, paymentSvc),
		Health:        controllers.NewHealthController(logger, 2*time.Second, checks),
	}, auth.NewJWT(cfg.JWTSecret), matcher, logger)

	var handler http.Handler = middleware.LoggingMiddleware(logger, m, mux)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = otelhttp.NewHandler(handler, serviceName)
	handler = chimw.Recoverer(handler)
	handler = chimw.RealIP(handler)
	handler = chimw.RequestID(handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
