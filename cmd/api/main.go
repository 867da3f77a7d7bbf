package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"producers-avenue/config"
	httpHandler "producers-avenue/internal/adapter/http/handler"
	pgStorage "producers-avenue/internal/adapter/storage/postgres"
	redisStorage "producers-avenue/internal/adapter/storage/redis"
	"producers-avenue/internal/core/ports"
	"producers-avenue/internal/service"
	"producers-avenue/pkg/logger"
	"producers-avenue/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Producers Avenue API")

	commissionRate, err := decimal.NewFromString(cfg.Payments.CommissionRate)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid commission rate")
	}
	minPayout, err := decimal.NewFromString(cfg.Payments.MinPayout)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid minimum payout")
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Apply schema migrations
	if cfg.Database.MigrationsPath != "" {
		if err := pgStorage.RunMigrations(cfg.Database, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	payoutRepo := pgStorage.NewPayoutRepo(pool)
	notificationRepo := pgStorage.NewNotificationRepo(pool)
	listingRepo := pgStorage.NewListingRepo(pool)
	postRepo := pgStorage.NewPostRepo(pool)
	eventRepo := pgStorage.NewPaymentEventRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	eventCache := redisStorage.NewEventCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	stripeVerifier := service.NewStripeVerifier(cfg.Providers.StripeWebhookSecret, cfg.Providers.SignatureTolerance)
	paypalVerifier := service.NewPayPalVerifier(cfg.Providers.PayPalWebhookID, cfg.Providers.PayPalWebhookSecret)

	// Notification worker pool
	notifier, err := service.NewPooledNotificationEmitter(notificationRepo, cfg.Workers.NotificationPoolSize, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize notification pool")
	}
	defer notifier.Shutdown()

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc)
	orderSvc := service.NewOrderService(orderRepo, txRepo, walletRepo, listingRepo, transactor, notifier, commissionRate, log)
	walletSvc := service.NewWalletService(walletRepo, payoutRepo, txRepo, encSvc, transactor, notifier, minPayout, log)
	ledgerSvc := service.NewLedgerService(txRepo)
	webhookSvc := service.NewWebhookService(orderRepo, txRepo, walletRepo, eventRepo, walletSvc, eventCache, transactor, notifier, commissionRate, log)
	notificationSvc := service.NewNotificationService(notificationRepo)
	catalogSvc := service.NewCatalogService(listingRepo, postRepo)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	httpMetrics := metrics.NewHTTPMetrics(registry)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:         authSvc,
		OrderSvc:        orderSvc,
		WalletSvc:       walletSvc,
		LedgerSvc:       ledgerSvc,
		WebhookSvc:      webhookSvc,
		NotificationSvc: notificationSvc,
		CatalogSvc:      catalogSvc,
		TokenSvc:        tokenSvc,
		StripeVerifier:  stripeVerifier,
		PayPalVerifier:  paypalVerifier,
		RateLimitStore:  rateLimitStore,
		HealthCheckers:  []ports.HealthChecker{pgHealth, redisHealth},
		Metrics:         httpMetrics,
		MetricsGatherer: registry,
		Logger:          log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
