package handler

import (
	"producers-avenue/internal/adapter/http/middleware"
	redisStore "producers-avenue/internal/adapter/storage/redis"
	"producers-avenue/internal/core/ports"
	"producers-avenue/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc         ports.AuthService
	OrderSvc        ports.OrderService
	WalletSvc       ports.WalletService
	LedgerSvc       ports.LedgerService
	WebhookSvc      ports.WebhookService
	NotificationSvc ports.NotificationService
	CatalogSvc      ports.CatalogService
	TokenSvc        ports.TokenService
	StripeVerifier  ports.WebhookVerifier
	PayPalVerifier  ports.WebhookVerifier
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	Metrics         *metrics.HTTPMetrics       // nil = metrics middleware disabled
	MetricsGatherer prometheus.Gatherer        // nil = /metrics endpoint disabled
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	if deps.MetricsGatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{})))
	}

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- Provider webhooks (signature-authenticated) ---
	webhookHandler := NewWebhookHandler(deps.WebhookSvc, deps.StripeVerifier, deps.PayPalVerifier)
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/stripe", rl("webhooks"), webhookHandler.Stripe)
		webhooks.POST("/paypal", rl("webhooks"), webhookHandler.PayPal)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	orderHandler := NewOrderHandler(deps.OrderSvc)
	orders := v1.Group("/orders", jwtAuth)
	{
		orders.POST("/checkout", rl("checkout"), orderHandler.Checkout)
		orders.GET("", rl("read"), orderHandler.List)
		orders.GET("/:id", rl("read"), orderHandler.Get)
		orders.PATCH("/:id/status", rl("write"), orderHandler.UpdateStatus)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc, deps.LedgerSvc)
	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("", rl("read"), walletHandler.GetWallet)
		wallet.POST("/payouts", rl("payouts"), walletHandler.RequestPayout)
		wallet.GET("/payouts", rl("read"), walletHandler.ListPayouts)
		wallet.DELETE("/payouts/:id", rl("write"), walletHandler.CancelPayout)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("read"), walletHandler.ListTransactions)
	}

	notificationHandler := NewNotificationHandler(deps.NotificationSvc)
	notifications := v1.Group("/notifications", jwtAuth)
	{
		notifications.GET("", rl("read"), notificationHandler.List)
		notifications.PATCH("/:id/read", rl("write"), notificationHandler.MarkRead)
	}

	catalogHandler := NewCatalogHandler(deps.CatalogSvc)
	services := v1.Group("/services")
	{
		services.GET("", rl("read"), catalogHandler.ListListings)
		services.GET("/:id", rl("read"), catalogHandler.GetListing)
		services.POST("", jwtAuth, rl("write"), catalogHandler.CreateListing)
		services.PATCH("/:id", jwtAuth, rl("write"), catalogHandler.UpdateListing)
		services.DELETE("/:id", jwtAuth, rl("write"), catalogHandler.DeactivateListing)
	}

	posts := v1.Group("/posts")
	{
		posts.GET("", rl("read"), catalogHandler.ListPosts)
		posts.GET("/:id", rl("read"), catalogHandler.GetPost)
		posts.POST("", jwtAuth, rl("write"), catalogHandler.CreatePost)
		posts.DELETE("/:id", jwtAuth, rl("write"), catalogHandler.DeletePost)
	}

	return r
}
