package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"ticketflow/api/routes"
	"ticketflow/internal/notifications"
	"ticketflow/internal/payments"
	"ticketflow/internal/reconcile"
	"ticketflow/internal/shared/config"
	"ticketflow/internal/shared/database"
	"ticketflow/pkg/cache"
	"ticketflow/pkg/logger"
	"ticketflow/pkg/ratelimit"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect:", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Redis-backed cache for catalog reads and order status snapshots
	var cacheService cache.Service
	if db.Redis != nil {
		cacheService = cache.NewService(db.Redis)
	}

	// Payment providers: availability is driven by which credentials are
	// configured.
	registry := payments.NewRegistry()
	if cfg.Stripe.Configured() {
		registry.Register(payments.NewStripeProvider(cfg.Stripe))
		appLogger.Info("Stripe payment provider registered")
	}
	if cfg.Paystack.Configured() {
		registry.Register(payments.NewPaystackProvider(cfg.Paystack))
		appLogger.Info("Paystack payment provider registered")
	}
	if len(registry.Available()) == 0 {
		appLogger.Warn("No payment providers configured; only free orders will complete")
	}

	// Order event publishing via Kafka, or a no-op when disabled
	publisher := notifications.NewNoopPublisher()
	var consumer *notifications.OrderEventConsumer
	if cfg.Kafka.Enabled {
		producer, err := notifications.NewKafkaOrderEventProducer(
			notifications.DefaultKafkaProducerConfig(cfg.Kafka.Brokers), appLogger)
		if err != nil {
			appLogger.Error("Failed to initialize Kafka producer", slog.Any("error", err))
			appLogger.Info("Continuing without order event publishing")
		} else {
			publisher = notifications.NewPublisher(producer, appLogger)
			defer producer.Close()

			consumer, err = notifications.NewOrderEventConsumer(
				notifications.DefaultConsumerConfig(cfg.Kafka.Brokers),
				notifications.NewLoggingOrderEventHandler(appLogger),
				appLogger,
			)
			if err != nil {
				appLogger.Error("Failed to initialize Kafka consumer", slog.Any("error", err))
			} else {
				consumer.Start(context.Background())
				defer consumer.Stop()
			}
		}
	}

	// Rate limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedis(), &ratelimit.Config{
			Enabled:                  cfg.RateLimit.Enabled,
			WindowDuration:           cfg.RateLimit.WindowDuration,
			DefaultRequests:          cfg.RateLimit.DefaultRequests,
			PublicRequests:           cfg.RateLimit.PublicRequests,
			CheckoutRequests:         cfg.RateLimit.CheckoutRequests,
			CheckoutCriticalRequests: cfg.RateLimit.CheckoutCriticalRequests,
			WebhookRequests:          cfg.RateLimit.WebhookRequests,
			UserRequests:             cfg.RateLimit.UserRequests,
			HealthRequests:           cfg.RateLimit.HealthRequests,
			WhitelistedIPs:           cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	appRouter := routes.NewRouter(cfg, db, cacheService, registry, publisher, appLogger)
	engine := setupEngine(cfg, appRouter, rateLimiter, appLogger)

	// Preload hold scripts so the first checkout does not pay the
	// script-load round trip.
	if db.Redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := appRouter.HoldOperations().PreloadScripts(ctx); err != nil {
			appLogger.Error("Failed to preload Redis Lua scripts", slog.Any("error", err))
			// Scripts load lazily on first use
		} else {
			appLogger.Info("Redis Lua scripts preloaded for atomic ticket holds")
		}
		cancel()
	}

	// Payment reconciliation sweep
	var reconciler *reconcile.JobProcessor
	if cfg.Reconcile.Enabled {
		reconciler = reconcile.NewJobProcessor(
			appRouter.OrderService(),
			db.GetRedis(),
			reconcile.JobConfigFromSettings(cfg.Reconcile),
			appLogger,
		)
		reconcileCtx, reconcileCancel := context.WithCancel(context.Background())
		defer reconcileCancel()
		reconciler.Start(reconcileCtx)
		defer reconciler.Stop()
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Bool("redis_cache", db.Redis != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
			slog.Any("payment_providers", registry.Available()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupEngine(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()

	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Idempotency-Key", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter.SetupRoutes(engine)
	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
