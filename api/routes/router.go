// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ticketflow/internal/checkout"
	"ticketflow/internal/events"
	"ticketflow/internal/notifications"
	"ticketflow/internal/orders"
	"ticketflow/internal/payments"
	"ticketflow/internal/promotions"
	"ticketflow/internal/shared/config"
	"ticketflow/internal/shared/database"
	"ticketflow/pkg/cache"
	"ticketflow/pkg/logger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	cache     cache.Service
	registry  *payments.Registry
	publisher notifications.Publisher
	log       *logger.Logger

	// services shared across route groups
	eventService    events.Service
	promoService    promotions.Service
	checkoutService checkout.Service
	orderService    orders.Service
	holdOps         *checkout.AtomicRedisOperations
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, cacheService cache.Service, registry *payments.Registry, publisher notifications.Publisher, log *logger.Logger) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		cache:     cacheService,
		registry:  registry,
		publisher: publisher,
		log:       log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupEventRoutes(api)
		r.setupPromotionRoutes(api)
		r.setupCheckoutRoutes(api)
		r.setupOrderRoutes(api)
		r.setupWebhookRoutes(api)
	}
}

// OrderService exposes the order service for background jobs.
func (r *Router) OrderService() orders.Service {
	return r.orderService
}

// HoldOperations exposes the atomic hold handler for script preloading.
func (r *Router) HoldOperations() *checkout.AtomicRedisOperations {
	return r.holdOps
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ticketflow-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ticketflow-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupEventRoutes configures catalog browsing routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	r.eventService = events.NewService(eventRepo, r.cache)
	eventController := events.NewController(r.eventService)

	events.SetupEventRoutes(rg, eventController)
}

// setupPromotionRoutes configures promo validation routes
func (r *Router) setupPromotionRoutes(rg *gin.RouterGroup) {
	promoRepo := promotions.NewRepository(r.db.GetPostgreSQL())
	r.promoService = promotions.NewService(promoRepo)
	promoController := promotions.NewController(r.promoService)

	promotions.SetupPromotionRoutes(rg, promoController, r.config)
}

// setupCheckoutRoutes configures checkout session routes
func (r *Router) setupCheckoutRoutes(rg *gin.RouterGroup) {
	redisClient := r.db.GetRedis()
	r.holdOps = checkout.NewAtomicRedisOperations(redisClient)
	sessionStore := checkout.NewSessionStore(redisClient)

	r.checkoutService = checkout.NewService(
		sessionStore,
		r.holdOps,
		r.eventService,
		r.promoService,
		r.config.Checkout.HoldTTL,
		r.config.Checkout.DefaultCurrency,
		r.log,
	)
	checkoutController := checkout.NewController(r.checkoutService)

	checkout.SetupCheckoutRoutes(rg, checkoutController, r.config)
}

// setupOrderRoutes configures order and payment routes
func (r *Router) setupOrderRoutes(rg *gin.RouterGroup) {
	orderRepo := orders.NewRepository(r.db.GetPostgreSQL())
	r.orderService = orders.NewService(
		orderRepo,
		r.checkoutService,
		r.eventService,
		r.registry,
		r.publisher,
		r.cache,
		r.config.Checkout.DefaultCurrency,
		r.log,
	)
	orderController := orders.NewController(r.orderService)

	orders.SetupOrderRoutes(rg, orderController, r.config)
}

// setupWebhookRoutes configures provider webhook routes
func (r *Router) setupWebhookRoutes(rg *gin.RouterGroup) {
	webhookController := payments.NewController(r.registry, r.orderService, r.log)
	payments.SetupWebhookRoutes(rg, webhookController)
}
