package orders

import (
	"github.com/gin-gonic/gin"

	"ticketflow/internal/shared/config"
	"ticketflow/internal/shared/middleware"
)

// SetupOrderRoutes configures order routes (authenticated)
func SetupOrderRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	orders := rg.Group("/orders")
	orders.Use(middleware.CurrentUser(cfg))
	{
		orders.POST("", controller.CreateOrder)                  // POST /api/v1/orders
		orders.GET("", controller.ListOrders)                    // GET /api/v1/orders
		orders.GET("/:id", controller.GetOrder)                  // GET /api/v1/orders/:id
		orders.POST("/:id/payments", controller.InitiatePayment) // POST /api/v1/orders/:id/payments
		orders.POST("/:id/confirm", controller.Confirm)          // POST /api/v1/orders/:id/confirm
		orders.GET("/:id/events", controller.StreamOrderEvents)  // GET /api/v1/orders/:id/events (SSE)
	}
}
