package checkout

import (
	"github.com/gin-gonic/gin"

	"ticketflow/internal/shared/config"
	"ticketflow/internal/shared/middleware"
)

// SetupCheckoutRoutes configures checkout session routes (authenticated)
func SetupCheckoutRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	sessions := rg.Group("/checkout/sessions")
	sessions.Use(middleware.CurrentUser(cfg))
	{
		sessions.POST("", controller.StartSession)                   // POST /api/v1/checkout/sessions
		sessions.GET("/:id", controller.GetSession)                  // GET /api/v1/checkout/sessions/:id
		sessions.PUT("/:id/selections", controller.UpdateSelections) // PUT /api/v1/checkout/sessions/:id/selections
		sessions.POST("/:id/promo", controller.ApplyPromo)           // POST /api/v1/checkout/sessions/:id/promo
		sessions.DELETE("/:id/promo", controller.RemovePromo)        // DELETE /api/v1/checkout/sessions/:id/promo
		sessions.DELETE("/:id", controller.Cancel)                   // DELETE /api/v1/checkout/sessions/:id
	}
}
