package promotions

import (
	"ticketflow/internal/shared/config"
	"ticketflow/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPromotionRoutes configures promo validation routes
func SetupPromotionRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	promotions := rg.Group("/promotions")
	promotions.Use(middleware.CurrentUser(cfg))
	{
		promotions.POST("/validate", controller.ValidatePromo) // POST /api/v1/promotions/validate
	}
}
