package payments

import (
	"github.com/gin-gonic/gin"
)

// SetupWebhookRoutes configures provider webhook endpoints. These are
// unauthenticated; each provider's signature scheme authenticates the body.
func SetupWebhookRoutes(rg *gin.RouterGroup, controller *Controller) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/stripe", controller.HandleStripeWebhook)     // POST /api/v1/webhooks/stripe
		webhooks.POST("/paystack", controller.HandlePaystackWebhook) // POST /api/v1/webhooks/paystack
	}
}
