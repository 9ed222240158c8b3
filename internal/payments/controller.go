package payments

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ticketflow/internal/shared/utils/response"
	"ticketflow/pkg/logger"
)

// OrderConfirmer applies an authenticated provider event to the order it
// belongs to. Implemented by the orders service.
type OrderConfirmer interface {
	ApplyProviderEvent(ctx context.Context, provider string, event *WebhookEvent, source string) error
}

// Controller receives provider webhooks. Webhooks are the authoritative
// confirmation path; client confirm calls and the reconciliation poller are
// fallbacks.
type Controller struct {
	registry *Registry
	orders   OrderConfirmer
	log      *logger.Logger
}

func NewController(registry *Registry, orders OrderConfirmer, log *logger.Logger) *Controller {
	return &Controller{registry: registry, orders: orders, log: log}
}

// HandleStripeWebhook handles POST /api/v1/webhooks/stripe
func (c *Controller) HandleStripeWebhook(ctx *gin.Context) {
	c.handleWebhook(ctx, ProviderStripe, ctx.GetHeader("Stripe-Signature"))
}

// HandlePaystackWebhook handles POST /api/v1/webhooks/paystack
func (c *Controller) HandlePaystackWebhook(ctx *gin.Context) {
	c.handleWebhook(ctx, ProviderPaystack, ctx.GetHeader("x-paystack-signature"))
}

func (c *Controller) handleWebhook(ctx *gin.Context, providerName, signature string) {
	provider, err := c.registry.Get(providerName)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Provider not configured", nil, nil)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, 1<<20))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to read webhook payload", nil, nil)
		return
	}

	event, err := provider.ParseWebhook(payload, signature)
	if err != nil {
		c.log.LogWebhookRejected(ctx.Request.Context(), providerName, ctx.ClientIP(), err.Error())
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Webhook rejected", nil, nil)
		return
	}
	if event == nil {
		// Authenticated but irrelevant event type.
		response.RespondJSON(ctx, "success", http.StatusOK, "Event ignored", nil, nil)
		return
	}

	if err := c.orders.ApplyProviderEvent(ctx.Request.Context(), providerName, event, "webhook"); err != nil {
		// Non-200 makes the provider redeliver.
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to apply webhook event", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Webhook processed", nil, nil)
}
