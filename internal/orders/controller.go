package orders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ticketflow/internal/checkout"
	"ticketflow/internal/payments"
	"ticketflow/internal/shared/middleware"
	"ticketflow/internal/shared/utils/response"
)

// sseSnapshotInterval is how often the event stream re-reads order status.
const sseSnapshotInterval = 2 * time.Second

// sseMaxDuration bounds a single stream; clients reconnect if they still
// care after this.
const sseMaxDuration = 5 * time.Minute

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// CreateOrder handles POST /api/v1/orders
func (c *Controller) CreateOrder(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if headerKey := ctx.GetHeader("Idempotency-Key"); headerKey != "" {
		req.IdempotencyKey = headerKey
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	order, err := c.service.CreateOrder(ctx.Request.Context(), userID, middleware.UserEmail(ctx), req)
	if err != nil {
		respondOrderError(ctx, err, "Failed to create order")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Order created successfully", toOrderResponse(order), nil)
}

// GetOrder handles GET /api/v1/orders/:id
func (c *Controller) GetOrder(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid order ID", nil, nil)
		return
	}

	order, err := c.service.GetOrder(ctx.Request.Context(), orderID, userID)
	if err != nil {
		respondOrderError(ctx, err, "Failed to get order")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Order retrieved successfully", toOrderResponse(order), nil)
}

// ListOrders handles GET /api/v1/orders
func (c *Controller) ListOrders(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var query OrderListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	orders, totalCount, err := c.service.ListUserOrders(ctx.Request.Context(), userID, query.Page, query.Limit)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list orders", nil, err.Error())
		return
	}

	items := make([]*OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i]))
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Orders retrieved successfully", gin.H{
		"orders":      items,
		"total_count": totalCount,
		"page":        query.Page,
		"limit":       query.Limit,
	}, nil)
}

// InitiatePayment handles POST /api/v1/orders/:id/payments
func (c *Controller) InitiatePayment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid order ID", nil, nil)
		return
	}

	// An empty body is fine when a single provider is configured.
	var req InitiatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ref, err := c.service.InitiatePayment(ctx.Request.Context(), orderID, userID, middleware.UserEmail(ctx), req.Provider)
	if err != nil {
		respondOrderError(ctx, err, "Failed to initiate payment")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Payment initiated", ref, nil)
}

// Confirm handles POST /api/v1/orders/:id/confirm
func (c *Controller) Confirm(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid order ID", nil, nil)
		return
	}

	// The intent id is optional; an empty body confirms the newest attempt.
	var req ConfirmOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.Confirm(ctx.Request.Context(), orderID, userID, req.IntentID)
	if err != nil {
		if errors.Is(err, ErrConfirmationPending) {
			response.RespondJSON(ctx, "success", http.StatusAccepted, "Payment confirmation pending", gin.H{
				"outcome": "pending",
			}, nil)
			return
		}
		respondOrderError(ctx, err, "Failed to confirm order")
		return
	}

	switch result.Outcome {
	case OutcomeNewlyPaid:
		response.RespondJSON(ctx, "success", http.StatusOK, "Order confirmed", gin.H{
			"outcome": result.Outcome,
			"order":   toOrderResponse(result.Order),
		}, nil)
	case OutcomeAlreadyPaid:
		// Redundant confirmation: the order was already settled by
		// another confirmation path.
		response.RespondJSON(ctx, "success", http.StatusAccepted, "Order already confirmed", gin.H{
			"outcome": result.Outcome,
			"order":   toOrderResponse(result.Order),
		}, nil)
	default:
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Payment was not successful", gin.H{
			"outcome": result.Outcome,
			"order":   toOrderResponse(result.Order),
		}, nil)
	}
}

// StreamOrderEvents handles GET /api/v1/orders/:id/events with Server-Sent
// Events. The stream emits a status snapshot whenever it changes and closes
// once the order reaches a terminal state.
func (c *Controller) StreamOrderEvents(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid order ID", nil, nil)
		return
	}

	// Validate access before committing to the stream.
	snapshot, err := c.service.GetOrderStatus(ctx.Request.Context(), orderID, userID)
	if err != nil {
		respondOrderError(ctx, err, "Failed to get order status")
		return
	}

	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")
	ctx.Writer.Header().Set("X-Accel-Buffering", "no")

	writeSnapshot(ctx, snapshot)
	if snapshot.Status == StatusPaid || snapshot.Status == StatusCancelled {
		return
	}
	lastStatus := snapshot.Status
	lastPayment := snapshot.PaymentStatus

	ticker := time.NewTicker(sseSnapshotInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(sseMaxDuration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Request.Context().Done():
			return
		case <-deadline.C:
			fmt.Fprintf(ctx.Writer, "event: timeout\ndata: {}\n\n")
			ctx.Writer.Flush()
			return
		case <-ticker.C:
			snapshot, err := c.service.GetOrderStatus(ctx.Request.Context(), orderID, userID)
			if err != nil {
				fmt.Fprintf(ctx.Writer, "event: error\ndata: {\"message\":\"failed to read order status\"}\n\n")
				ctx.Writer.Flush()
				return
			}

			if snapshot.Status != lastStatus || snapshot.PaymentStatus != lastPayment {
				writeSnapshot(ctx, snapshot)
				lastStatus = snapshot.Status
				lastPayment = snapshot.PaymentStatus
			}

			if snapshot.Status == StatusPaid || snapshot.Status == StatusCancelled {
				return
			}
		}
	}
}

func writeSnapshot(ctx *gin.Context, snapshot *OrderStatusSnapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	fmt.Fprintf(ctx.Writer, "event: status\ndata: %s\n\n", data)
	ctx.Writer.Flush()
}

func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	raw, exists := middleware.UserID(ctx)
	if !exists {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid user identity", nil, nil)
		return uuid.Nil, false
	}
	return userID, true
}

func respondOrderError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Order not found", nil, nil)
	case errors.Is(err, ErrNotOrderOwner):
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Order belongs to another user", nil, nil)
	case errors.Is(err, ErrPaymentNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "No payment to confirm", nil, nil)
	case errors.Is(err, ErrEmptyOrder):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Select at least one ticket", nil, nil)
	case errors.Is(err, ErrOrderNotPayable):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Order does not accept payment", nil, nil)
	case errors.Is(err, ErrInsufficientInventory):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Requested tickets are no longer available", nil, err.Error())
	case errors.Is(err, ErrPromotionExhausted):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Promo code is no longer available", nil, nil)
	case errors.Is(err, checkout.ErrSessionNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Checkout session not found or expired", nil, nil)
	case errors.Is(err, checkout.ErrNotSessionOwner):
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Checkout session belongs to another user", nil, nil)
	case errors.Is(err, payments.ErrUnknownProvider), errors.Is(err, payments.ErrNoDefaultProvider):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Payment provider must be specified", nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, fallback, nil, err.Error())
	}
}
