package checkout

import (
	"errors"
	"net/http"

	"ticketflow/internal/shared/middleware"
	"ticketflow/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// StartSession handles POST /api/v1/checkout/sessions
func (c *Controller) StartSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	selections, err := parseSelections(req.Selections)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticket type ID in selections", nil, err.Error())
		return
	}

	view, err := c.service.StartSession(ctx.Request.Context(), userID, eventID, selections)
	if err != nil {
		respondSessionError(ctx, err, "Failed to start checkout session")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Checkout session started", view, nil)
}

// GetSession handles GET /api/v1/checkout/sessions/:id
func (c *Controller) GetSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid session ID", nil, nil)
		return
	}

	view, err := c.service.GetSession(ctx.Request.Context(), sessionID, userID)
	if err != nil {
		respondSessionError(ctx, err, "Failed to get checkout session")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Checkout session retrieved", view, nil)
}

// UpdateSelections handles PUT /api/v1/checkout/sessions/:id/selections
func (c *Controller) UpdateSelections(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid session ID", nil, nil)
		return
	}

	var req UpdateSelectionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	selections, err := parseSelections(req.Selections)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticket type ID in selections", nil, err.Error())
		return
	}

	view, err := c.service.UpdateSelections(ctx.Request.Context(), sessionID, userID, selections)
	if err != nil {
		respondSessionError(ctx, err, "Failed to update selections")
		return
	}
	if view == nil {
		// Emptying the cart cancels the session and releases its hold.
		response.RespondJSON(ctx, "success", http.StatusOK, "Checkout session cleared", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Selections updated", view, nil)
}

// ApplyPromo handles POST /api/v1/checkout/sessions/:id/promo
func (c *Controller) ApplyPromo(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid session ID", nil, nil)
		return
	}

	var req ApplyPromoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Promo code is required", nil, err.Error())
		return
	}

	view, err := c.service.ApplyPromo(ctx.Request.Context(), sessionID, userID, req.Code)
	if err != nil {
		respondSessionError(ctx, err, "Failed to apply promo code")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Promo code applied", view, nil)
}

// RemovePromo handles DELETE /api/v1/checkout/sessions/:id/promo
func (c *Controller) RemovePromo(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid session ID", nil, nil)
		return
	}

	view, err := c.service.RemovePromo(ctx.Request.Context(), sessionID, userID)
	if err != nil {
		respondSessionError(ctx, err, "Failed to remove promo code")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Promo code removed", view, nil)
}

// Cancel handles DELETE /api/v1/checkout/sessions/:id
func (c *Controller) Cancel(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid session ID", nil, nil)
		return
	}

	if err := c.service.Cancel(ctx.Request.Context(), sessionID, userID); err != nil {
		respondSessionError(ctx, err, "Failed to cancel checkout session")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Checkout session cancelled", nil, nil)
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

func parseSelections(raw map[string]int) (map[uuid.UUID]int, error) {
	selections := make(map[uuid.UUID]int, len(raw))
	for id, qty := range raw {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		selections[parsed] = qty
	}
	return selections, nil
}

func respondSessionError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Checkout session not found or expired", nil, nil)
	case errors.Is(err, ErrNotSessionOwner):
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Checkout session belongs to another user", nil, nil)
	case errors.Is(err, ErrEmptySelection):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Select at least one ticket", nil, nil)
	case errors.Is(err, ErrInsufficientAvailability):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Requested tickets are no longer available", nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, fallback, nil, err.Error())
	}
}
