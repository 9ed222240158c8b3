package promotions

import (
	"net/http"

	"ticketflow/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ValidatePromo handles POST /api/v1/promotions/validate
func (c *Controller) ValidatePromo(ctx *gin.Context) {
	var req ValidatePromoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.Validate(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to validate promo code", nil, err.Error())
		return
	}

	// Rejections are a 200 with valid=false: the client surfaces the
	// message, not an error state.
	response.RespondJSON(ctx, "success", http.StatusOK, "Promo code validated", result, nil)
}
