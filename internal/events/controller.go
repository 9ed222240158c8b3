package events

import (
	"errors"
	"net/http"

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

// GetEvent handles GET /api/v1/events/:id
func (c *Controller) GetEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	event, err := c.service.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Event not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get event", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event retrieved successfully", event, nil)
}

// GetTicketTypes handles GET /api/v1/events/:id/ticket-types
func (c *Controller) GetTicketTypes(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	ticketTypes, err := c.service.GetTicketTypes(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get ticket types", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket types retrieved successfully", gin.H{
		"ticket_types": ticketTypes,
		"count":        len(ticketTypes),
	}, nil)
}
