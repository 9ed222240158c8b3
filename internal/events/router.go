package events

import (
	"github.com/gin-gonic/gin"
)

// SetupEventRoutes configures catalog read routes (public browsing)
func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller) {
	events := rg.Group("/events")
	{
		events.GET("/:id", controller.GetEvent)                    // GET /api/v1/events/:id
		events.GET("/:id/ticket-types", controller.GetTicketTypes) // GET /api/v1/events/:id/ticket-types
	}
}
